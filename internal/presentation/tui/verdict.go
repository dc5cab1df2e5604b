package tui

import (
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/muesli/termenv"
)

// VerdictRenderer returns a runner.VerdictRenderer that colors verdicts
// for the given profile. termenv.Ascii disables styling.
func VerdictRenderer(p termenv.Profile) runner.VerdictRenderer {
	good := p.String("✅ accepted").Foreground(p.Color("#22c55e")).Bold()
	bad := p.String("❌ rejected").Foreground(p.Color("#ef4444")).Bold()
	return func(v runner.Verdict) string {
		if v.Accepted {
			return good.String()
		}
		return bad.String()
	}
}
