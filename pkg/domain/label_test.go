package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel_EpsilonIsDistinctFromEverySymbol(t *testing.T) {
	for _, r := range []rune{0, '*', 'ε', ' ', 'a'} {
		assert.NotEqual(t, domain.Epsilon, domain.Consume(r), "symbol %q", r)
	}
	assert.True(t, domain.Epsilon.IsEpsilon())
	assert.False(t, domain.Consume('*').IsEpsilon())

	_, ok := domain.Epsilon.Symbol()
	assert.False(t, ok)

	r, ok := domain.Consume('ß').Symbol()
	assert.True(t, ok)
	assert.Equal(t, 'ß', r)
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    domain.Label
		wantErr bool
	}{
		{"Empty Key Is Epsilon", "", domain.Epsilon, false},
		{"ASCII Symbol", "a", domain.Consume('a'), false},
		{"Star Is Literal", "*", domain.Consume('*'), false},
		{"Multibyte Symbol", "λ", domain.Consume('λ'), false},
		{"Two Symbols", "ab", domain.Label{}, true},
		{"Invalid UTF-8", "\xff", domain.Label{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseLabel(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefinition_JSONKeys(t *testing.T) {
	def := domain.NewDefinition("S", "A").
		AddTransition("S", domain.Consume('a'), "A").
		AddTransition("S", domain.Epsilon, "B")

	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"start_state": "S",
		"accept_states": ["A"],
		"transitions": {"S": {"a": ["A"], "": ["B"]}}
	}`, string(data))

	var back domain.Definition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"B"}, back.Destinations("S", domain.Epsilon))
	assert.Equal(t, []string{"A"}, back.Destinations("S", domain.Consume('a')))
	assert.True(t, back.IsAccepting("A"))
}
