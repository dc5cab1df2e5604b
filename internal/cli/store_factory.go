package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/thicket/pkg/adapters/bolt"
	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/adapters/redis"
	"github.com/aretw0/thicket/pkg/persistence/middleware"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
)

// Store backends accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
)

// EnvStoreKey holds a base64 AES-256 key. When set, transcripts are
// encrypted at rest.
const EnvStoreKey = "THICKET_STORE_KEY"

// StoreOptions selects and configures the transcript store.
type StoreOptions struct {
	Kind      string
	FilePath  string
	BoltPath  string
	RedisAddr string

	// EncryptionKey seals transcripts when non-empty.
	EncryptionKey []byte
	// MaxQueries caps the queries kept per transcript; 0 keeps all.
	MaxQueries int
}

// KeyFromEnv decodes EnvStoreKey. An unset variable yields a nil key.
func KeyFromEnv() ([]byte, error) {
	val := os.Getenv(EnvStoreKey)
	if val == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvStoreKey, err)
	}
	return key, nil
}

// OpenSessions builds a session manager over the selected store. The
// returned close function releases the backend and is never nil.
func OpenSessions(opts StoreOptions, logger *slog.Logger) (*session.Manager, func() error, error) {
	noop := func() error { return nil }
	mgrOpts := []session.Option{session.WithLogger(logger)}

	var store ports.TranscriptStore
	closer := noop

	switch opts.Kind {
	case "", StoreMemory:
		store = memory.NewStore()
	case StoreFile:
		store = file.NewStore(opts.FilePath)
	case StoreBolt:
		path := opts.BoltPath
		if path == "" {
			path = bolt.DefaultPath
		}
		bs, err := bolt.Open(path)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open bolt store: %w", err)
		}
		store, closer = bs, bs.Close
	case StoreRedis:
		addr := opts.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		rs := redis.New(addr, "", 0)
		store, closer = rs, rs.Close
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(rs.Client(), redis.DefaultPrefix)))
	default:
		return nil, noop, fmt.Errorf("unknown store %q (supported: memory, file, bolt, redis)", opts.Kind)
	}

	mws := []middleware.Middleware{middleware.NewRetentionMiddleware(opts.MaxQueries)}
	if len(opts.EncryptionKey) > 0 {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: opts.EncryptionKey})
		if err != nil {
			_ = closer()
			return nil, noop, fmt.Errorf("invalid %s: %w", EnvStoreKey, err)
		}
		mws = append(mws, encrypt)
	}

	logger.Debug("Transcript store ready", "store", opts.Kind, "encrypted", len(opts.EncryptionKey) > 0, "max_queries", opts.MaxQueries)
	return session.NewManager(middleware.Chain(store, mws...), mgrOpts...), closer, nil
}

// StartSweeper prunes transcripts idle for longer than maxAge on the given
// cron schedule until ctx is done. An empty schedule disables pruning.
func StartSweeper(ctx context.Context, sessions *session.Manager, schedule string, maxAge time.Duration, logger *slog.Logger) error {
	if schedule == "" {
		return nil
	}
	sweeper, err := session.NewSweeper(sessions, schedule, maxAge, logger)
	if err != nil {
		return err
	}
	logger.Debug("Session pruning enabled", "schedule", schedule, "max_age", maxAge)
	go sweeper.Run(ctx)
	return nil
}
