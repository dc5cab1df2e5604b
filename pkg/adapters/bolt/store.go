// Package bolt stores session transcripts in a single bbolt database file.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/thicket/pkg/domain"
	bolt "go.etcd.io/bbolt"
)

// DefaultPath is used when Open receives an empty filename.
const DefaultPath = ".thicket/sessions.db"

var bucketName = []byte("transcripts")

// Store implements ports.TranscriptStore over bbolt.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database at filename.
func Open(filename string) (*Store, error) {
	if filename == "" {
		filename = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", filename, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, sessionID string, transcript *domain.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(sessionID), data)
	})
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var transcript domain.Transcript
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(bucketName).Get([]byte(sessionID))
		if bs == nil {
			return domain.ErrSessionNotFound
		}
		// bs is only valid inside the transaction.
		return json.Unmarshal(bs, &transcript)
	})
	if err != nil {
		return nil, err
	}
	return &transcript, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(sessionID))
	})
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, 16)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
