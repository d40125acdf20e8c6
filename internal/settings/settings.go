// Package settings is the local persisted key/value store: the app's
// display-mode preference plus the two mutable bits of derived analytics
// views (alert dismissals, implemented insights).
//
// Buckets:
//
//	prefs               — app preferences (faithMode)
//	alerts_dismissed    — alert IDs the user dismissed
//	insights_implemented — insight IDs the user marked done
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/upliftapps/pulse/internal/mode"
)

var (
	bucketPrefs       = []byte("prefs")
	bucketDismissed   = []byte("alerts_dismissed")
	bucketImplemented = []byte("insights_implemented")
)

const keyFaithMode = "faithMode"

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the settings database at path. Parent directories
// are created automatically.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening settings db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPrefs, bucketDismissed, bucketImplemented} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing settings buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FaithMode reads the persisted display-mode flag. A missing key means on:
// new installs start in faith mode.
func (s *Store) FaithMode() (bool, error) {
	var on bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPrefs).Get([]byte(keyFaithMode))
		on = v == nil || (len(v) == 1 && v[0] == 1)
		return nil
	})
	return on, err
}

// SetFaithMode persists the display-mode flag.
func (s *Store) SetFaithMode(on bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		v := []byte{0}
		if on {
			v[0] = 1
		}
		return tx.Bucket(bucketPrefs).Put([]byte(keyFaithMode), v)
	})
}

// DisplayMode maps the persisted flag to a mode value for copy resolution.
func (s *Store) DisplayMode() (mode.Mode, error) {
	on, err := s.FaithMode()
	if err != nil {
		return mode.Encouragement, err
	}
	if on {
		return mode.Faith, nil
	}
	return mode.Encouragement, nil
}

// AlertDismissed reports whether the alert ID was dismissed. Read errors
// report not-dismissed; a missing flag only re-shows an alert.
func (s *Store) AlertDismissed(id string) bool {
	return s.flagged(bucketDismissed, id)
}

// DismissAlert persists an alert dismissal.
func (s *Store) DismissAlert(id string) error {
	return s.setFlag(bucketDismissed, id)
}

// InsightImplemented reports whether the insight ID was marked implemented.
func (s *Store) InsightImplemented(id string) bool {
	return s.flagged(bucketImplemented, id)
}

// MarkInsightImplemented persists an implemented insight.
func (s *Store) MarkInsightImplemented(id string) error {
	return s.setFlag(bucketImplemented, id)
}

func (s *Store) flagged(bucket []byte, id string) bool {
	var set bool
	s.db.View(func(tx *bolt.Tx) error {
		set = tx.Bucket(bucket).Get([]byte(id)) != nil
		return nil
	})
	return set
}

func (s *Store) setFlag(bucket []byte, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(id), []byte{1})
	})
}
