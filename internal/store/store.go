// Package store provides a thin bbolt wrapper for chartline's local data store.
//
// Datasets are written explicitly with `chartline dataset put` and read back
// by render, tooltip and session commands. Nothing expires.
//
// Buckets:
//
//	datasets    named temporal or ordinal datasets
//	snapshots   saved render command lines
//	_meta       internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/chartline/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

var (
	bucketDatasets  = []byte("datasets")
	bucketSnapshots = []byte("snapshots")
	bucketInternal  = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"datasets", "snapshots"}

const (
	datasetPrefix  = "ds:"
	snapshotPrefix = "snap:"
)

var openOptions = &bolt.Options{Timeout: 2 * time.Second}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, openOptions)
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketDatasets, bucketSnapshots, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// Meta returns the schema version and creation stamp recorded in _meta.
func (s *Store) Meta() (version, createdAt string, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInternal)
		version = string(b.Get([]byte("schema_version")))
		createdAt = string(b.Get([]byte("created_at")))
		return nil
	})
	return version, createdAt, err
}

// ─── Datasets ─────────────────────────────────────────────────────────────────

// storedDataset is the on-disk envelope for a dataset entry.
type storedDataset struct {
	model.Dataset
	SavedAt time.Time `json:"saved_at"`
}

// DatasetInfo describes a stored dataset without its points.
type DatasetInfo struct {
	Name    string     `json:"name"`
	Kind    model.Kind `json:"kind"`
	Count   int        `json:"count"`
	SavedAt time.Time  `json:"saved_at"`
}

// ValidName reports whether name can be used as a dataset or snapshot key.
func ValidName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name must not be empty")
	case strings.ContainsAny(name, " \t\r\n"):
		return fmt.Errorf("name %q must not contain whitespace", name)
	}
	return nil
}

// PutDataset stores ds under ds.Name, replacing any previous entry.
func (s *Store) PutDataset(ds model.Dataset) error {
	if err := ValidName(ds.Name); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if ds.Kind == "" {
		ds.Kind = model.KindTemporal
	}
	b, err := json.Marshal(storedDataset{Dataset: ds, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDatasets).Put([]byte(datasetPrefix+ds.Name), b)
	})
}

// GetDataset retrieves a dataset by name.
// Returns (ds, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetDataset(name string) (model.Dataset, bool, error) {
	var env storedDataset
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDatasets).Get([]byte(datasetPrefix + name))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &env)
	})
	if err != nil {
		return model.Dataset{}, false, fmt.Errorf("decoding dataset %s: %w", name, err)
	}
	return env.Dataset, found, nil
}

// ListDatasets returns every stored dataset's description, sorted by name.
func (s *Store) ListDatasets() ([]DatasetInfo, error) {
	var infos []DatasetInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDatasets).Cursor()
		prefix := []byte(datasetPrefix)
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), datasetPrefix); k, v = c.Next() {
			var env storedDataset
			if err := json.Unmarshal(v, &env); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			infos = append(infos, DatasetInfo{
				Name:    env.Name,
				Kind:    env.Kind,
				Count:   env.Len(),
				SavedAt: env.SavedAt,
			})
		}
		return nil
	})
	return infos, err
}

// DeleteDataset removes a dataset. found is false when no such entry existed.
func (s *Store) DeleteDataset(name string) (found bool, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDatasets)
		key := []byte(datasetPrefix + name)
		if b.Get(key) == nil {
			return nil
		}
		found = true
		return b.Delete(key)
	})
	return found, err
}

// ─── Snapshots ────────────────────────────────────────────────────────────────

// Snapshot is a saved render command line for reproducible charts.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CommandLine string    `json:"command_line"`
	CreatedAt   time.Time `json:"created_at"`
}

// PutSnapshot saves a snapshot. The key is snap:<ID>.
func (s *Store) PutSnapshot(snap Snapshot) error {
	if err := ValidName(snap.ID); err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte(snapshotPrefix+snap.ID), b)
	})
}

// GetSnapshot retrieves a snapshot by ID.
func (s *Store) GetSnapshot(id string) (Snapshot, bool, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get([]byte(snapshotPrefix + id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &snap)
	})
	if err != nil {
		return snap, false, err
	}
	return snap, snap.ID != "", nil
}

// ListSnapshots returns all snapshots, oldest first.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	var snaps []Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snaps = append(snaps, snap)
			return nil
		})
	})
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	return snaps, err
}

// DeleteSnapshot removes a snapshot by ID.
func (s *Store) DeleteSnapshot(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete([]byte(snapshotPrefix + id))
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all user-facing
// buckets, in AllBuckets order.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			st := BucketStats{Name: name}
			if err := b.ForEach(func(k, v []byte) error {
				st.Count++
				st.Bytes += int64(len(k) + len(v))
				return nil
			}); err != nil {
				return err
			}
			stats = append(stats, st)
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	known := false
	for _, b := range AllBuckets {
		known = known || b == name
	}
	if !known {
		return fmt.Errorf("unknown bucket %q (valid: %s)", name, strings.Join(AllBuckets, ", "))
	}
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}

// Compact copies every live page into a fresh file and swaps it in place of
// the database, returning the file size before and after. The store stays
// open on the new file.
func (s *Store) Compact() (before, after int64, err error) {
	path := s.db.Path()
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	before = fi.Size()

	tmp := path + ".compact"
	dst, err := bolt.Open(tmp, 0600, openOptions)
	if err != nil {
		return before, 0, fmt.Errorf("opening %s: %w", tmp, err)
	}
	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmp)
		return before, 0, fmt.Errorf("copying pages: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return before, 0, err
	}

	if err := s.db.Close(); err != nil {
		return before, 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return before, 0, fmt.Errorf("replacing database: %w", err)
	}
	if s.db, err = bolt.Open(path, 0600, openOptions); err != nil {
		return before, 0, fmt.Errorf("reopening db %s: %w", path, err)
	}

	if fi, err = os.Stat(path); err != nil {
		return before, 0, err
	}
	return before, fi.Size(), nil
}
