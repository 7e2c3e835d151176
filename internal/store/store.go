// Package store persists a dataset of viewport items in BoltDB and serves it
// back in index ranges, which makes it a chunk source for lazy loading.
package store

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/vista/internal/domain"
)

// Bucket names
var (
	bucketItems = []byte("items")
	bucketMeta  = []byte("meta")

	keyCount = []byte("count")
)

// importBatch is the number of lines written per transaction by ImportLines.
const importBatch = 1000

// record is the persisted form of a domain.Item.
type record struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Height   int               `json:"height,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func toRecord(it domain.Item) record {
	return record{ID: it.ID, Content: it.Content, Height: it.Height, Disabled: it.Disabled, Metadata: it.Metadata}
}

func (r record) item() domain.Item {
	return domain.Item{ID: r.ID, Content: r.Content, Height: r.Height, Disabled: r.Disabled, Metadata: r.Metadata}
}

// DatasetStore is an append-only ordered item collection. It is safe for
// concurrent use; lazy loads read from it off the update loop.
type DatasetStore struct {
	db *bolt.DB
	mu sync.RWMutex

	// Memory-only mode
	mem [][]byte
}

// Open opens (or creates) the dataset in dir. An empty dir keeps everything
// in memory.
func Open(dir string) (*DatasetStore, error) {
	if dir == "" {
		return &DatasetStore{}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "vista.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketItems, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DatasetStore{db: db}, nil
}

func (s *DatasetStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Persistent reports whether the store is backed by a file.
func (s *DatasetStore) Persistent() bool {
	return s.db != nil
}

func indexKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

func readCount(tx *bolt.Tx) int {
	v := tx.Bucket(bucketMeta).Get(keyCount)
	if len(v) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(v))
}

// Count returns the number of stored items.
func (s *DatasetStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return len(s.mem), nil
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = readCount(tx)
		return nil
	})
	return n, err
}

// Append adds items after the last stored index.
func (s *DatasetStore) Append(items ...domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	encoded := make([][]byte, len(items))
	for i, it := range items {
		data, err := json.Marshal(toRecord(it))
		if err != nil {
			return fmt.Errorf("encode item %q: %w", it.ID, err)
		}
		encoded[i] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		s.mem = append(s.mem, encoded...)
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		n := readCount(tx)
		for _, data := range encoded {
			if err := b.Put(indexKey(n), data); err != nil {
				return err
			}
			n++
		}
		return tx.Bucket(bucketMeta).Put(keyCount, indexKey(n))
	})
}

// ImportLines appends one item per line of r and returns how many were
// added. Line items get IDs "line-<index>".
func (s *DatasetStore) ImportLines(r io.Reader) (int, error) {
	base, err := s.Count()
	if err != nil {
		return 0, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	added := 0
	batch := make([]domain.Item, 0, importBatch)
	flush := func() error {
		if err := s.Append(batch...); err != nil {
			return err
		}
		added += len(batch)
		batch = batch[:0]
		return nil
	}
	for sc.Scan() {
		batch = append(batch, domain.Item{
			ID:      fmt.Sprintf("line-%d", base+added+len(batch)),
			Content: sc.Text(),
		})
		if len(batch) == importBatch {
			if err := flush(); err != nil {
				return added, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return added, fmt.Errorf("read lines: %w", err)
	}
	return added, flush()
}

// Reset removes every item.
func (s *DatasetStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		s.mem = nil
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketItems, bucketMeta} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// Range returns up to limit items starting at offset. Reading past the end
// yields a short (possibly empty) slice.
func (s *DatasetStore) Range(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("range %d+%d: %w", offset, limit, domain.ErrInvalidIndex)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw [][]byte
	if s.db == nil {
		end := min(offset+limit, len(s.mem))
		if offset < end {
			raw = s.mem[offset:end]
		}
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			c := tx.Bucket(bucketItems).Cursor()
			for k, v := c.Seek(indexKey(offset)); k != nil && len(raw) < limit; k, v = c.Next() {
				// Values are only valid for the life of the transaction.
				data := make([]byte, len(v))
				copy(data, v)
				raw = append(raw, data)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	items := make([]domain.Item, 0, len(raw))
	for i, data := range raw {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", offset+i, err)
		}
		items = append(items, r.item())
	}
	return items, nil
}

// Load implements domain.Loader.
func (s *DatasetStore) Load(ctx context.Context, start, count int) ([]domain.Item, error) {
	return s.Range(ctx, start, count)
}

var _ domain.Loader = (*DatasetStore)(nil)
