package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
	bolt "go.etcd.io/bbolt"
)

const recordsBucket = "records"

// Bolt keeps records as JSON values in a bbolt bucket keyed by big-endian id.
// The bucket sequence is the id high-water mark.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens the bbolt file and ensures the bucket exists. bbolt takes an
// exclusive file lock, so a second session fails here after one second.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating directory for %s: %w", store.ErrConnection, path, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", store.ErrConnection, path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating bucket: %w", store.ErrConnection, err)
	}

	return &Bolt{db: db, bucket: []byte(recordsBucket)}, nil
}

func boltKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// NextID advances the bucket sequence, skipping past any id already stored.
func (b *Bolt) NextID() (int64, error) {
	var id int64
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}
		if k, _ := bkt.Cursor().Last(); k != nil {
			if maxID := binary.BigEndian.Uint64(k); seq <= maxID {
				seq = maxID + 1
				if err := bkt.SetSequence(seq); err != nil {
					return err
				}
			}
		}
		id = int64(seq)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("allocating id: %w", err)
	}
	return id, nil
}

func (b *Bolt) Get(id int64) (record.Record, bool, error) {
	var rec record.Record
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(boltKey(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return record.Record{}, false, fmt.Errorf("reading record %d: %w", id, err)
	}
	return rec, found, nil
}

func (b *Bolt) List() ([]record.Record, error) {
	var recs []record.Record
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, v []byte) error {
			var rec record.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return recs, nil
}

func (b *Bolt) Put(rec record.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %d: %w", rec.ID, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put(boltKey(rec.ID), payload)
	})
}

func (b *Bolt) Delete(id int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete(boltKey(id))
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
