package db

// Local implementation of DB using bolt

// Connection is opened automatically on each call
// Buckets are created if they don't exist, when using Put

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cedana/netbench/pkg/runner"
	bolt "go.etcd.io/bbolt"
)

const (
	OPEN_RO_PERMS = 0o444
	OPEN_RW_PERMS = 0o644
)

var runsBucket = []byte("runs")

type BoltDB struct {
	path string
}

func NewBoltDB(path string) *BoltDB {
	return &BoltDB{
		path: path,
	}
}

func (db *BoltDB) openRO() (*bolt.DB, error) {
	return bolt.Open(db.path, OPEN_RO_PERMS, &bolt.Options{ReadOnly: true})
}

func (db *BoltDB) openRW() (*bolt.DB, error) {
	return bolt.Open(db.path, OPEN_RW_PERMS, nil)
}

// Close is a noop, connections only live for the duration of a call.
func (db *BoltDB) Close() error {
	return nil
}

func (db *BoltDB) exists() bool {
	_, err := os.Stat(db.path)
	return err == nil
}

/////////////
// Getters //
/////////////

func (db *BoltDB) GetRun(ctx context.Context, id string) (*runner.Report, error) {
	if !db.exists() {
		return nil, ErrNotFound
	}

	conn, err := db.openRO()
	if err != nil {
		return nil, fmt.Errorf("could not open db: %v", err)
	}
	defer conn.Close()

	var report *runner.Report
	err = conn.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		report = &runner.Report{}
		return json.Unmarshal(v, report)
	})

	return report, err
}

/////////////
// Setters //
/////////////

func (db *BoltDB) PutRun(ctx context.Context, report *runner.Report) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not marshal run: %v", err)
	}

	conn, err := db.openRW()
	if err != nil {
		return fmt.Errorf("could not open db: %v", err)
	}
	defer conn.Close()

	return conn.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(runsBucket)
		if err != nil {
			return fmt.Errorf("could not create bucket: %v", err)
		}
		return b.Put([]byte(report.ID), value)
	})
}

/////////////
// Listers //
/////////////

// Run IDs are xids, which sort by creation time, so walking the
// bucket backwards yields the newest runs first.
func (db *BoltDB) ListRuns(ctx context.Context, limit int) ([]*runner.Report, error) {
	if !db.exists() {
		return nil, nil
	}

	conn, err := db.openRO()
	if err != nil {
		return nil, fmt.Errorf("could not open db: %v", err)
	}
	defer conn.Close()

	var list []*runner.Report
	err = conn.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(list) >= limit {
				break
			}
			report := &runner.Report{}
			if err := json.Unmarshal(v, report); err != nil {
				return fmt.Errorf("could not unmarshal run %s: %v", k, err)
			}
			list = append(list, report)
		}

		return nil
	})

	return list, err
}

//////////////
// Deleters //
//////////////

func (db *BoltDB) DeleteRun(ctx context.Context, id string) error {
	if !db.exists() {
		return ErrNotFound
	}

	conn, err := db.openRW()
	if err != nil {
		return fmt.Errorf("could not open db: %v", err)
	}
	defer conn.Close()

	return conn.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil || b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

var _ DB = (*BoltDB)(nil)

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
