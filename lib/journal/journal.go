// Package journal keeps a record of clone runs in a bolt database so
// that partially made trees can be found after a failure.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	bolt "go.etcd.io/bbolt"
)

// Buckets
const (
	runsBucket    = "runs"
	entriesBucket = "entries"
)

// ErrorRunNotFound is returned when a run ID isn't in the journal
var ErrorRunNotFound = errors.New("run not found in journal")

// Run is the summary of one clone run
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished,omitempty"`
	RootID    string    `json:"rootId,omitempty"`
	RootName  string    `json:"rootName,omitempty"`
	RootLink  string    `json:"rootLink,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"errorKind,omitempty"`
	ErrorNode string    `json:"errorNode,omitempty"`
}

// Done returns true if the run has finished
func (r *Run) Done() bool {
	return !r.Finished.IsZero()
}

// Status returns a one word description of the state of the run
func (r *Run) Status() string {
	switch {
	case !r.Done():
		return "running"
	case r.Error != "":
		return "failed"
	}
	return "ok"
}

// Entry is one item created by a run
type Entry struct {
	Seq          uint64    `json:"seq"`
	Time         time.Time `json:"time"`
	Kind         string    `json:"kind"`
	SourceID     string    `json:"sourceId"`
	SourceName   string    `json:"sourceName"`
	DestID       string    `json:"destId"`
	DestName     string    `json:"destName"`
	DestParentID string    `json:"destParentId,omitempty"`
}

// DB is an open journal
type DB struct {
	db   *bolt.DB
	path string
	now  func() time.Time
}

// DefaultPath returns where the journal is kept unless configured
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "driveclone", "journal.db")
}

// Open opens or creates the journal at path, waiting up to timeout
// for another process to release it.
func Open(path string, timeout time.Duration) (*DB, error) {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create journal directory")
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open journal %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{runsBucket, entriesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialise journal")
	}
	fs.Debugf(nil, "Opened journal %q", path)
	return &DB{db: db, path: path, now: time.Now}, nil
}

// Path returns the file the journal is in
func (d *DB) Path() string {
	return d.path
}

// Close the journal
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) putRun(tx *bolt.Tx, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(runsBucket)).Put([]byte(run.ID), data)
}

// StartRun records the start of a clone of source and returns the
// Recorder for its items. A new ID is made if id is empty.
func (d *DB) StartRun(id, source string) (*Recorder, error) {
	if id == "" {
		id = uuid.New().String()
	}
	run := &Run{
		ID:      id,
		Source:  source,
		Started: d.now(),
	}
	err := d.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.Bucket([]byte(entriesBucket)).CreateBucket([]byte(run.ID)); err != nil {
			return err
		}
		return d.putRun(tx, run)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start journal run")
	}
	return &Recorder{d: d, run: run}, nil
}

// Runs returns all the runs in the journal, oldest first
func (d *DB) Runs() (runs []*Run, err error) {
	err = d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			run := new(Run)
			if err := json.Unmarshal(v, run); err != nil {
				return errors.Wrapf(err, "corrupt run %q", k)
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started.Before(runs[j].Started)
	})
	return runs, nil
}

// Run returns the run with id
func (d *DB) Run(id string) (run *Run, err error) {
	err = d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(runsBucket)).Get([]byte(id))
		if v == nil {
			return ErrorRunNotFound
		}
		run = new(Run)
		return json.Unmarshal(v, run)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "run %q", id)
	}
	return run, nil
}

// Entries returns the items created by run id in the order they
// were created
func (d *DB) Entries(id string) (entries []*Entry, err error) {
	err = d.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucket)).Bucket([]byte(id))
		if bucket == nil {
			return ErrorRunNotFound
		}
		// keys are big endian sequence numbers so iterate in order
		return bucket.ForEach(func(k, v []byte) error {
			entry := new(Entry)
			if err := json.Unmarshal(v, entry); err != nil {
				return errors.Wrapf(err, "corrupt entry %d", binary.BigEndian.Uint64(k))
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "run %q", id)
	}
	return entries, nil
}

// Delete removes run id and its entries
func (d *DB) Delete(id string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(runsBucket))
		if runs.Get([]byte(id)) == nil {
			return errors.Wrapf(ErrorRunNotFound, "run %q", id)
		}
		if err := runs.Delete([]byte(id)); err != nil {
			return err
		}
		err := tx.Bucket([]byte(entriesBucket)).DeleteBucket([]byte(id))
		if err == bolt.ErrBucketNotFound {
			err = nil
		}
		return err
	})
}

// Recorder writes the items of one run to the journal.
//
// It is safe for concurrent use.
type Recorder struct {
	d   *DB
	mu  sync.Mutex
	run *Run
}

// ID returns the run ID
func (r *Recorder) ID() string {
	return r.run.ID
}

// Run returns a copy of the run summary as it stands
func (r *Recorder) Run() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.run
}

// Record adds the creation of dst from src to the journal
func (r *Recorder) Record(src *fs.Node, dst *fs.Cloned, dstParentID string) error {
	r.mu.Lock()
	now := r.d.now()
	r.mu.Unlock()
	entry := &Entry{
		Time:         now,
		Kind:         src.Kind.String(),
		SourceID:     src.ID,
		SourceName:   src.Name,
		DestID:       dst.ID,
		DestName:     dst.Name,
		DestParentID: dstParentID,
	}
	return r.d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucket)).Bucket([]byte(r.run.ID))
		if bucket == nil {
			return ErrorRunNotFound
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry.Seq = seq
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
}

// Finish records the outcome of the run
func (r *Recorder) Finish(root *fs.Cloned, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run.Finished = r.d.now()
	if root != nil {
		r.run.RootID = root.ID
		r.run.RootName = root.Name
		r.run.RootLink = root.ViewLink
	}
	if runErr != nil {
		r.run.Error = runErr.Error()
		r.run.ErrorKind = fserrors.Kind(runErr)
		r.run.ErrorNode = fserrors.NodeID(runErr)
	}
	return r.d.db.Update(func(tx *bolt.Tx) error {
		return r.d.putRun(tx, r.run)
	})
}
