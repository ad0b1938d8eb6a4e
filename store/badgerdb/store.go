/*
Package badgerdb provides a CommitKVStore on top of a badger database.

Unlike the iavl store it keeps no history and provides no merkle proofs. The
commit hash is a rolling sha256 over every committed change set, so two nodes
that applied the same blocks end up with the same hash.
*/
package badgerdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	// All application data is stored under the data prefix so that it can
	// never collide with the commit metadata.
	dataPrefix    = []byte("d:")
	versionKey    = []byte("m:version")
	commitHashKey = []byte("m:hash")
)

// CommitStore keeps committed state in badger. Writes coming from cache
// wraps are held in memory until Commit.
type CommitStore struct {
	db *badger.DB

	mu      sync.Mutex
	pending map[string]*[]byte // nil value pointer means delete
	version int64
	hash    []byte
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens (or creates) a badger database in the given
// directory. Badger messages are forwarded to the logger.
func NewCommitStore(dir string, logger log.Logger) (*CommitStore, error) {
	opts := badger.DefaultOptions(dir)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.With("module", "badger")})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "cannot open badger %q: %s", dir, err)
	}
	return &CommitStore{
		db:      db,
		pending: make(map[string]*[]byte),
	}, nil
}

// Close releases the underlying database.
func (s *CommitStore) Close() error {
	return s.db.Close()
}

// Get returns the value at last committed state
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(key))
		switch {
		case err == badger.ErrKeyNotFound:
			return nil
		case err != nil:
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

// Has returns true if the key exists in the committed state.
func (s *CommitStore) Has(key []byte) (bool, error) {
	val, err := s.Get(key)
	return val != nil, err
}

// CacheWrap returns a cache over the committed state. Writing it queues the
// changes for the next Commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, &pendingBatch{parent: s}, nil)
}

// LoadLatestVersion reads the version and hash of the last commit.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey)
		switch {
		case err == badger.ErrKeyNotFound:
			s.version, s.hash = 0, nil
			return nil
		case err != nil:
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if len(raw) != 8 {
			return fmt.Errorf("invalid version value length: %d", len(raw))
		}
		s.version = int64(binary.BigEndian.Uint64(raw))

		item, err = txn.Get(commitHashKey)
		if err != nil {
			return err
		}
		s.hash, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.CommitID{Version: s.version, Hash: s.hash}, nil
}

// Commit writes all pending changes together with the new version and hash
// in a single badger transaction.
func (s *CommitStore) Commit() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	_, _ = h.Write(s.hash)

	version := s.version + 1
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	for _, k := range keys {
		val := s.pending[k]
		_, _ = h.Write([]byte(k))
		if val == nil {
			_, _ = h.Write([]byte{0})
			if err := txn.Delete(dataKey([]byte(k))); err != nil {
				return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
			}
			continue
		}
		_, _ = h.Write([]byte{1})
		_, _ = h.Write(*val)
		if err := txn.Set(dataKey([]byte(k)), *val); err != nil {
			return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	hash := h.Sum(nil)

	rawVersion := make([]byte, 8)
	binary.BigEndian.PutUint64(rawVersion, uint64(version))
	if err := txn.Set(versionKey, rawVersion); err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := txn.Set(commitHashKey, hash); err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := txn.Commit(); err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	s.version = version
	s.hash = hash
	s.pending = make(map[string]*[]byte)
	return store.CommitID{Version: version, Hash: hash}, nil
}

// NewBatch returns a batch that queues changes for the next Commit.
func (s *CommitStore) NewBatch() store.Batch {
	return &pendingBatch{parent: s}
}

// Set queues a write for the next Commit.
func (s *CommitStore) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	val := append([]byte(nil), value...)
	s.pending[string(key)] = &val
	return nil
}

// Delete queues a removal for the next Commit.
func (s *CommitStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[string(key)] = nil
	return nil
}

// pendingBatch collects operations and hands them over to the commit store
// queue when written.
type pendingBatch struct {
	parent *CommitStore
	ops    []store.Op
}

var _ store.Batch = (*pendingBatch)(nil)

func (b *pendingBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *pendingBatch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

func (b *pendingBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.parent); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

func dataKey(key []byte) []byte {
	return bytes.Join([][]byte{dataPrefix, key}, nil)
}

// badgerLogger adapts the tendermint logger to the badger logging interface.
type badgerLogger struct {
	log.Logger
}

func (l badgerLogger) format(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error(l.format(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Error(l.format(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Info(l.format(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Debug(l.format(format, args...))
}
