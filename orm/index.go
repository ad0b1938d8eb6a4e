package orm

import (
	"bytes"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	amino "github.com/tendermint/go-amino"
)

const compactIdxPrefix = "_i."

// MultiKeyIndexer calculates the secondary index keys for a given model.
// Returning no keys means the model is not indexed.
type MultiKeyIndexer func(Model) ([][]byte, error)

// compactIndex is an index implementation that stores all indexed entities as
// a set, serialized and stored under single key. This implmentation should be
// used only for small sized index collection.
//
// The value is always a MultiRef. A unique index refuses to hold more than
// one reference per value.
type compactIndex struct {
	name   string
	id     []byte
	cdc    *amino.Codec
	unique bool
	index  MultiKeyIndexer
	refKey func([]byte) []byte
}

var _ weave.QueryHandler = compactIndex{}

func newCompactIndex(name string, cdc *amino.Codec, indexer MultiKeyIndexer, unique bool, refKey func([]byte) []byte) compactIndex {
	return compactIndex{
		name:   name,
		id:     append([]byte(compactIdxPrefix), []byte(name+":")...),
		cdc:    cdc,
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// indexKey is the full key we store in the db, including prefix
func (i compactIndex) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the object in
// the secondary index.
//
// prev == nil means insert
// next == nil means delete
// both == nil is error
func (i compactIndex) Update(db weave.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}
	var prevKeys, nextKeys [][]byte
	var err error
	if prev != nil {
		if prevKeys, err = i.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if nextKeys, err = i.index(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}

	for _, k := range prevKeys {
		if !containsKey(nextKeys, k) {
			if err := i.remove(db, k, pk); err != nil {
				return err
			}
		}
	}
	for _, k := range nextKeys {
		if !containsKey(prevKeys, k) {
			if err := i.insert(db, k, pk); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i compactIndex) load(db weave.ReadOnlyKVStore, value []byte) (*MultiRef, error) {
	raw, err := db.Get(i.indexKey(value))
	if err != nil {
		return nil, err
	}
	var refs MultiRef
	if raw == nil {
		return &refs, nil
	}
	if err := i.cdc.UnmarshalBinaryBare(raw, &refs); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot decode %s index: %s", i.name, err)
	}
	return &refs, nil
}

func (i compactIndex) save(db weave.KVStore, value []byte, refs *MultiRef) error {
	key := i.indexKey(value)
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := i.cdc.MarshalBinaryBare(refs)
	if err != nil {
		return errors.Wrapf(errors.ErrState, "cannot encode %s index: %s", i.name, err)
	}
	return db.Set(key, raw)
}

func (i compactIndex) insert(db weave.KVStore, value, pk []byte) error {
	refs, err := i.load(db, value)
	if err != nil {
		return err
	}
	if i.unique && len(refs.Refs) > 0 {
		return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
	}
	if err := refs.Add(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.save(db, value, refs)
}

func (i compactIndex) remove(db weave.KVStore, value, pk []byte) error {
	refs, err := i.load(db, value)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.save(db, value, refs)
}

// Keys returns a list of all entity keys that were indexed under given value.
func (i compactIndex) Keys(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	refs, err := i.load(db, value)
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query handles queries from the QueryRouter. It returns all models
// referenced by the index value.
func (i compactIndex) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mode %q", mod)
	}
	refs, err := i.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]weave.Model, 0, len(refs))
	for _, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, errors.Wrapf(errors.ErrState, "index %s points to a missing entity", i.name)
		}
		res = append(res, weave.Pair(key, value))
	}
	return res, nil
}

func containsKey(keys [][]byte, key []byte) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
