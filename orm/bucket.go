/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* Models are serialized with the amino codec of the application.
* It may possess one or more secondary indexes (1:1 or 1:N)
* Easy queries for one entity and for all entities sharing an index value.
*/
package orm

import (
	"fmt"
	"reflect"
	"regexp"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	// SeqID is a constant to use to get a default ID sequence
	SeqID = "id"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	// Validate returns error if the model is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// ModelBucket is a prefixed subspace of the DB that stores models of a
// single type. It may maintain secondary indexes and sequences.
type ModelBucket struct {
	name    string
	prefix  []byte
	cdc     *amino.Codec
	model   reflect.Type
	indexes map[string]compactIndex
}

var _ weave.QueryHandler = ModelBucket{}

// NewModelBucket creates a bucket to store models of the same type as
// given prototype. The prototype must be a pointer.
func NewModelBucket(name string, cdc *amino.Codec, proto Model) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	tp := reflect.TypeOf(proto)
	if tp == nil || tp.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("bucket %s model must be a pointer, got %T", name, proto))
	}
	return ModelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		cdc:    cdc,
		model:  tp,
	}
}

// Name returns the bucket name used to prefix all keys.
func (b ModelBucket) Name() string {
	return b.name
}

// Register registers this Bucket and all indexes.
// You can define a name here for queries, which is
// different than the bucket name used to prefix the data
func (b ModelBucket) Register(name string, r weave.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for name, idx := range b.indexes {
		r.Register(root+"/"+name, idx)
	}
}

// Query handles queries from the QueryRouter
func (b ModelBucket) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mode %q", mod)
	}
	key := b.DBKey(data)
	value, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	// return nothing on miss
	if value == nil {
		return nil, nil
	}
	return []weave.Model{weave.Pair(key, value)}, nil
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consequetive calls to overwrite the same byte array.
func (b ModelBucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One query the database for a single model instance. Lookup is done by the
// primary index key. Result is loaded into given destination model.
// This method returns ErrNotFound if the entity does not exist in the
// database. If given model type cannot be used to contain stored entity,
// ErrType is returned.
func (b ModelBucket) One(db weave.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, b.model)
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", b.model.Elem().Name())
	}
	if err := b.cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot decode %s: %s", b.model.Elem().Name(), err)
	}
	return nil
}

// Has returns nil if an entity with given primary key exists and
// ErrNotFound otherwise.
func (b ModelBucket) Has(db weave.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

// Put saves given model in the database under given key. All secondary
// indexes are updated.
func (b ModelBucket) Put(db weave.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored as %s", m, b.model)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := b.cdc.MarshalBinaryBare(m)
	if err != nil {
		return errors.Wrapf(errors.ErrState, "cannot encode: %s", err)
	}

	prev, err := b.load(db, key)
	if err != nil {
		return err
	}
	if err := b.updateIndexes(db, key, prev, m); err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db weave.KVStore, key []byte) error {
	prev, err := b.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.ErrNotFound
	}
	if err := b.updateIndexes(db, key, prev, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// load returns the stored model or nil if not found.
func (b ModelBucket) load(db weave.ReadOnlyKVStore, key []byte) (Model, error) {
	if len(b.indexes) == 0 {
		ok, err := db.Has(b.DBKey(key))
		if err != nil || !ok {
			return nil, err
		}
		// Index-less buckets never need the previous value.
		return reflect.New(b.model.Elem()).Interface().(Model), nil
	}
	m := reflect.New(b.model.Elem()).Interface().(Model)
	switch err := b.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

func (b ModelBucket) updateIndexes(db weave.KVStore, key []byte, prev, next Model) error {
	for _, idx := range b.indexes {
		if err := idx.Update(db, key, prev, next); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns a Sequence by name
func (b ModelBucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b ModelBucket) WithIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucket {
	// no duplicate indexes! (panic on init)
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}

	iname := b.name + "_" + name
	add := newCompactIndex(iname, b.cdc, indexer, unique, b.DBKey)
	indexes := make(map[string]compactIndex, len(b.indexes)+1)
	for n, i := range b.indexes {
		indexes[n] = i
	}
	indexes[name] = add
	b.indexes = indexes
	return b
}

// ByIndex returns the primary keys of all models that were indexed under
// given value by the named index. Keys are sorted.
func (b ModelBucket) ByIndex(db weave.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	idx, ok := b.indexes[indexName]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, indexName)
	}
	return idx.Keys(db, value)
}
