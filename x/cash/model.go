package cash

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/orm"
	amino "github.com/tendermint/go-amino"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the balance of a single wallet. Coins are always kept normalized.
type Set struct {
	Metadata *weave.Metadata `json:"metadata"`
	Coins    coin.Coins      `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

// Validate requires that all coins are in alphabetical order and none of
// them is zero or negative.
func (s *Set) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := s.Coins.Validate(); err != nil {
		return err
	}
	if !s.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	return nil
}

// Copy makes a new set with the same coins
func (s *Set) Copy() *Set {
	return &Set{
		Metadata: s.Metadata.Copy(),
		Coins:    s.Coins.Clone(),
	}
}

// Add modifies the set to add Coin c
func (s *Set) Add(c coin.Coin) error {
	cs, err := s.Coins.Add(c)
	if err != nil {
		return err
	}
	s.Coins = cs
	return nil
}

// Subtract modifies the set to remove Coin c
func (s *Set) Subtract(c coin.Coin) error {
	return s.Add(c.Negative())
}

// NewSet creates a normalized balance holding given coins.
func NewSet(coins ...*coin.Coin) (*Set, error) {
	s := &Set{Metadata: &weave.Metadata{Schema: 1}}
	for _, c := range coins {
		if c == nil {
			continue
		}
		if err := s.Add(*c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, amino.NewCodec(), &Set{}),
	}
}

// GetOrCreate returns the balance of given wallet. A wallet that was never
// funded is returned empty.
func (b Bucket) GetOrCreate(db weave.ReadOnlyKVStore, addr weave.Address) (*Set, error) {
	var s Set
	switch err := b.One(db, addr, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return NewSet()
	default:
		return nil, err
	}
}

// Save stores the balance. An emptied wallet is removed from the store.
func (b Bucket) Save(db weave.KVStore, addr weave.Address, s *Set) error {
	if s.Coins.IsEmpty() {
		if err := b.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return b.Put(db, addr, s)
}
