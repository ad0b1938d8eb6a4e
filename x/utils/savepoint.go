package utils

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
)

// Savepoint runs the rest of the stack on a cache wrap of the store. The
// cache is written only when processing succeeds, so a failed transaction
// leaves no partial changes behind.
//
// A new Savepoint is inactive. Call OnCheck and/or OnDeliver to choose
// where it applies.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ weave.Decorator = Savepoint{}

// NewSavepoint creates an inactive Savepoint decorator.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a copy that is active for CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a copy that is active for DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	cache, ok := s.wrap(db, s.onCheck)
	if !ok {
		return next.Check(ctx, db, tx)
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write savepoint")
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	cache, ok := s.wrap(db, s.onDeliver)
	if !ok {
		return next.Deliver(ctx, db, tx)
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write savepoint")
	}
	return res, nil
}

func (Savepoint) wrap(db weave.KVStore, active bool) (weave.KVCacheWrap, bool) {
	if !active {
		return nil, false
	}
	c, ok := db.(weave.CacheableKVStore)
	if !ok {
		return nil, false
	}
	return c.CacheWrap(), true
}
