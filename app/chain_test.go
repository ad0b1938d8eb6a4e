package app

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/iov-one/weave-timedwallet/x/utils"
	"github.com/stretchr/testify/assert"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	c3 := &weavetest.Decorator{}
	var skipped *weavetest.Decorator
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		c2,
		skipped,
		panicAtHeightDecorator(6),
		c3,
	).WithHandler(h)

	bg := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "timedwallet/create"}}

	_, err := stack.Check(weave.WithHeight(bg, 4), db, tx)
	assert.NoError(t, err)
	_, err = stack.Deliver(weave.WithHeight(bg, 4), db, tx)
	assert.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// Trigger a panic, the recovery decorator turns it into an error.
	ctx := weave.WithHeight(bg, 8)
	_, err = stack.Check(ctx, db, tx)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrPanic.Is(err))

	assert.Equal(t, 4, c1.CallCount())
	assert.Equal(t, 4, c2.CallCount())
	// The panic happens before c3 is reached.
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

// panicAtHeightDecorator panics if the block height is at or above the
// given one.
type panicAtHeightDecorator int64

func (p panicAtHeightDecorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	if h, _ := weave.GetHeight(ctx); h >= int64(p) {
		panic("too high")
	}
	return next.Check(ctx, db, tx)
}

func (p panicAtHeightDecorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if h, _ := weave.GetHeight(ctx); h >= int64(p) {
		panic("too high")
	}
	return next.Deliver(ctx, db, tx)
}
