package sigs

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/stretchr/testify/require"
)

type handlerRegistry map[string]weave.Handler

func (r handlerRegistry) Handle(m weave.Msg, h weave.Handler) {
	r[m.Path()] = h
}

func TestBumpSequence(t *testing.T) {
	var (
		cond1 = weavetest.NewCondition()
		cond2 = weavetest.NewCondition()
		key1  = cond1.Address()
		key2  = cond2.Address()
	)

	cases := map[string]struct {
		// Before performing the test, initialize the database with given
		// signer sequences.
		InitData       map[string]int64
		Msg            BumpSequenceMsg
		Signer         weave.Condition
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		// Handler increments by the requested value - 1, because the
		// regular transaction processing increments the sequence by one.
		WantSequences map[string]int64
	}{
		"great success": {
			InitData:      map[string]int64{string(key1): 1, string(key2): 9},
			Signer:        cond1,
			Msg:           BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 2},
			WantSequences: map[string]int64{string(key1): 2, string(key2): 9},
		},
		"increment by one is a noop": {
			InitData:      map[string]int64{string(key1): 5},
			Signer:        cond1,
			Msg:           BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 1},
			WantSequences: map[string]int64{string(key1): 5},
		},
		"transaction with a missing signature is rejected": {
			Msg:            BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 1},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"message with a zero sequence increment is invalid": {
			InitData:       map[string]int64{string(key1): 1},
			Signer:         cond1,
			Msg:            BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 0},
			WantCheckErr:   errors.ErrMsg,
			WantDeliverErr: errors.ErrMsg,
		},
		"message with a too big increment is invalid": {
			InitData:       map[string]int64{string(key1): 1},
			Signer:         cond1,
			Msg:            BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: maxSequenceIncrement + 1},
			WantCheckErr:   errors.ErrMsg,
			WantDeliverErr: errors.ErrMsg,
		},
		"user that we increment the sequence of must exist": {
			InitData:       map[string]int64{string(key2): 4},
			Signer:         cond1,
			Msg:            BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 1},
			WantCheckErr:   errors.ErrNotFound,
			WantDeliverErr: errors.ErrNotFound,
		},
		"sequence overflow is rejected": {
			InitData:       map[string]int64{string(key1): maxSequenceValue - 10},
			Signer:         cond1,
			Msg:            BumpSequenceMsg{Metadata: &weave.Metadata{Schema: 1}, Increment: 20},
			WantCheckErr:   errors.ErrOverflow,
			WantDeliverErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewBucket()
			for addr, seq := range tc.InitData {
				u := &UserData{Metadata: &weave.Metadata{Schema: 1}, Sequence: seq}
				require.NoError(t, b.Put(db, weave.Address(addr), u))
			}

			rt := handlerRegistry{}
			RegisterRoutes(rt, &weavetest.Auth{Signer: tc.Signer})
			h := rt[pathBumpSequenceMsg]

			tx := &weavetest.Tx{Msg: &tc.Msg}
			cache := db.CacheWrap()
			if _, err := h.Check(context.Background(), cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()
			if _, err := h.Deliver(context.Background(), db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			for addr, want := range tc.WantSequences {
				user, err := NewBucket().GetOrCreate(db, weave.Address(addr))
				require.NoError(t, err)
				if user.Sequence != want {
					t.Errorf("want %d sequence, got %d", want, user.Sequence)
				}
			}
		})
	}
}
