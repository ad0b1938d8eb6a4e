package utils_test

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/app"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/iov-one/weave-timedwallet/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func stringTag(key, value string) common.KVPair {
	return common.KVPair{
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		stack weave.Handler
		tx    weave.Tx
		err   *errors.Error
		tags  []common.KVPair
	}{
		"simple call": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&weavetest.Handler{},
			),
			tx:   &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "timedwallet/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "timedwallet/create")},
		},
		"passes through error": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&weavetest.Handler{DeliverErr: errors.ErrHuman},
			),
			tx:  &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "timedwallet/create"}},
			err: errors.ErrHuman,
		},
		"broken transaction is not dispatched": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&weavetest.Handler{},
			),
			tx:  &weavetest.Tx{Err: errors.ErrInput},
			err: errors.ErrInput,
		},
		"tags are additive": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&weavetest.Handler{
					DeliverResult: weave.DeliverResult{Tags: []common.KVPair{stringTag("timedwallet.id", "01")}},
				},
			),
			tx: &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "timedwallet/joint_withdraw"}},
			tags: []common.KVPair{
				stringTag("timedwallet.id", "01"),
				stringTag(utils.ActionKey, "timedwallet/joint_withdraw"),
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := tc.stack.Deliver(context.Background(), store.MemStore(), tc.tx)
			if tc.err != nil {
				if !tc.err.Is(err) {
					t.Fatalf("unexpected error: %+v", err)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, len(tc.tags), len(res.Tags))
			for i := range tc.tags {
				assert.Equal(t, string(tc.tags[i].Key), string(res.Tags[i].Key))
				assert.Equal(t, string(tc.tags[i].Value), string(res.Tags[i].Value))
			}
		})
	}
}
