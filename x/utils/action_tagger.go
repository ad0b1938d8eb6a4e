package utils

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key that ActionTagger appends.
const ActionKey = "action"

// ActionTagger tags every successfully delivered transaction with
// action=<message path>, so that clients can subscribe to for example all
// joint withdrawals with a single query.
type ActionTagger struct{}

var _ weave.Decorator = ActionTagger{}

// NewActionTagger creates an ActionTagger decorator.
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check passes the request along.
func (ActionTagger) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends the action tag to a successful result.
func (ActionTagger) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	// Fail before dispatching if the message cannot be read.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	return res, nil
}
