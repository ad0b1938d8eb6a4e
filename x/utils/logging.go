package utils

import (
	"time"

	weave "github.com/iov-one/weave-timedwallet"
)

// Logging is a decorator that writes a log entry for every processed
// transaction, together with the time it took to process it.
type Logging struct{}

var _ weave.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs failures with error level and successes with debug level.
func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var log string
	if err == nil {
		log = res.Log
	}
	logResult(ctx, tx, start, log, err, true)
	return res, err
}

// Deliver logs failures with error level and successes with info level.
func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var log string
	if err == nil {
		log = res.Log
	}
	logResult(ctx, tx, start, log, err, false)
	return res, err
}

func logResult(ctx weave.Context, tx weave.Tx, start time.Time, msg string, err error, check bool) {
	logger := weave.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if tx != nil {
		if m, merr := tx.GetMsg(); merr == nil && m != nil {
			logger = logger.With("path", m.Path())
		}
	}

	// An empty message is still logged, the key values carry the
	// interesting part.
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
