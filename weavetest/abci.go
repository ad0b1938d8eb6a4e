package weavetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Tester is implemented by both *testing.T and *testing.B. Use it instead of
// the pointer type to allow notation to accept both objects.
type Tester interface {
	Helper()
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// MarshalTx is a transaction that can be serialized for the ABCI interface.
type MarshalTx interface {
	weave.Tx
	Marshal() ([]byte, error)
}

// ABCIError is returned by the WeaveRunner when the application refuses a
// transaction. It carries the ABCI code and log of the response.
type ABCIError struct {
	Code uint32
	Log  string
}

func (e *ABCIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Log)
}

// WeaveRunner provides a translation layer between an ABCI interface and a
// weave application. It takes care of serializing messages and creating
// blocks.
type WeaveRunner struct {
	chainID string
	height  int64
	now     time.Time
	t       Tester
	app     abci.Application
}

// NewWeaveRunner creates a WeaveRunner instance that can be used to process
// deliver and check transaction requests using weave API. Blocks are
// created with the given block time until it is changed with SetBlockTime.
func NewWeaveRunner(t Tester, app abci.Application, chainID string, now time.Time) *WeaveRunner {
	return &WeaveRunner{
		chainID: chainID,
		now:     now,
		t:       t,
		app:     app,
	}
}

// WeaveApp is implemented by a weave application. This is the minimal
// interface required by the WeaveRunner to be able to connect ABCI and weave
// APIs together.
type WeaveApp interface {
	DeliverTx(MarshalTx) error
	CheckTx(MarshalTx) error
	Query(path string, data []byte) ([]byte, error)
}

var _ WeaveApp = (*WeaveRunner)(nil)

// SetBlockTime changes the time of all following blocks.
func (w *WeaveRunner) SetBlockTime(now time.Time) {
	w.now = now
}

// Height returns the height of the last created block.
func (w *WeaveRunner) Height() int64 {
	return w.height
}

// InitChain serialize to JSON given genesis and loads it. Loading a genesis is
// causing a block creation.
func (w *WeaveRunner) InitChain(genesis interface{}) {
	w.t.Helper()

	raw, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		w.t.Fatalf("cannot JSON serialize genesis: %s", err)
	}

	changed := w.InBlock(func(WeaveApp) error {
		w.app.InitChain(abci.RequestInitChain{
			Time:          w.now,
			ChainId:       w.chainID,
			AppStateBytes: raw,
		})
		return nil
	})
	if !changed {
		w.t.Fatalf("genesis did not change the state")
	}
}

// CheckTx translates given weave transaction into ABCI interface and executes.
func (w *WeaveRunner) CheckTx(tx MarshalTx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	if resp := w.app.CheckTx(raw); resp.Code != 0 {
		return &ABCIError{Code: resp.Code, Log: resp.Log}
	}
	return nil
}

// DeliverTx translates given weave transaction into ABCI interface and
// executes.
func (w *WeaveRunner) DeliverTx(tx MarshalTx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	if resp := w.app.DeliverTx(raw); resp.Code != 0 {
		return &ABCIError{Code: resp.Code, Log: resp.Log}
	}
	return nil
}

// Query runs an ABCI query against the committed state and returns the
// serialized result values.
func (w *WeaveRunner) Query(path string, data []byte) ([]byte, error) {
	resp := w.app.Query(abci.RequestQuery{Path: path, Data: data})
	if resp.Code != 0 {
		return nil, &ABCIError{Code: resp.Code, Log: resp.Log}
	}
	return resp.Value, nil
}

// InBlock begins a block and runs given function. All transactions executed
// withing given function are part of newly created block. Upon success the
// block is finished and changes committed.
// InBlock returns true if the application state was modified.
//
// Any failure is ending the test instantly.
func (w *WeaveRunner) InBlock(executeTx func(WeaveApp) error) bool {
	w.t.Helper()

	w.height++

	initialHash := w.app.Info(abci.RequestInfo{}).LastBlockAppHash

	// BeginBlock will panic on error.
	w.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{
			ChainID: w.chainID,
			Height:  w.height,
			Time:    w.now,
		},
	})

	if err := executeTx(w); err != nil {
		w.t.Fatalf("operation failed with %+v", err)
	}

	w.app.EndBlock(abci.RequestEndBlock{
		Height: w.height,
	})

	// Commit data contains the new app hash. It differs from the initial
	// hash only if the state was modified.
	finalHash := w.app.Commit().Data
	return !bytes.Equal(initialHash, finalHash)
}
