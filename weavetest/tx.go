package weavetest

import weave "github.com/iov-one/weave-timedwallet"

// Tx represents a weave transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg weave.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ weave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (weave.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg represents a weave message.
type Msg struct {
	// RoutePath is returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the validation.
	Err error
}

var _ weave.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
