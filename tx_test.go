package weave

import (
	"testing"

	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/stretchr/testify/assert"
)

type demoMsg struct {
	Num  int
	Text string
}

func (demoMsg) Path() string { return "demo/msg" }

func (m demoMsg) Validate() error {
	if m.Num < 0 {
		return errors.Wrap(errors.ErrMsg, "negative num")
	}
	return nil
}

var _ Msg = (*demoMsg)(nil)

type otherMsg struct{}

func (otherMsg) Path() string    { return "demo/other" }
func (otherMsg) Validate() error { return nil }

type demoTx struct {
	msg Msg
	err error
}

func (tx demoTx) GetMsg() (Msg, error) { return tx.msg, tx.err }

func TestGetPath(t *testing.T) {
	assert.Equal(t, "demo/msg", GetPath(demoTx{msg: &demoMsg{}}))
	assert.Equal(t, "(missing)", GetPath(demoTx{}))
	assert.Equal(t, "(missing)", GetPath(demoTx{err: errors.ErrMsg}))
}

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dst     interface{}
		want    interface{}
		wantErr *errors.Error
	}{
		"pointer message": {
			tx:   demoTx{msg: &demoMsg{Num: 3, Text: "x"}},
			dst:  &demoMsg{},
			want: &demoMsg{Num: 3, Text: "x"},
		},
		"value message": {
			tx:   demoTx{msg: demoMsg{Num: 4}},
			dst:  &demoMsg{},
			want: &demoMsg{Num: 4},
		},
		"missing message": {
			tx:      demoTx{},
			dst:     &demoMsg{},
			wantErr: errors.ErrMsg,
		},
		"message error is passed through": {
			tx:      demoTx{err: errors.ErrInput},
			dst:     &demoMsg{},
			wantErr: errors.ErrInput,
		},
		"destination is not a pointer": {
			tx:      demoTx{msg: &demoMsg{}},
			dst:     demoMsg{},
			wantErr: errors.ErrType,
		},
		"destination of a different type": {
			tx:      demoTx{msg: &demoMsg{}},
			dst:     &otherMsg{},
			wantErr: errors.ErrType,
		},
		"invalid message": {
			tx:      demoTx{msg: &demoMsg{Num: -1}},
			dst:     &demoMsg{},
			wantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := LoadMsg(tc.tx, tc.dst)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.dst)
			}
		})
	}
}
