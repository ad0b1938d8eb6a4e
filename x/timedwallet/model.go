package timedwallet

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/orm"
	amino "github.com/tendermint/go-amino"
)

const (
	// BucketName is where the wallets are stored.
	BucketName = "timedwallet"

	maxMemoSize int = 128
)

// TimedWallet holds funds of two participants until they withdraw them
// together or until the reclaimer takes them back after the deadline.
type TimedWallet struct {
	Metadata *weave.Metadata `json:"metadata"`
	// ParticipantA is also the reclaimer once the deadline is reached.
	ParticipantA weave.Address  `json:"participant_a"`
	ParticipantB weave.Address  `json:"participant_b"`
	Deadline     weave.UnixTime `json:"deadline"`
	// Balance is what the wallet account holds. It is set to zero by
	// the withdrawal.
	Balance   coin.Coin `json:"balance"`
	Withdrawn bool      `json:"withdrawn"`
	// Address of the account that holds the funds.
	Address weave.Address `json:"address"`
	Memo    string        `json:"memo,omitempty"`
}

var _ orm.Model = (*TimedWallet)(nil)

// Validate ensures the wallet is valid.
func (w *TimedWallet) Validate() error {
	if err := w.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := w.ParticipantA.Validate(); err != nil {
		return errors.Wrap(err, "participant a")
	}
	if err := w.ParticipantB.Validate(); err != nil {
		return errors.Wrap(err, "participant b")
	}
	if w.ParticipantA.Equals(w.ParticipantB) {
		return errors.Wrap(errors.ErrInput, "participants must be distinct")
	}
	if w.Deadline == 0 {
		return errors.Wrap(errors.ErrInput, "deadline is required")
	}
	if err := w.Deadline.Validate(); err != nil {
		return errors.Wrap(err, "deadline")
	}
	if err := w.Balance.Validate(); err != nil {
		return errors.Wrap(err, "balance")
	}
	if w.Withdrawn {
		if !w.Balance.IsZero() {
			return errors.Wrap(errors.ErrState, "withdrawn wallet must be empty")
		}
	} else if !w.Balance.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "open wallet must hold funds")
	}
	if err := w.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if len(w.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrInput, "memo %s", w.Memo)
	}
	return nil
}

// Copy returns a deep copy of the wallet.
func (w *TimedWallet) Copy() *TimedWallet {
	return &TimedWallet{
		Metadata:     w.Metadata.Copy(),
		ParticipantA: w.ParticipantA.Clone(),
		ParticipantB: w.ParticipantB.Clone(),
		Deadline:     w.Deadline,
		Balance:      *w.Balance.Clone(),
		Withdrawn:    w.Withdrawn,
		Address:      w.Address.Clone(),
		Memo:         w.Memo,
	}
}

// NewTimedWallet returns an open wallet with given ID holding the deposit.
func NewTimedWallet(
	id []byte,
	participantA weave.Address,
	participantB weave.Address,
	deadline weave.UnixTime,
	deposit coin.Coin,
	memo string,
) *TimedWallet {
	return &TimedWallet{
		Metadata:     &weave.Metadata{Schema: 1},
		ParticipantA: participantA,
		ParticipantB: participantB,
		Deadline:     deadline,
		Balance:      deposit,
		Address:      Condition(id).Address(),
		Memo:         memo,
	}
}

// Condition calculates the condition of the wallet account given its ID.
func Condition(id []byte) weave.Condition {
	return weave.NewCondition("timedwallet", "seq", id)
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
	seq orm.Sequence
}

// NewBucket returns a bucket for wallets, indexed by participant.
func NewBucket() Bucket {
	b := orm.NewModelBucket(BucketName, amino.NewCodec(), &TimedWallet{}).
		WithIndex("participant", idxParticipant, false)
	return Bucket{
		ModelBucket: b,
		seq:         b.Sequence(orm.SeqID),
	}
}

// NextID returns a new, never used wallet ID.
func (b Bucket) NextID(db weave.KVStore) ([]byte, error) {
	return b.seq.NextVal(db)
}

// GetWallet loads the wallet with given ID.
func (b Bucket) GetWallet(db weave.ReadOnlyKVStore, id []byte) (*TimedWallet, error) {
	var w TimedWallet
	if err := b.One(db, id, &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %X", id)
	}
	return &w, nil
}

// ByParticipant returns the IDs of all wallets given address takes part in.
func (b Bucket) ByParticipant(db weave.ReadOnlyKVStore, addr weave.Address) ([][]byte, error) {
	return b.ByIndex(db, "participant", addr)
}

func idxParticipant(m orm.Model) ([][]byte, error) {
	w, ok := m.(*TimedWallet)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only index TimedWallet, got %T", m)
	}
	return [][]byte{w.ParticipantA, w.ParticipantB}, nil
}
