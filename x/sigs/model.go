package sigs

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/orm"
	amino "github.com/tendermint/go-amino"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the javascript clients, the greatest safe
// integer there is 2^53 - 1.
const maxSequenceValue = (1 << 53) - 1

// UserData holds the replay protection state of a single signer.
type UserData struct {
	Metadata *weave.Metadata `json:"metadata"`
	Sequence int64           `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	if err := u.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores UserData under the address of the signer.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, amino.NewCodec(), &UserData{}),
	}
}

// GetOrCreate loads the signer data or initializes a new one, starting
// with sequence zero. A new user is not saved.
func (b Bucket) GetOrCreate(db weave.ReadOnlyKVStore, signer weave.Address) (*UserData, error) {
	var user UserData
	switch err := b.One(db, signer, &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Metadata: &weave.Metadata{Schema: 1}}, nil
	default:
		return nil, err
	}
}
