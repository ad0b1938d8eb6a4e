package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	cases := map[string]struct {
		bucket     string
		name       string
		increments int64
	}{
		"first sequence": {
			bucket: "wallets", name: "id", increments: 22,
		},
		"same bucket different name": {
			bucket: "wallets", name: "other", increments: 11,
		},
		"different bucket same name": {
			bucket: "counters", name: "id", increments: 77,
		},
		"first sequence continues": {
			bucket: "wallets", name: "id", increments: 18,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.name)
			init, orig, err := s.Latest(db)
			require.NoError(t, err)

			var val int64
			for i := int64(0); i < tc.increments; i++ {
				val, err = s.NextInt(db)
				require.NoError(t, err)
			}
			assert.Equal(t, init+tc.increments, val)

			// make sure final value is bigger than original value
			// if we use the raw bytes to index stuff
			_, last, err := s.Latest(db)
			require.NoError(t, err)
			assert.Equal(t, 1, bytes.Compare(last, orig))
		})
	}
}

func TestSequenceNextVal(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("wallets", SeqID)

	first, err := s.NextVal(db)
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(1), first)

	second, err := s.NextVal(db)
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(2), second)
	assert.NoError(t, ValidateSequence(second))
}

func TestValidateSequence(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(ValidateSequence(nil)))
	assert.True(t, errors.ErrInput.Is(ValidateSequence([]byte{1, 2})))

	_, err := DecodeSequence([]byte{1, 2, 3})
	assert.True(t, errors.ErrInput.Is(err))
}
