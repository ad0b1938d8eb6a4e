package sigs

import "github.com/iov-one/weave-timedwallet/errors"

// ErrInvalidSequence is returned when a signature declares a sequence that
// is not the next one of its signer.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
