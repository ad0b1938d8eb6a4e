package timedwallet

import (
	"github.com/iov-one/weave-timedwallet/errors"
)

// The descriptions are part of the public interface. Clients match the
// transaction log against them.
var (
	ErrAlreadyWithdrawn   = errors.Register(1100, "Funds already withdrawn")
	ErrTooLateForMultisig = errors.Register(1101, "Too late for multisig")
	ErrInvalidSignatures  = errors.Register(1102, "Invalid signatures")
	ErrNotAuthorized      = errors.Register(1103, "Not an authorized participant")
	ErrTooEarly           = errors.Register(1104, "Too early")
)
