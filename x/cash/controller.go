package cash

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins is a safe and reliable way to transfer money between
	// accounts. It fails if the source does not hold enough coins.
	MoveCoins(db weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	// CoinMint increases the number of funds on given account by a
	// specified amount.
	CoinMint(db weave.KVStore, dest weave.Address, amount coin.Coin) error
}

// Controller is the functionality needed by cash.Handler and the
// extensions that hold funds.
type Controller interface {
	CoinMover
	CoinMinter
	// Balance returns the coins held by given wallet.
	Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error)
}

// BaseController implements Controller interface, using the cash bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the coins held by given wallet.
func (c BaseController) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	s, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load wallet")
	}
	return s.Coins, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount: %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := c.bucket.GetOrCreate(db, src)
	if err != nil {
		return err
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s cannot pay %s", src, amount)
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := c.bucket.Save(db, src, sender); err != nil {
		return err
	}

	// Load the recipient after the sender was saved, source and
	// destination can be the same wallet.
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}

// CoinMint attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(db weave.KVStore, dest weave.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}
