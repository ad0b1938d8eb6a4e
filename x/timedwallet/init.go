package timedwallet

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x/cash"
)

const optKey = "timedwallets"

var _ weave.Initializer = (*Initializer)(nil)

// Initializer fulfils the Initializer interface to load data from the genesis
// file. Funds of genesis wallets are minted into the wallet accounts.
type Initializer struct {
	Minter cash.CoinMinter
}

// FromGenesis will parse initial wallet info from genesis and save it in the
// database.
func (i *Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var wallets []struct {
		ParticipantA weave.Address  `json:"participant_a"`
		ParticipantB weave.Address  `json:"participant_b"`
		Deadline     weave.UnixTime `json:"deadline"`
		Amount       coin.Coin      `json:"amount"`
		Memo         string         `json:"memo"`
	}
	if err := opts.ReadOptions(optKey, &wallets); err != nil {
		return err
	}

	bucket := NewBucket()
	for j, w := range wallets {
		id, err := bucket.NextID(db)
		if err != nil {
			return errors.Wrap(err, "cannot acquire ID")
		}
		wallet := NewTimedWallet(id, w.ParticipantA, w.ParticipantB, w.Deadline, w.Amount, w.Memo)
		if err := bucket.Put(db, id, wallet); err != nil {
			return errors.Wrapf(err, "wallet %d", j)
		}
		if err := i.Minter.CoinMint(db, wallet.Address, w.Amount); err != nil {
			return errors.Wrapf(err, "wallet %d: cannot issue coins", j)
		}
	}
	return nil
}
