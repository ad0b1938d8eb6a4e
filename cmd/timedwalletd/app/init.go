package timedwalletd

import (
	"encoding/json"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x/cash"
)

// GenInitOptions produces the app_state of a development chain: a single
// rich account holding the given amount and no wallets.
func GenInitOptions(owner weave.Address, amount coin.Coin) (json.RawMessage, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := amount.Validate(); err != nil {
		return nil, errors.Wrap(err, "amount")
	}
	state := struct {
		Cash         []cash.GenesisAccount `json:"cash"`
		TimedWallets []struct{}            `json:"timedwallets"`
	}{
		Cash: []cash.GenesisAccount{
			{Address: owner, Coins: coin.Coins{&amount}},
		},
		TimedWallets: []struct{}{},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot serialize app state: %s", err)
	}
	return raw, nil
}
