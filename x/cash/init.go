package cash

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use weave.Address, so address in hex, not base64
type GenesisAccount struct {
	Address weave.Address `json:"address"`
	Coins   coin.Coins    `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database. An address listed more than once holds the
// sum of all its entries.
func (Initializer) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}

	var order []weave.Address
	balances := make(map[string]coin.Coins)
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		key := acct.Address.String()
		prev, ok := balances[key]
		if !ok {
			order = append(order, acct.Address)
		}
		sum, err := prev.Combine(acct.Coins)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		balances[key] = sum
	}

	bucket := NewBucket()
	for _, addr := range order {
		set, err := NewSet(balances[addr.String()]...)
		if err != nil {
			return errors.Wrapf(err, "account %s", addr)
		}
		if err := bucket.Save(kv, addr, set); err != nil {
			return errors.Wrapf(err, "account %s", addr)
		}
	}
	return nil
}
