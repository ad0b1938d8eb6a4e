package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/weave-timedwallet/errors"
)

// Genesis is the part of the tendermint genesis file that the application
// reads.
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState json.RawMessage `json:"app_state"`
}

// LoadGenesis reads the chain id and the application state from a genesis
// file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "read genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "parse genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis initializes the application state from the given genesis file.
// It is an alternative to receiving the genesis through InitChain.
func (s *StoreApp) LoadGenesis(filePath string) error {
	gen, err := LoadGenesis(filePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parseAppState(gen.AppState, gen.ChainID)
}
