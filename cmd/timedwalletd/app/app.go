/*
Package timedwalletd links together all the various components
to construct the timedwalletd app.
*/
package timedwalletd

import (
	"context"
	"path/filepath"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/app"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store/badgerdb"
	"github.com/iov-one/weave-timedwallet/store/iavl"
	"github.com/iov-one/weave-timedwallet/x"
	"github.com/iov-one/weave-timedwallet/x/cash"
	"github.com/iov-one/weave-timedwallet/x/sigs"
	"github.com/iov-one/weave-timedwallet/x/timedwallet"
	"github.com/iov-one/weave-timedwallet/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is returned by the ABCI Info call.
const Name = "timedwalletd"

// Storage backends accepted by CommitKVStore.
const (
	BackendMem    = "mem"
	BackendIAVL   = "iavl"
	BackendBadger = "badger"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		// unsigned tx reach the handlers with no caller, which every
		// handler refuses as unauthorized
		sigs.NewDecorator().AllowMissingSigs(),
		utils.NewActionTagger(),
		// on DeliverTx, bad tx will increment the nonce even if the
		// message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Controller returns the coin controller shared by all extensions.
func Controller() cash.Controller {
	return cash.NewController(cash.NewBucket())
}

// Router returns a default router, dispatching to the cash, sigs and
// timedwallet handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := Controller()
	cash.RegisterRoutes(r, authFn, ctrl)
	sigs.RegisterRoutes(r, authFn)
	timedwallet.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/wallets", "/auth", "/timedwallets" and
// "/timedwallets/participant"
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		timedwallet.RegisterQuery,
	)
	return r
}

// Initializers returns all initializers that read the genesis file.
func Initializers() weave.Initializer {
	return weave.MultiInitializer{
		cash.Initializer{},
		&timedwallet.Initializer{Minter: Controller()},
	}
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() weave.Handler {
	return Chain().WithHandler(Router(Authenticator()))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h weave.Handler, tx weave.TxDecoder, kv weave.CommitKVStore, logger log.Logger, debug bool) (app.BaseApp, error) {
	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store = store.WithInit(Initializers()).WithLogger(logger)
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore of the given backend that
// persists the data in dir.
func CommitKVStore(backend, dir string, logger log.Logger) (weave.CommitKVStore, error) {
	switch backend {
	case BackendMem:
		return iavl.NewMemCommitStore(), nil
	case BackendIAVL:
		path, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "database dir %q: %s", dir, err)
		}
		return iavl.NewCommitStore(path, "timedwallet")
	case BackendBadger:
		path, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "database dir %q: %s", dir, err)
		}
		return badgerdb.NewCommitStore(filepath.Join(path, "timedwallet.badger"), logger)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown database backend %q", backend)
	}
}

// GenerateApp is used to create a stub for the start command.
func GenerateApp(backend, dir string, logger log.Logger, debug bool) (app.BaseApp, weave.CommitKVStore, error) {
	kv, err := CommitKVStore(backend, dir, logger)
	if err != nil {
		return app.BaseApp{}, nil, err
	}
	application, err := Application(Name, Stack(), TxDecoder, kv, logger, debug)
	if err != nil {
		return app.BaseApp{}, nil, err
	}
	return application, kv, nil
}
