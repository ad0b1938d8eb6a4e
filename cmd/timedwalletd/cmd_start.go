package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	timedwalletd "github.com/iov-one/weave-timedwallet/cmd/timedwalletd/app"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/abci/server"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(v, cmd)
			if err != nil {
				return err
			}

			backend := v.GetString(flagBackend)
			application, kv, err := timedwalletd.GenerateApp(backend, dataDir(v), logger, v.GetBool(flagDebug))
			if err != nil {
				return err
			}

			addr := v.GetString(flagBind)
			logger.Info("Starting ABCI app", "bind", addr, "backend", backend)

			svr, err := server.NewServer(addr, "socket", application)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
			}
			svr.SetLogger(logger.With("module", "abci-server"))
			if err := svr.Start(); err != nil {
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			logger.Info("Stopping ABCI app", "signal", <-sig)

			if err := svr.Stop(); err != nil {
				logger.Error("cannot stop server", "err", err)
			}
			if c, ok := kv.(io.Closer); ok {
				return c.Close()
			}
			return nil
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().Bool(flagDebug, false, "call stack returned on error")
	cmd.Flags().String(flagBackend, "iavl", "database backend (mem, iavl or badger)")
	cmd.Flags().String(flagDBDir, "data", "database directory, relative to home")
	return cmd
}
