package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagBind     = "bind"
	flagDebug    = "debug"
	flagLogLevel = "log_level"
	flagBackend  = "db_backend"
	flagDBDir    = "db_dir"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// newRootCmd returns the timedwalletd command tree. All subcommands share the
// configuration loaded from the home directory.
func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "timedwalletd",
		Short:         "Timed multisig wallet node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cmd)
		},
	}
	root.PersistentFlags().String(flagHome, defaultHome(), "directory to store files under")
	root.PersistentFlags().String(flagLogLevel, "info", "log level (debug, info, error or none)")

	root.AddCommand(
		newInitCmd(v),
		newStartCmd(v),
		newKeygenCmd(),
		newAddressCmd(),
		newSignCmd(),
		newAdaptorCmd(),
		newVersionCmd(),
	)
	return root
}

func defaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".timedwallet")
}

// loadConfig reads config.toml from the home directory, if present. Values
// are overwritten by TIMEDWALLET_* environment variables and command line
// flags.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetDefault(flagBind, "tcp://localhost:26658")
	v.SetDefault(flagDebug, false)
	v.SetDefault(flagLogLevel, "info")
	v.SetDefault(flagBackend, "iavl")
	v.SetDefault(flagDBDir, "data")

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("timedwallet")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(v.GetString(flagHome))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("cannot read config: %s", err)
		}
	}
	return nil
}

// newLogger returns a tendermint logger writing to out, filtered to the
// configured level.
func newLogger(v *viper.Viper, cmd *cobra.Command) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(cmd.OutOrStdout())).
		With("module", "timedwallet")
	opt, err := log.AllowLevel(v.GetString(flagLogLevel))
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

// dataDir resolves the database directory against the home directory.
func dataDir(v *viper.Viper) string {
	dir := v.GetString(flagDBDir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(v.GetString(flagHome), dir)
}
