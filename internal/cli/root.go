package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/praneet25101-blip/ShieldedLending/config"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/node"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/store"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/wallet"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const passphraseEnv = config.EnvPrefix + "_PASSPHRASE"

// app carries the global flags and the resources opened for one command.
type app struct {
	configFile  string
	dataDir     string
	keystoreDir string
	hasher      string
	prover      string
	proverDir   string
	logLevel    string
	logFormat   string
	passphrase  string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd builds the lending command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "lending",
		Short: "Shielded lending ledger",
		Long: `lending drives a shielded lending ledger: borrowers register a commitment to
their credit secret, publish loan requests and prove the registered secret
without revealing it. Secrets stay in a local, passphrase-sealed keystore.`,
		Version:       "0.1.0-dev",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "journal directory (overrides data_dir)")
	rootCmd.PersistentFlags().StringVar(&a.keystoreDir, "keystore-dir", "", "keystore directory (overrides keystore_dir)")
	rootCmd.PersistentFlags().StringVar(&a.hasher, "hasher", "", "commitment hasher: sha256 or mimc (overrides hasher)")
	rootCmd.PersistentFlags().StringVar(&a.prover, "prover", "", "proving backend: groth16 or plonk (overrides prover)")
	rootCmd.PersistentFlags().StringVar(&a.proverDir, "prover-dir", "", "threshold proof setup directory (overrides prover_dir)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides log.level)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json (overrides log.format)")
	rootCmd.PersistentFlags().StringVar(&a.passphrase, "passphrase", "", "keystore passphrase (default $"+passphraseEnv+")")

	rootCmd.AddCommand(
		a.registerCreditCmd(),
		a.loanRequestCmd(),
		a.proveCmd(),
		a.approveCmd(),
		a.ledgerCmd(),
		a.historyCmd(),
		a.secretCmd(),
		a.keyCmd(),
		a.setupCmd(),
	)
	return rootCmd
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.keystoreDir != "" {
		cfg.KeystoreDir = a.keystoreDir
	}
	if a.hasher != "" {
		cfg.Hasher = a.hasher
	}
	if a.prover != "" {
		cfg.Prover = a.prover
	}
	if a.proverDir != "" {
		cfg.ProverDir = a.proverDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.passphrase == "" {
		a.passphrase = os.Getenv(passphraseEnv)
	}

	a.cfg = cfg
	a.log, err = cfg.NewLogger(cmd.ErrOrStderr())
	return err
}

func (a *app) openNode(ctx context.Context) (*node.Node, error) {
	return node.Open(ctx, node.Config{
		Dir:    a.cfg.DataDir,
		Hasher: a.cfg.CommitmentHasher(),
		Logger: a.log,
	})
}

// openKeystore returns the keystore and a function closing it.
func (a *app) openKeystore() (*wallet.Keystore, func(), error) {
	if a.passphrase == "" {
		return nil, nil, fmt.Errorf("keystore passphrase required: use --passphrase or $%s", passphraseEnv)
	}
	db, err := store.Open(a.cfg.KeystoreDir, store.Options{Logger: a.log})
	if err != nil {
		return nil, nil, err
	}
	return wallet.NewKeystore(db, []byte(a.passphrase), a.log), func() { _ = db.Close() }, nil
}
