package cli

import (
	"fmt"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/wallet"
	"github.com/spf13/cobra"
)

func (a *app) secretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credit secrets in the local keystore",
	}
	cmd.AddCommand(a.secretNewCmd(), a.secretShowCmd(), a.secretListCmd())
	return cmd
}

func (a *app) secretNewCmd() *cobra.Command {
	var (
		score  uint16
		random bool
	)
	cmd := &cobra.Command{
		Use:   "new <label>",
		Short: "Create a secret and print its commitment",
		Long: `Create a credit secret and store it sealed in the keystore. By default the
secret carries the credit score (300-850) and a random salt, which is what
threshold proofs need. --random creates an opaque 32-byte secret instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				secret types.Secret
				err    error
			)
			if random {
				secret, err = wallet.RandomSecret()
			} else {
				secret, err = wallet.NewScoreSecret(score)
			}
			if err != nil {
				return err
			}

			ks, closeKS, err := a.openKeystore()
			if err != nil {
				return err
			}
			defer closeKS()
			if err := ks.PutSecret(cmd.Context(), args[0], secret); err != nil {
				return err
			}

			h := a.cfg.CommitmentHasher()
			c, err := wallet.CommitmentOf(h, secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored secret %q\ncommitment (%s): %s\n", args[0], h.Name(), c.Hex())
			return nil
		},
	}
	cmd.Flags().Uint16Var(&score, "score", 0, "credit score to embed")
	cmd.Flags().BoolVar(&random, "random", false, "create an opaque secret without a score")
	return cmd
}

func (a *app) secretShowCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show <label>",
		Short: "Print the commitment of a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, closeKS, err := a.openKeystore()
			if err != nil {
				return err
			}
			defer closeKS()
			secret, err := ks.Secret(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			h := a.cfg.CommitmentHasher()
			c, err := wallet.CommitmentOf(h, secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "commitment (%s): %s\n", h.Name(), c.Hex())
			if score, _, err := types.ScoreOf(secret); err == nil {
				fmt.Fprintf(out, "score: %d\n", score)
			}
			if reveal {
				fmt.Fprintf(out, "secret: %s\n", secret.Hex())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "also print the secret itself")
	return cmd
}

func (a *app) secretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored secret labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, closeKS, err := a.openKeystore()
			if err != nil {
				return err
			}
			defer closeKS()
			labels, err := ks.Labels(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}

func (a *app) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage borrower keys in the local keystore",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Create a borrower key and print its wallet address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := wallet.NewBorrower()
			if err != nil {
				return err
			}
			ks, closeKS, err := a.openKeystore()
			if err != nil {
				return err
			}
			defer closeKS()
			if err := ks.PutBorrower(cmd.Context(), args[0], b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Address)
			return nil
		},
	}, &cobra.Command{
		Use:   "show <name>",
		Short: "Print the wallet address of a borrower key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, closeKS, err := a.openKeystore()
			if err != nil {
				return err
			}
			defer closeKS()
			b, err := ks.Borrower(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Address)
			return nil
		},
	})
	return cmd
}
