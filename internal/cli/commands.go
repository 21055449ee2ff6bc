package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/node"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/prover"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/spf13/cobra"
)

// walletFlags selects the calling wallet either by address or by the name
// of a borrower key in the keystore.
type walletFlags struct {
	address string
	key     string
}

func (f *walletFlags) register(cmd *cobra.Command, name string) {
	cmd.Flags().StringVar(&f.address, name, "", "wallet address (sl... or 32-byte hex)")
	cmd.Flags().StringVar(&f.key, "key", "", "name of a borrower key in the keystore, instead of --"+name)
}

func (a *app) resolveWallet(ctx context.Context, f *walletFlags) (string, error) {
	if f.key == "" {
		return f.address, nil
	}
	ks, closeKS, err := a.openKeystore()
	if err != nil {
		return "", err
	}
	defer closeKS()
	b, err := ks.Borrower(ctx, f.key)
	if err != nil {
		return "", err
	}
	return types.EncodeAddress(b.Address), nil
}

// secretFlags selects a secret from the keystore or as raw hex.
type secretFlags struct {
	label string
	hex   string
}

func (f *secretFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.label, "secret", "", "label of a secret in the keystore")
	cmd.Flags().StringVar(&f.hex, "secret-hex", "", "secret as 32-byte hex")
}

func (a *app) resolveSecret(ctx context.Context, f *secretFlags) (string, error) {
	switch {
	case f.label != "" && f.hex != "":
		return "", fmt.Errorf("use only one of --secret and --secret-hex")
	case f.hex != "":
		return f.hex, nil
	case f.label == "":
		return "", fmt.Errorf("one of --secret or --secret-hex is required")
	}
	ks, closeKS, err := a.openKeystore()
	if err != nil {
		return "", err
	}
	defer closeKS()
	s, err := ks.Secret(ctx, f.label)
	if err != nil {
		return "", err
	}
	return s.Hex(), nil
}

func (a *app) registerCreditCmd() *cobra.Command {
	var (
		commitment string
		secret     secretFlags
		wf         walletFlags
	)
	cmd := &cobra.Command{
		Use:   "register-credit",
		Short: "Register the borrower credit commitment",
		Long: `Register the borrower credit commitment, replacing any previous one.
Pass the commitment directly, or a keystore secret to commit to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := a.resolveWallet(ctx, &wf)
			if err != nil {
				return err
			}
			n, err := a.openNode(ctx)
			if err != nil {
				return err
			}
			defer n.Close()

			if secret.label != "" || secret.hex != "" {
				s, err := a.resolveSecret(ctx, &secret)
				if err != nil {
					return err
				}
				v, err := types.ParseBytes32(s)
				if err != nil {
					return err
				}
				c, err := n.Hasher().Digest(types.Secret(v))
				if err != nil {
					return types.NewValidationError(types.OpRegisterCredit, "secret", types.FieldConstraint, err)
				}
				commitment = c.Hex()
			}
			rec, err := n.Call(ctx, types.OpRegisterCredit, commitment, w)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&commitment, "commitment", "", "commitment as 32-byte hex")
	secret.register(cmd)
	wf.register(cmd, "wallet")
	return cmd
}

func (a *app) loanRequestCmd() *cobra.Command {
	var (
		commitment string
		amount     string
		wf         walletFlags
	)
	cmd := &cobra.Command{
		Use:   "loan-request",
		Short: "Publish a loan request commitment and amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := a.resolveWallet(ctx, &wf)
			if err != nil {
				return err
			}
			n, err := a.openNode(ctx)
			if err != nil {
				return err
			}
			defer n.Close()

			rec, err := n.Call(ctx, types.OpCreateLoanRequest, commitment, amount, w)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&commitment, "commitment", "", "loan commitment as 32-byte hex")
	cmd.Flags().StringVar(&amount, "amount", "", "loan amount, decimal or 0x hex")
	wf.register(cmd, "wallet")
	return cmd
}

// thresholdFlags are shared by prove and approve.
type thresholdFlags struct {
	secret   secretFlags
	minScore string
	wallet   walletFlags
	zk       bool
}

func (f *thresholdFlags) register(cmd *cobra.Command, walletFlag string) {
	f.secret.register(cmd)
	cmd.Flags().StringVar(&f.minScore, "min-score", "", "public minimum credit score")
	cmd.Flags().BoolVar(&f.zk, "zk", false, "also create and check a zero-knowledge threshold proof (needs the mimc hasher)")
	f.wallet.register(cmd, walletFlag)
}

// decode validates the threshold arguments through the contract call surface.
func (a *app) decode(ctx context.Context, f *thresholdFlags) (*contract.Invocation, error) {
	s, err := a.resolveSecret(ctx, &f.secret)
	if err != nil {
		return nil, err
	}
	w, err := a.resolveWallet(ctx, &f.wallet)
	if err != nil {
		return nil, err
	}
	return contract.Decode(types.OpProveCreditThreshold, s, f.minScore, w)
}

// zkProof proves inv with the setup saved by "lending setup", or with a
// throwaway setup when there is none. A throwaway setup only verifies its
// own proofs, which is enough for a local check.
func (a *app) zkProof(n *node.Node, inv *contract.Invocation) (*prover.System, []byte, error) {
	if n.Hasher().Name() != contract.HasherMiMC {
		return nil, nil, fmt.Errorf("zero-knowledge proofs need the %s hasher, ledger uses %s", contract.HasherMiMC, n.Hasher().Name())
	}
	sys, err := prover.Load(a.cfg.ProverDir, a.log)
	if errors.Is(err, prover.ErrNoSetup) {
		a.log.Warn().Str("dir", a.cfg.ProverDir).Msg("no saved setup, using a throwaway one")
		sys, err = prover.Setup(prover.Backend(a.cfg.Prover), a.log)
	}
	if err != nil {
		return nil, nil, err
	}
	proof, err := sys.Prove(inv.Secret, inv.MinScore)
	if err != nil {
		return nil, nil, err
	}
	return sys, proof, nil
}

func (a *app) setupCmd() *cobra.Command {
	var solidity string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create and save the threshold proof setup",
		Long: `Compile the credit threshold circuit, run the key setup of the configured
backend and save it to prover_dir. The setup is single-party and meant for
development. --solidity also writes an on-chain verifier contract.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := prover.Setup(prover.Backend(a.cfg.Prover), a.log)
			if err != nil {
				return err
			}
			if err := sys.Save(a.cfg.ProverDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s setup saved to %s\n", sys.Backend(), a.cfg.ProverDir)

			if solidity != "" {
				var buf bytes.Buffer
				if err := sys.ExportSolidity(&buf); err != nil {
					return err
				}
				if err := os.WriteFile(solidity, buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "solidity verifier written to %s\n", solidity)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&solidity, "solidity", "", "path of a Solidity verifier to generate")
	return cmd
}

func (a *app) proveCmd() *cobra.Command {
	var f thresholdFlags
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove knowledge of the secret behind the borrower commitment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := a.decode(ctx, &f)
			if err != nil {
				return err
			}
			n, err := a.openNode(ctx)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.ProveCreditThreshold(inv.Secret, inv.MinScore, inv.Wallet); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "commitment verified for %s\n", inv.Wallet)

			if f.zk {
				sys, proof, err := a.zkProof(n, inv)
				if err != nil {
					return err
				}
				if err := sys.VerifyThreshold(n.Ledger().BorrowerCommitment, inv.MinScore, proof); err != nil {
					return err
				}
				fmt.Fprintf(out, "threshold proof (%s): score >= %d\n%s\n", sys.Backend(), inv.MinScore, hexutil.Encode(proof))
			}
			return nil
		},
	}
	f.register(cmd, "wallet")
	return cmd
}

func (a *app) approveCmd() *cobra.Command {
	var f thresholdFlags
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve the open loan request and print the disbursement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := a.decode(ctx, &f)
			if err != nil {
				return err
			}
			n, err := a.openNode(ctx)
			if err != nil {
				return err
			}
			defer n.Close()

			req := node.ApprovalRequest{Secret: inv.Secret, MinScore: inv.MinScore, Recipient: inv.Wallet}
			if f.zk {
				sys, proof, err := a.zkProof(n, inv)
				if err != nil {
					return err
				}
				req.Proof, req.Verifier = proof, sys
			}
			d, err := n.ApproveLoan(ctx, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "approved at #%d\n", d.Seq)
			fmt.Fprintf(out, "recipient:        %s\n", d.Recipient)
			fmt.Fprintf(out, "amount:           %d\n", d.Amount)
			fmt.Fprintf(out, "loan commitment:  %s\n", d.LoanCommitment.Hex())
			return nil
		},
	}
	f.register(cmd, "recipient")
	return cmd
}

func (a *app) ledgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Print the ledger slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.openNode(cmd.Context())
			if err != nil {
				return err
			}
			defer n.Close()
			printView(cmd.OutOrStdout(), n.Head(), n.Ledger())
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var (
		from  uint64
		limit int
		root  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journalled transitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := a.openNode(ctx)
			if err != nil {
				return err
			}
			defer n.Close()

			recs, err := n.History(ctx, from, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range recs {
				fmt.Fprintf(out, "%s %s\n", r.Timestamp().Format("2006-01-02T15:04:05Z"), r)
			}
			if root {
				bz, err := n.JournalRoot(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "journal root: %s\n", hexutil.Encode(bz))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 1, "first sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records (0 for all)")
	cmd.Flags().BoolVar(&root, "root", false, "also print the journal Merkle root")
	return cmd
}

func printRecord(w io.Writer, rec *node.Record) {
	fmt.Fprintf(w, "applied %s as #%d\n", rec.Op, rec.Seq)
	printView(w, rec.Seq, rec.View)
}

func printView(w io.Writer, head uint64, v types.LedgerView) {
	fmt.Fprintf(w, "head:                    #%d\n", head)
	fmt.Fprintf(w, "borrower_commitment:     %s\n", v.BorrowerCommitment.Hex())
	fmt.Fprintf(w, "loan_request_commitment: %s\n", v.LoanRequestCommitment.Hex())
	fmt.Fprintf(w, "loan_request_amount:     %d\n", v.LoanRequestAmount)
}
