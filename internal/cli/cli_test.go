package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/stretchr/testify/require"
)

type env struct {
	t     *testing.T
	flags []string
}

func newEnv(t *testing.T, extra ...string) *env {
	dir := t.TempDir()
	flags := []string{
		"--data-dir", dir + "/journal",
		"--keystore-dir", dir + "/keystore",
		"--prover-dir", dir + "/prover",
		"--passphrase", "test passphrase",
		"--log-level", "error",
	}
	return &env{t: t, flags: append(flags, extra...)}
}

func (e *env) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, e.flags...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) mustRun(args ...string) string {
	out, err := e.run(args...)
	require.NoError(e.t, err, strings.Join(args, " "))
	return out
}

func TestLendingFlow(t *testing.T) {
	e := newEnv(t)

	addr := strings.TrimSpace(e.mustRun("key", "new", "alice"))
	require.True(t, strings.HasPrefix(addr, "sl"))
	require.Equal(t, addr, strings.TrimSpace(e.mustRun("key", "show", "alice")))

	out := e.mustRun("secret", "new", "credit", "--score", "720")
	require.Contains(t, out, "commitment (sha256): 0x")

	out = e.mustRun("register-credit", "--secret", "credit", "--key", "alice")
	require.Contains(t, out, "applied register_credit as #1")

	bb := strings.Repeat("bb", 32)
	out = e.mustRun("loan-request", "--commitment", bb, "--amount", "500", "--wallet", addr)
	require.Contains(t, out, "applied create_loan_request as #2")

	out = e.mustRun("ledger")
	require.Contains(t, out, "loan_request_commitment: 0x"+bb)
	require.Contains(t, out, "loan_request_amount:     500")

	out = e.mustRun("prove", "--secret", "credit", "--min-score", "700", "--key", "alice")
	require.Contains(t, out, "commitment verified for "+addr)

	_, err := e.run("prove", "--secret-hex", strings.Repeat("11", 32), "--min-score", "700", "--wallet", addr)
	require.ErrorIs(t, err, types.ErrVerification)

	out = e.mustRun("approve", "--secret", "credit", "--min-score", "700", "--recipient", addr)
	require.Contains(t, out, "amount:           500")

	out = e.mustRun("history", "--root")
	require.Contains(t, out, "#1 register_credit")
	require.Contains(t, out, "#2 create_loan_request")
	require.Contains(t, out, "journal root: 0x")

	out = e.mustRun("secret", "show", "credit")
	require.Contains(t, out, "score: 720")
	require.NotContains(t, out, "secret:")

	require.Equal(t, "credit\n", e.mustRun("secret", "list"))
}

func TestValidationErrors(t *testing.T) {
	e := newEnv(t)
	w := strings.Repeat("0a", 32)

	_, err := e.run("loan-request", "--commitment", strings.Repeat("bb", 32), "--amount", "18446744073709551616", "--wallet", w)
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = e.run("register-credit", "--commitment", strings.Repeat("aa", 31), "--wallet", w)
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = e.run("prove", "--secret-hex", strings.Repeat("11", 32), "--min-score", "65536", "--wallet", w)
	require.ErrorIs(t, err, types.ErrValidation)

	out := e.mustRun("ledger")
	require.Contains(t, out, "head:                    #0")

	_, err = e.run("secret", "new", "low", "--score", "120")
	require.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestApproveWithZKProof(t *testing.T) {
	e := newEnv(t, "--hasher", "mimc")

	out := e.mustRun("secret", "new", "credit", "--score", "805")
	require.Contains(t, out, "commitment (mimc)")
	w := strings.Repeat("0a", 32)
	e.mustRun("register-credit", "--secret", "credit", "--wallet", w)
	e.mustRun("loan-request", "--commitment", strings.Repeat("cc", 32), "--amount", "0x2710", "--wallet", w)

	out = e.mustRun("approve", "--secret", "credit", "--min-score", "800", "--recipient", w, "--zk")
	require.Contains(t, out, "amount:           10000")

	_, err := e.run("prove", "--secret", "credit", "--min-score", "810", "--wallet", w, "--zk")
	require.Error(t, err)
}

func TestZKNeedsMiMC(t *testing.T) {
	e := newEnv(t)
	e.mustRun("secret", "new", "credit", "--score", "700")
	w := strings.Repeat("0a", 32)
	e.mustRun("register-credit", "--secret", "credit", "--wallet", w)
	_, err := e.run("prove", "--secret", "credit", "--min-score", "600", "--wallet", w, "--zk")
	require.Error(t, err)
	require.Contains(t, err.Error(), "mimc")
}

func TestSetupThenApprove(t *testing.T) {
	e := newEnv(t, "--hasher", "mimc")
	sol := filepath.Join(t.TempDir(), "Verifier.sol")

	out := e.mustRun("setup", "--solidity", sol)
	require.Contains(t, out, "groth16 setup saved to")
	bz, err := os.ReadFile(sol)
	require.NoError(t, err)
	require.Contains(t, string(bz), "pragma solidity")

	e.mustRun("secret", "new", "credit", "--score", "760")
	w := strings.Repeat("0a", 32)
	e.mustRun("register-credit", "--secret", "credit", "--wallet", w)
	e.mustRun("loan-request", "--commitment", strings.Repeat("dd", 32), "--amount", "42", "--wallet", w)

	out = e.mustRun("approve", "--secret", "credit", "--min-score", "750", "--recipient", w, "--zk")
	require.Contains(t, out, "amount:           42")
}

func TestMiMCRejectsNonCanonicalSecret(t *testing.T) {
	e := newEnv(t, "--hasher", "mimc")
	w := strings.Repeat("0a", 32)
	above := strings.Repeat("ff", 32)

	_, err := e.run("register-credit", "--secret-hex", above, "--wallet", w)
	require.ErrorIs(t, err, types.ErrValidation)

	e.mustRun("register-credit", "--secret-hex", strings.Repeat("00", 31)+"07", "--wallet", w)
	// 0x07 + p
	alias := "30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000008"
	_, err = e.run("prove", "--secret-hex", alias, "--min-score", "700", "--wallet", w)
	require.ErrorIs(t, err, types.ErrValidation)
	e.mustRun("prove", "--secret-hex", strings.Repeat("00", 31)+"07", "--min-score", "700", "--wallet", w)
}

func TestConfigFlags(t *testing.T) {
	e := newEnv(t, "--hasher", "mimc", "--prover", "plonk", "--log-format", "json")
	out := e.mustRun("setup")
	require.Contains(t, out, "plonk setup saved to")

	_, err := newEnv(t, "--prover", "stark").run("ledger")
	require.Error(t, err)
	_, err = newEnv(t, "--log-format", "xml").run("ledger")
	require.Error(t, err)
}
