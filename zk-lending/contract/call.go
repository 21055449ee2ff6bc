package contract

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

// arity of each operation on the positional call surface
var arity = map[string]int{
	types.OpRegisterCredit:       2,
	types.OpCreateLoanRequest:    3,
	types.OpProveCreditThreshold: 3,
}

// Invocation is a fully validated operation call.
type Invocation struct {
	Op         string
	Commitment types.Commitment
	Amount     types.Amount
	Secret     types.Secret
	MinScore   types.MinScore
	Wallet     types.WalletAddress
}

// Mutates reports whether applying the invocation writes the ledger.
func (inv *Invocation) Mutates() bool {
	return inv.Op != types.OpProveCreditThreshold
}

// Decode checks an operation name and its positional arguments, the way an
// external caller (CLI, RPC, a decoded transaction) reaches the contract.
// A failure is a *types.ValidationError.
//
// Fixed-width byte arguments accept [32]byte, []byte, the named 32-byte types
// and hex strings. Wallets additionally accept the "sl" address form. Integer
// arguments accept Go integer types, *big.Int, *uint256.Int and decimal or
// 0x-prefixed strings.
func Decode(op string, args ...interface{}) (*Invocation, error) {
	n, ok := arity[op]
	if !ok {
		return nil, types.NewValidationError(op, "", "known operation", fmt.Errorf("%w: unknown operation", types.ErrInvalidType))
	}
	if len(args) != n {
		return nil, types.NewValidationError(op, "", fmt.Sprintf("%d arguments", n),
			fmt.Errorf("%w: got %d", types.ErrArgCount, len(args)))
	}

	var err error
	inv := &Invocation{Op: op}
	switch op {
	case types.OpRegisterCredit:
		if inv.Commitment, err = commitmentArg(op, "commitment", args[0]); err != nil {
			return nil, err
		}
	case types.OpCreateLoanRequest:
		if inv.Commitment, err = commitmentArg(op, "commitment", args[0]); err != nil {
			return nil, err
		}
		if inv.Amount, err = amountArg(op, "amount", args[1]); err != nil {
			return nil, err
		}
	case types.OpProveCreditThreshold:
		var b [32]byte
		if b, err = bytes32Arg(op, "secret", args[0]); err != nil {
			return nil, err
		}
		inv.Secret = types.Secret(b)
		if inv.MinScore, err = minScoreArg(op, "min_score", args[1]); err != nil {
			return nil, err
		}
	}
	if inv.Wallet, err = walletArg(op, "wallet", args[n-1]); err != nil {
		return nil, err
	}
	return inv, nil
}

// Apply runs a decoded invocation. Only prove_credit_threshold can fail here.
func (c *Contract) Apply(inv *Invocation) error {
	switch inv.Op {
	case types.OpRegisterCredit:
		c.RegisterCredit(inv.Commitment, inv.Wallet)
	case types.OpCreateLoanRequest:
		c.CreateLoanRequest(inv.Commitment, inv.Amount, inv.Wallet)
	case types.OpProveCreditThreshold:
		return c.ProveCreditThreshold(inv.Secret, inv.MinScore, inv.Wallet)
	default:
		return types.NewValidationError(inv.Op, "", "known operation", fmt.Errorf("%w: unknown operation", types.ErrInvalidType))
	}
	return nil
}

// Call decodes and applies an operation. Every argument is checked before
// the ledger is touched, so a *types.ValidationError leaves it unchanged.
func (c *Contract) Call(op string, args ...interface{}) error {
	inv, err := Decode(op, args...)
	if err != nil {
		return err
	}
	return c.Apply(inv)
}

func bytes32Arg(op, name string, v interface{}) ([32]byte, error) {
	var (
		ret [32]byte
		err error
	)
	switch x := v.(type) {
	case [32]byte:
		return x, nil
	case types.Commitment:
		return x, nil
	case types.Secret:
		return x, nil
	case types.WalletAddress:
		return x, nil
	case []byte:
		if len(x) != len(ret) {
			err = fmt.Errorf("%w: got %d bytes", types.ErrInvalidLength, len(x))
		} else {
			copy(ret[:], x)
		}
	case string:
		ret, err = types.ParseBytes32(x)
	default:
		err = fmt.Errorf("%w: %T", types.ErrInvalidType, v)
	}
	if err != nil {
		return ret, types.NewValidationError(op, name, types.Bytes32Constraint, err)
	}
	return ret, nil
}

func commitmentArg(op, name string, v interface{}) (types.Commitment, error) {
	b, err := bytes32Arg(op, name, v)
	return types.Commitment(b), err
}

func walletArg(op, name string, v interface{}) (types.WalletAddress, error) {
	if s, ok := v.(string); ok {
		w, err := types.ParseWalletAddress(s)
		if err != nil {
			return w, types.NewValidationError(op, name, types.Bytes32Constraint, fmt.Errorf("%w: %v", types.ErrInvalidType, err))
		}
		return w, nil
	}
	b, err := bytes32Arg(op, name, v)
	return types.WalletAddress(b), err
}

func amountArg(op, name string, v interface{}) (types.Amount, error) {
	if a, ok := v.(types.Amount); ok {
		return a, nil
	}
	u, err := uintArg(v)
	if err == nil {
		var a types.Amount
		if a, err = types.AmountFromUint256(u); err == nil {
			return a, nil
		}
	}
	return 0, types.NewValidationError(op, name, types.AmountConstraint, err)
}

func minScoreArg(op, name string, v interface{}) (types.MinScore, error) {
	if m, ok := v.(types.MinScore); ok {
		return m, nil
	}
	u, err := uintArg(v)
	if err == nil {
		var m types.MinScore
		if m, err = types.MinScoreFromUint256(u); err == nil {
			return m, nil
		}
	}
	return 0, types.NewValidationError(op, name, types.MinScoreConstraint, err)
}

// uintArg widens any accepted integer representation to 256 bits. Range
// checks against the target width happen afterwards.
func uintArg(v interface{}) (*uint256.Int, error) {
	switch x := v.(type) {
	case uint64:
		return uint256.NewInt(x), nil
	case uint32:
		return uint256.NewInt(uint64(x)), nil
	case uint16:
		return uint256.NewInt(uint64(x)), nil
	case uint8:
		return uint256.NewInt(uint64(x)), nil
	case uint:
		return uint256.NewInt(uint64(x)), nil
	case int:
		return signed(int64(x))
	case int64:
		return signed(x)
	case int32:
		return signed(int64(x))
	case types.MinScore:
		return uint256.NewInt(uint64(x)), nil
	case types.Amount:
		return uint256.NewInt(uint64(x)), nil
	case *uint256.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil integer", types.ErrInvalidType)
		}
		return new(uint256.Int).Set(x), nil
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil integer", types.ErrInvalidType)
		}
		if x.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative value %s", types.ErrOutOfRange, x)
		}
		u, overflow := uint256.FromBig(x)
		if overflow {
			return nil, fmt.Errorf("%w: %s exceeds 256 bits", types.ErrOutOfRange, x)
		}
		return u, nil
	case string:
		return types.ParseUint256(x)
	}
	return nil, fmt.Errorf("%w: %T", types.ErrInvalidType, v)
}

func signed(x int64) (*uint256.Int, error) {
	if x < 0 {
		return nil, fmt.Errorf("%w: negative value %d", types.ErrOutOfRange, x)
	}
	return uint256.NewInt(uint64(x)), nil
}
