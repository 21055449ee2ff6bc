// Package contract is the transition dispatcher of the lending ledger.
//
// A Contract owns one ledger.Store and exposes the three operations of the
// lending contract:
//
//   - register_credit stores a borrower commitment, replacing any previous one
//   - create_loan_request stores a loan commitment and amount together
//   - prove_credit_threshold checks that Hash(secret) equals the stored
//     borrower commitment, without touching the ledger
//
// All operations are serialized by a single RWMutex: a reader never observes
// a half-applied transition. The numeric threshold itself is never compared
// here; that belongs to the external proving layer (see ThresholdVerifier).
package contract

import (
	"crypto/subtle"
	"sync"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/ledger"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/rs/zerolog"
)

type Contract struct {
	mu     sync.RWMutex
	store  *ledger.Store
	hasher Hasher
	log    zerolog.Logger
}

type Option func(*Contract)

func WithHasher(h Hasher) Option {
	return func(c *Contract) {
		if h != nil {
			c.hasher = h
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Contract) {
		c.log = l
	}
}

// New creates a contract over a zeroed ledger.
func New(opts ...Option) *Contract {
	c := &Contract{
		store:  ledger.NewStore(),
		hasher: SHA256Hasher{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("module", "contract").Str("hasher", c.hasher.Name()).Logger()
	return c
}

func (c *Contract) Hasher() Hasher {
	return c.hasher
}

// RegisterCredit overwrites the borrower commitment. Re-registration
// silently replaces the previous commitment.
func (c *Contract) RegisterCredit(commitment types.Commitment, wallet types.WalletAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Write(ledger.BorrowerCommitment, commitment[:])
	c.log.Debug().Str("op", types.OpRegisterCredit).Stringer("wallet", wallet).Msg("applied")
}

// CreateLoanRequest stores the loan commitment and amount in one step. It
// does not require a prior RegisterCredit.
func (c *Contract) CreateLoanRequest(commitment types.Commitment, amount types.Amount, wallet types.WalletAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Write(ledger.LoanRequestCommitment, commitment[:])
	c.store.Write(ledger.LoanRequestAmount, amount.Bytes())
	c.log.Debug().Str("op", types.OpCreateLoanRequest).Stringer("wallet", wallet).
		Uint64("amount", uint64(amount)).Msg("applied")
}

// ProveCreditThreshold succeeds iff the secret hashes to the registered
// borrower commitment. minScore is accepted for the external proving layer
// and is not inspected. A secret the hasher cannot digest is a
// *types.ValidationError.
func (c *Contract) ProveCreditThreshold(secret types.Secret, minScore types.MinScore, wallet types.WalletAddress) error {
	candidate, err := c.hasher.Digest(secret)
	if err != nil {
		return types.NewValidationError(types.OpProveCreditThreshold, "secret", types.FieldConstraint, err)
	}

	c.mu.RLock()
	registered := c.store.BorrowerCommitment()
	c.mu.RUnlock()

	if subtle.ConstantTimeCompare(candidate[:], registered[:]) != 1 {
		c.log.Warn().Str("op", types.OpProveCreditThreshold).Stringer("wallet", wallet).
			Uint16("min_score", uint16(minScore)).Msg("commitment mismatch")
		return &types.VerificationError{Op: types.OpProveCreditThreshold, Reason: "commitment mismatch"}
	}
	c.log.Debug().Str("op", types.OpProveCreditThreshold).Stringer("wallet", wallet).
		Uint16("min_score", uint16(minScore)).Msg("verified")
	return nil
}

// Ledger returns a consistent snapshot of the three slots.
func (c *Contract) Ledger() types.LedgerView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.View()
}

func (c *Contract) BorrowerCommitment() types.Commitment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.BorrowerCommitment()
}

func (c *Contract) LoanRequestCommitment() types.Commitment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.LoanRequestCommitment()
}

func (c *Contract) LoanRequestAmount() types.Amount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.LoanRequestAmount()
}

// ReadSlot returns the encoded cell of one slot.
func (c *Contract) ReadSlot(slot ledger.Slot) []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Read(slot)
}

// Restore replaces the ledger with a previously published snapshot. It is
// used when replaying a journal and when rolling back a transition whose
// journal append failed.
func (c *Contract) Restore(v types.LedgerView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Load(v)
}
