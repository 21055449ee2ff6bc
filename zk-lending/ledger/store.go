// Package ledger holds the fixed three-slot state of the lending contract.
//
// The Store performs no validation and no locking: it is owned by the
// transition dispatcher, which checks argument shapes and serializes access
// before calling in.
package ledger

import (
	"fmt"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

// Slot indexes one of the three ledger fields.
type Slot uint8

const (
	BorrowerCommitment Slot = iota
	LoanRequestCommitment
	LoanRequestAmount

	NumSlots = 3
)

var slotNames = [NumSlots]string{
	"borrower_commitment",
	"loan_request_commitment",
	"loan_request_amount",
}

var slotWidths = [NumSlots]int{32, 32, types.AmountWidth}

func (s Slot) String() string {
	if int(s) < NumSlots {
		return slotNames[s]
	}
	return fmt.Sprintf("slot(%d)", uint8(s))
}

// Width is the encoded cell width of the slot in bytes.
func (s Slot) Width() int {
	if int(s) < NumSlots {
		return slotWidths[s]
	}
	return 0
}

// Store is the ledger record. The zero value is the initial state: both
// commitments all-zero and a zero amount.
type Store struct {
	borrowerCommitment    types.Commitment
	loanRequestCommitment types.Commitment
	loanRequestAmount     types.Amount
}

func NewStore() *Store {
	return &Store{}
}

// Read returns a copy of the slot's encoded cell. Unknown slots read as nil.
func (st *Store) Read(slot Slot) []byte {
	switch slot {
	case BorrowerCommitment:
		return st.borrowerCommitment.Bytes()
	case LoanRequestCommitment:
		return st.loanRequestCommitment.Bytes()
	case LoanRequestAmount:
		return st.loanRequestAmount.Bytes()
	}
	return nil
}

// Write overwrites the slot with an encoded cell. The caller guarantees the
// cell has the slot's width; Write panics otherwise.
func (st *Store) Write(slot Slot, cell []byte) {
	if len(cell) != slot.Width() {
		panic(fmt.Sprintf("ledger: %d-byte cell for %s", len(cell), slot))
	}
	switch slot {
	case BorrowerCommitment:
		copy(st.borrowerCommitment[:], cell)
	case LoanRequestCommitment:
		copy(st.loanRequestCommitment[:], cell)
	case LoanRequestAmount:
		st.loanRequestAmount, _ = types.AmountFromBytes(cell)
	}
}

func (st *Store) BorrowerCommitment() types.Commitment    { return st.borrowerCommitment }
func (st *Store) LoanRequestCommitment() types.Commitment { return st.loanRequestCommitment }
func (st *Store) LoanRequestAmount() types.Amount         { return st.loanRequestAmount }

// View returns a snapshot of all three slots.
func (st *Store) View() types.LedgerView {
	return types.LedgerView{
		BorrowerCommitment:    st.borrowerCommitment,
		LoanRequestCommitment: st.loanRequestCommitment,
		LoanRequestAmount:     st.loanRequestAmount,
	}
}

// Load replaces the whole record with a snapshot.
func (st *Store) Load(v types.LedgerView) {
	st.borrowerCommitment = v.BorrowerCommitment
	st.loanRequestCommitment = v.LoanRequestCommitment
	st.loanRequestAmount = v.LoanRequestAmount
}
