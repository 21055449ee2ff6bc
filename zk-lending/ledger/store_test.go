package ledger

import (
	"bytes"
	"testing"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/stretchr/testify/require"
)

func TestInitialState(t *testing.T) {
	st := NewStore()
	for _, slot := range []Slot{BorrowerCommitment, LoanRequestCommitment, LoanRequestAmount} {
		cell := st.Read(slot)
		require.Len(t, cell, slot.Width(), slot.String())
		require.Equal(t, make([]byte, slot.Width()), cell, slot.String())
	}
	require.Equal(t, types.LedgerView{}, st.View())
}

func TestReadWriteSlots(t *testing.T) {
	st := NewStore()

	aa := bytes.Repeat([]byte{0xaa}, 32)
	st.Write(BorrowerCommitment, aa)
	require.Equal(t, aa, st.Read(BorrowerCommitment))
	require.Equal(t, byte(0xaa), st.BorrowerCommitment()[0])

	// the returned cell is a copy
	cell := st.Read(BorrowerCommitment)
	cell[0] = 0x00
	require.Equal(t, aa, st.Read(BorrowerCommitment))

	st.Write(LoanRequestAmount, types.Amount(500).Bytes())
	require.Equal(t, types.Amount(500), st.LoanRequestAmount())

	// other slots untouched
	require.Equal(t, make([]byte, 32), st.Read(LoanRequestCommitment))

	require.Nil(t, st.Read(Slot(7)))
	require.Equal(t, "slot(7)", Slot(7).String())

	require.Panics(t, func() { st.Write(LoanRequestAmount, []byte{0x01}) })
	require.Panics(t, func() { st.Write(BorrowerCommitment, aa[:31]) })
	require.Equal(t, types.Amount(500), st.LoanRequestAmount())
}

func TestLoadView(t *testing.T) {
	var v types.LedgerView
	v.BorrowerCommitment[0] = 0x01
	v.LoanRequestCommitment[0] = 0x02
	v.LoanRequestAmount = 42

	st := NewStore()
	st.Load(v)
	require.Equal(t, v, st.View())

	st.Write(LoanRequestCommitment, make([]byte, 32))
	st.Write(LoanRequestAmount, types.Amount(0).Bytes())
	require.Equal(t, v.BorrowerCommitment, st.View().BorrowerCommitment)
	require.Zero(t, st.LoanRequestAmount())
}
