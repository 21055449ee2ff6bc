package node

import (
	"bytes"
	"context"
	"fmt"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/praneet25101-blip/ShieldedLending/utils"
)

// RecordProof shows that a record is part of the journal with a given root.
// ProofSet[0] is the record hash itself.
type RecordProof struct {
	Root      []byte
	ProofSet  [][]byte
	Index     uint64
	NumLeaves uint64
}

// JournalRoot is the MiMC Merkle root over the hashes of all journal
// records, in sequence order. An empty journal has a nil root.
func (n *Node) JournalRoot(ctx context.Context) ([]byte, error) {
	leaves, err := n.leaves(ctx)
	if err != nil || len(leaves) == 0 {
		return nil, err
	}
	tree := merkletree.New(utils.MiMCHasher())
	for _, l := range leaves {
		tree.Push(l)
	}
	return tree.Root(), nil
}

// ProveRecord builds a Merkle inclusion proof for record seq.
func (n *Node) ProveRecord(ctx context.Context, seq uint64) (*RecordProof, error) {
	leaves, err := n.leaves(ctx)
	if err != nil {
		return nil, err
	}
	if seq == 0 || seq > uint64(len(leaves)) {
		return nil, fmt.Errorf("%w: #%d", ErrNotFound, seq)
	}

	var buf bytes.Buffer
	for _, l := range leaves {
		buf.Write(l)
	}
	hasher := utils.MiMCHasher()
	root, proofSet, numLeaves, err := merkletree.BuildReaderProof(&buf, hasher, hasher.Size(), seq-1)
	if err != nil {
		return nil, err
	}
	return &RecordProof{Root: root, ProofSet: proofSet, Index: seq - 1, NumLeaves: numLeaves}, nil
}

// VerifyRecord checks that rec is the leaf proven by p.
func VerifyRecord(rec *Record, p *RecordProof) bool {
	if len(p.ProofSet) == 0 || !bytes.Equal(p.ProofSet[0], rec.Hash()) || p.Index != rec.Seq-1 {
		return false
	}
	return merkletree.VerifyProof(utils.MiMCHasher(), p.Root, p.ProofSet, p.Index, p.NumLeaves)
}

func (n *Node) leaves(ctx context.Context) ([][]byte, error) {
	recs, err := n.History(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	leaves := make([][]byte, len(recs))
	for i, r := range recs {
		leaves[i] = r.Hash()
	}
	return leaves, nil
}
