package node

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/praneet25101-blip/ShieldedLending/utils"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

// Record is one applied mutating transition. View is the ledger right
// after the transition, so the newest record is also the head snapshot.
type Record struct {
	Seq    uint64
	Op     string
	Wallet types.WalletAddress
	View   types.LedgerView
	Time   uint64 // unix seconds
}

func (r *Record) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

func DecodeRecord(bz []byte) (*Record, error) {
	r := new(Record)
	if err := rlp.DecodeBytes(bz, r); err != nil {
		return nil, fmt.Errorf("decode journal record: %w", err)
	}
	return r, nil
}

// Hash is the MiMC digest of the encoded record, packed injectively into
// field elements. It is the leaf of the journal Merkle tree.
func (r *Record) Hash() []byte {
	bz, err := r.Bytes()
	if err != nil {
		panic(err)
	}
	return utils.MiMCHashBytes(bz)
}

func (r *Record) Timestamp() time.Time {
	return time.Unix(int64(r.Time), 0).UTC()
}

func (r *Record) String() string {
	return fmt.Sprintf("#%d %s wallet=%s %s", r.Seq, r.Op, r.Wallet, r.View)
}

var (
	keyHasher = []byte("meta/hasher")
	keyHead   = []byte("meta/head")

	prefixRecord = []byte("rec/")
)

func recordKey(seq uint64) []byte {
	key := make([]byte, len(prefixRecord)+8)
	copy(key, prefixRecord)
	binary.BigEndian.PutUint64(key[len(prefixRecord):], seq)
	return key
}

func encodeSeq(seq uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, seq)
	return bz
}

func decodeSeq(bz []byte) (uint64, error) {
	if len(bz) != 8 {
		return 0, fmt.Errorf("corrupt journal head: %d bytes", len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}
