// Package node runs a lending contract on top of a durable journal.
//
// Every successful mutating call is appended to a pebble journal together
// with the resulting ledger view. On open the newest view is restored, so a
// node picks up exactly where it stopped. A transition whose journal append
// fails is rolled back: state and journal never disagree.
//
// Threshold proofs are read-only and are not journalled; secrets never reach
// the disk.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/store"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/rs/zerolog"
)

var (
	ErrHasherMismatch = errors.New("journal was written with another commitment hasher")
	ErrNotFound       = errors.New("journal record not found")
	ErrClosed         = errors.New("node is closed")
)

type Config struct {
	Dir      string
	InMemory bool
	Hasher   contract.Hasher
	Logger   zerolog.Logger
}

type Node struct {
	// mu orders transitions with their journal appends. Reads through the
	// node take it shared, so a rolled back transition is never observed.
	mu   sync.RWMutex
	ctr  *contract.Contract
	db   *store.DB
	head uint64

	now func() time.Time
	log zerolog.Logger
}

func Open(ctx context.Context, cfg Config) (*Node, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = contract.SHA256Hasher{}
	}
	log := cfg.Logger.With().Str("module", "node").Logger()

	db, err := store.Open(cfg.Dir, store.Options{InMemory: cfg.InMemory, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	n := &Node{
		ctr: contract.New(contract.WithHasher(cfg.Hasher), contract.WithLogger(cfg.Logger)),
		db:  db,
		now: time.Now,
		log: log,
	}
	if err := n.load(ctx, cfg.Hasher); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("dir", cfg.Dir).Uint64("head", n.head).Str("hasher", cfg.Hasher.Name()).Msg("node opened")
	return n, nil
}

func (n *Node) load(ctx context.Context, h contract.Hasher) error {
	name, err := n.db.Get(ctx, keyHasher)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		// fresh journal
		return n.db.Batch(ctx, []store.BatchOp{
			{Key: keyHasher, Value: []byte(h.Name())},
			{Key: keyHead, Value: encodeSeq(0)},
		})
	case err != nil:
		return err
	case string(name) != h.Name():
		return fmt.Errorf("%w: journal %q, configured %q", ErrHasherMismatch, name, h.Name())
	}

	bz, err := n.db.Get(ctx, keyHead)
	if err != nil {
		return fmt.Errorf("read journal head: %w", err)
	}
	if n.head, err = decodeSeq(bz); err != nil {
		return err
	}
	if n.head == 0 {
		return nil
	}
	rec, err := n.record(ctx, n.head)
	if err != nil {
		return err
	}
	n.ctr.Restore(rec.View)
	return nil
}

func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.db == nil {
		return ErrClosed
	}
	err := n.db.Close()
	n.db = nil
	return err
}

// Hasher is the commitment hasher the journal is bound to.
func (n *Node) Hasher() contract.Hasher {
	return n.ctr.Hasher()
}

func (n *Node) Head() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.head
}

func (n *Node) Ledger() types.LedgerView {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ctr.Ledger()
}

func (n *Node) RegisterCredit(ctx context.Context, commitment types.Commitment, wallet types.WalletAddress) (*Record, error) {
	return n.apply(ctx, &contract.Invocation{Op: types.OpRegisterCredit, Commitment: commitment, Wallet: wallet})
}

func (n *Node) CreateLoanRequest(ctx context.Context, commitment types.Commitment, amount types.Amount, wallet types.WalletAddress) (*Record, error) {
	return n.apply(ctx, &contract.Invocation{Op: types.OpCreateLoanRequest, Commitment: commitment, Amount: amount, Wallet: wallet})
}

func (n *Node) ProveCreditThreshold(secret types.Secret, minScore types.MinScore, wallet types.WalletAddress) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ctr.ProveCreditThreshold(secret, minScore, wallet)
}

// Call is the positional call surface of contract.Decode. Mutating calls
// return their journal record, proofs return a nil record.
func (n *Node) Call(ctx context.Context, op string, args ...interface{}) (*Record, error) {
	inv, err := contract.Decode(op, args...)
	if err != nil {
		return nil, err
	}
	if !inv.Mutates() {
		return nil, n.ProveCreditThreshold(inv.Secret, inv.MinScore, inv.Wallet)
	}
	return n.apply(ctx, inv)
}

func (n *Node) apply(ctx context.Context, inv *contract.Invocation) (*Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.db == nil {
		return nil, ErrClosed
	}

	prev := n.ctr.Ledger()
	if err := n.ctr.Apply(inv); err != nil {
		return nil, err
	}
	rec := &Record{
		Seq:    n.head + 1,
		Op:     inv.Op,
		Wallet: inv.Wallet,
		View:   n.ctr.Ledger(),
		Time:   uint64(n.now().Unix()),
	}
	if err := n.append(ctx, rec); err != nil {
		n.ctr.Restore(prev)
		n.log.Error().Err(err).Str("op", inv.Op).Uint64("seq", rec.Seq).Msg("journal append failed, transition rolled back")
		return nil, fmt.Errorf("journal %s: %w", inv.Op, err)
	}
	n.head = rec.Seq
	n.log.Debug().Uint64("seq", rec.Seq).Str("op", rec.Op).Msg("journalled")
	return rec, nil
}

func (n *Node) append(ctx context.Context, rec *Record) error {
	bz, err := rec.Bytes()
	if err != nil {
		return err
	}
	return n.db.Batch(ctx, []store.BatchOp{
		{Key: recordKey(rec.Seq), Value: bz},
		{Key: keyHead, Value: encodeSeq(rec.Seq)},
	})
}

func (n *Node) record(ctx context.Context, seq uint64) (*Record, error) {
	bz, err := n.db.Get(ctx, recordKey(seq))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: #%d", ErrNotFound, seq)
	} else if err != nil {
		return nil, err
	}
	return DecodeRecord(bz)
}

// Record returns the journal record with the given sequence number.
func (n *Node) Record(ctx context.Context, seq uint64) (*Record, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.db == nil {
		return nil, ErrClosed
	}
	return n.record(ctx, seq)
}

// History returns up to limit records starting at sequence from, oldest
// first. A limit <= 0 returns everything from there on.
func (n *Node) History(ctx context.Context, from uint64, limit int) ([]*Record, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.db == nil {
		return nil, ErrClosed
	}

	var recs []*Record
	err := n.db.Iterate(ctx, prefixRecord, recordKey(from), func(_, value []byte) error {
		rec, err := DecodeRecord(value)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		if limit > 0 && len(recs) >= limit {
			return store.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
