package wallet

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/crypto"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/store"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("keystore entry not found")
	ErrExists   = errors.New("keystore entry already exists")
)

var (
	prefixKey    = []byte("key/")
	prefixSecret = []byte("secret/")
)

const sealedVersion = 1

type sealedRecord struct {
	Version    uint
	Salt       []byte
	Ciphertext []byte
}

// Keystore keeps borrower keys and score secrets sealed under a passphrase.
// Nothing is written in the clear.
type Keystore struct {
	db         *store.DB
	passphrase []byte
	log        zerolog.Logger
}

func NewKeystore(db *store.DB, passphrase []byte, log zerolog.Logger) *Keystore {
	return &Keystore{
		db:         db,
		passphrase: append([]byte(nil), passphrase...),
		log:        log.With().Str("module", "keystore").Logger(),
	}
}

func (ks *Keystore) seal(ctx context.Context, key, plaintext []byte) error {
	exists, err := ks.db.Has(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}

	salt := make([]byte, crypto.SaltSize)
	if _, err := crand.Read(salt); err != nil {
		return err
	}
	ct, err := crypto.Seal(ks.passphrase, salt, plaintext, key)
	if err != nil {
		return err
	}
	bz, err := rlp.EncodeToBytes(&sealedRecord{Version: sealedVersion, Salt: salt, Ciphertext: ct})
	if err != nil {
		return err
	}
	return ks.db.Put(ctx, key, bz)
}

func (ks *Keystore) open(ctx context.Context, key []byte) ([]byte, error) {
	bz, err := ks.db.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	} else if err != nil {
		return nil, err
	}

	var rec sealedRecord
	if err := rlp.DecodeBytes(bz, &rec); err != nil {
		return nil, fmt.Errorf("corrupt keystore record %s: %w", key, err)
	}
	if rec.Version != sealedVersion {
		return nil, fmt.Errorf("unsupported keystore record version %d", rec.Version)
	}
	// the storage key is the associated data, so records cannot be swapped
	return crypto.Open(ks.passphrase, rec.Salt, rec.Ciphertext, key)
}

func (ks *Keystore) PutBorrower(ctx context.Context, name string, b *Borrower) error {
	if err := ks.seal(ctx, entryKey(prefixKey, name), b.PrivateKey.Bytes()); err != nil {
		return err
	}
	ks.log.Info().Str("name", name).Stringer("address", b.Address).Msg("borrower key stored")
	return nil
}

func (ks *Keystore) Borrower(ctx context.Context, name string) (*Borrower, error) {
	bz, err := ks.open(ctx, entryKey(prefixKey, name))
	if err != nil {
		return nil, err
	}
	prvk, err := crypto.KeyFromBytes(bz)
	if err != nil {
		return nil, err
	}
	return borrowerOf(prvk), nil
}

func (ks *Keystore) PutSecret(ctx context.Context, label string, secret types.Secret) error {
	if err := ks.seal(ctx, entryKey(prefixSecret, label), secret[:]); err != nil {
		return err
	}
	ks.log.Info().Str("label", label).Msg("secret stored")
	return nil
}

func (ks *Keystore) Secret(ctx context.Context, label string) (types.Secret, error) {
	bz, err := ks.open(ctx, entryKey(prefixSecret, label))
	if err != nil {
		return types.Secret{}, err
	}
	return types.NewSecret(bz)
}

// Labels lists the stored secrets in label order.
func (ks *Keystore) Labels(ctx context.Context) ([]string, error) {
	var labels []string
	err := ks.db.Iterate(ctx, prefixSecret, nil, func(key, _ []byte) error {
		labels = append(labels, string(key[len(prefixSecret):]))
		return nil
	})
	return labels, err
}

func entryKey(prefix []byte, name string) []byte {
	key := make([]byte, 0, len(prefix)+len(name))
	key = append(key, prefix...)
	return append(key, name...)
}
