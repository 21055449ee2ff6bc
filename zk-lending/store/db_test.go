package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *DB {
	db, err := Open("mem", Options{InMemory: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetPutDelete(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)

	_, err := db.Get(ctx, []byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, db.Put(ctx, []byte("k"), []byte("v")))
	v, err := db.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	ok, err := db.Has(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	ok, err = db.Has(ctx, []byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBatchAndIterate(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)

	var ops []BatchOp
	for i := 0; i < 5; i++ {
		ops = append(ops, BatchOp{Key: []byte(fmt.Sprintf("a/%d", i)), Value: []byte{byte(i)}})
	}
	ops = append(ops, BatchOp{Key: []byte("b/0"), Value: []byte{0xff}})
	require.NoError(t, db.Batch(ctx, ops))

	var keys []string
	require.NoError(t, db.Iterate(ctx, []byte("a/"), nil, func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	require.Equal(t, []string{"a/0", "a/1", "a/2", "a/3", "a/4"}, keys)

	keys = keys[:0]
	require.NoError(t, db.Iterate(ctx, []byte("a/"), []byte("a/3"), func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	require.Equal(t, []string{"a/3", "a/4"}, keys)

	count := 0
	require.NoError(t, db.Iterate(ctx, []byte("a/"), nil, func(k, v []byte) error {
		count++
		if count == 2 {
			return ErrStop
		}
		return nil
	}))
	require.Equal(t, 2, count)

	// nil value deletes
	require.NoError(t, db.Batch(ctx, []BatchOp{{Key: []byte("b/0")}}))
	_, err := db.Get(ctx, []byte("b/0"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestClosed(t *testing.T) {
	db, err := Open("mem", Options{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Get(context.Background(), []byte("k"))
	require.ErrorIs(t, err, ErrDBClosed)
	require.ErrorIs(t, db.Close(), ErrDBClosed)
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte("b"), prefixEnd([]byte("a")))
	require.Equal(t, []byte{0x01}, prefixEnd([]byte{0x00, 0xff}))
	require.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}
