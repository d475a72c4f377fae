//go:build integration

package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pekatete/electrumsv/internal/wallet"
	"github.com/pekatete/electrumsv/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) (*Store, context.Context) {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))
	return NewStore(testDB.Pool), ctx
}

func txHash(seed string) string {
	return strings.Repeat(seed, 64/len(seed))
}

func TestStore_InsertAndHistory(t *testing.T) {
	store, ctx := setupTest(t)

	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{
		TxHash:    txHash("a1"),
		Height:    100,
		Position:  3,
		Timestamp: 1000,
		Received:  500,
	}))
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{
		TxHash:    txHash("b2"),
		Height:    101,
		Timestamp: 1001,
		Sent:      200,
		Fee:       1,
	}))
	// Irrelevant entries never show up in history.
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{
		TxHash: txHash("c3"),
		Height: 102,
	}))

	records, err := store.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, txHash("a1"), records[0].TxHash)
	assert.Equal(t, int64(500), records[0].Value)
	assert.Equal(t, int64(3), records[0].Position)
	assert.Equal(t, int64(-200), records[1].Value)
}

func TestStore_DuplicateInsert(t *testing.T) {
	store, ctx := setupTest(t)

	entry := wallet.TxEntry{TxHash: txHash("d4"), Received: 10}
	require.NoError(t, store.InsertTransaction(ctx, entry))

	err := store.InsertTransaction(ctx, entry)
	assert.ErrorIs(t, err, wallet.ErrDuplicateTx)
}

func TestStore_Placement(t *testing.T) {
	store, ctx := setupTest(t)

	hash := txHash("e5")
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{TxHash: hash, Received: 10}))

	require.NoError(t, store.SetPlacement(ctx, hash, wallet.Placement{
		Height:    120,
		Position:  7,
		Timestamp: 1200,
	}))

	th, err := store.GetTxHeight(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(120), th.Height)
	assert.Equal(t, int64(7), th.Position)
	assert.Equal(t, int64(1200), th.Timestamp)

	err = store.SetPlacement(ctx, txHash("f6"), wallet.Placement{Height: 1})
	assert.ErrorIs(t, err, wallet.ErrTxNotFound)
}

func TestStore_Labels(t *testing.T) {
	store, ctx := setupTest(t)

	hash := txHash("a7")
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{TxHash: hash, Received: 10}))

	require.NoError(t, store.SetLabel(ctx, hash, "coffee"))
	label, err := store.GetLabel(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "coffee", label)

	_, err = store.GetLabel(ctx, txHash("b8"))
	assert.ErrorIs(t, err, wallet.ErrTxNotFound)
}

func TestStore_DeleteTolerant(t *testing.T) {
	store, ctx := setupTest(t)

	hash := txHash("c9")
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{TxHash: hash, Received: 10}))
	require.NoError(t, store.DeleteTransaction(ctx, hash))

	_, err := store.GetTransaction(ctx, hash)
	assert.ErrorIs(t, err, wallet.ErrTxNotFound)

	// Deleting again is a no-op, reorg handlers rely on that.
	require.NoError(t, store.DeleteTransaction(ctx, hash))
}

func TestStore_ChainTip(t *testing.T) {
	store, ctx := setupTest(t)

	height, err := store.LocalChainHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), height, "no tip recorded yet")

	require.NoError(t, store.SetChainTip(ctx, 830000))
	require.NoError(t, store.SetChainTip(ctx, 830001))

	height, err = store.LocalChainHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(830001), height)
}

func TestStore_Delta(t *testing.T) {
	store, ctx := setupTest(t)

	hash := txHash("d1")
	require.NoError(t, store.InsertTransaction(ctx, wallet.TxEntry{
		TxHash:   hash,
		Received: 300,
		Sent:     500,
		Fee:      2,
	}))

	delta, err := store.GetTransactionDelta(ctx, hash)
	require.NoError(t, err)
	assert.True(t, delta.Relevant)
	assert.True(t, delta.Mine)
	assert.Equal(t, int64(-200), delta.Value)
	assert.Equal(t, int64(2), delta.Fee)

	_, err = store.GetTransactionDelta(ctx, txHash("e2"))
	assert.ErrorIs(t, err, wallet.ErrTxNotFound)
}
