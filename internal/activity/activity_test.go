package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrendix/protecciones/internal/database/dbtest"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

func seedPolicy(t *testing.T, store *Store) uint {
	p := &models.Policy{
		PolicyNumber: "POL-20251018-001",
		Status:       policy.StatusDraft,
		RentAmount:   decimal.NewFromInt(10000),
	}
	require.NoError(t, store.db.Create(p).Error)
	return p.ID
}

func TestStore_RecordKeepsDetailsVerbatim(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))
	policyID := seedPolicy(t, store)

	rec, err := store.Record(ctx, Entry{
		PolicyID:    policyID,
		Action:      "Document_Downloaded",
		Description: "Contrato descargado",
		PerformedBy: User("staff-7"),
		Details: map[string]interface{}{
			"documentId": 12,
			"nested":     map[string]interface{}{"x": "y"},
			"callback":   func() {},
		},
		IPAddress: " 10.0.0.1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "document_downloaded", rec.Action)
	require.NotNil(t, rec.PerformedByID)
	assert.Equal(t, "staff-7", *rec.PerformedByID)
	require.NotNil(t, rec.IPAddress)
	assert.Equal(t, "10.0.0.1", *rec.IPAddress)

	list, err := store.List(ctx, policyID, Oldest)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 12, list[0].Details["documentId"])
	assert.Equal(t, map[string]interface{}{"x": "y"}, list[0].Details["nested"])
	assert.IsType(t, "", list[0].Details["callback"])
}

func TestStore_SystemPerformer(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))
	policyID := seedPolicy(t, store)

	rec, err := store.Record(ctx, Entry{PolicyID: policyID, Action: ActionCreated})
	require.NoError(t, err)
	assert.Nil(t, rec.PerformedByID)
	assert.Equal(t, models.PerformerSystem, rec.PerformedByType)
	assert.Nil(t, rec.IPAddress)
}

func TestStore_ListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))
	policyID := seedPolicy(t, store)

	for _, action := range []string{"first", "second", "third"} {
		_, err := store.Record(ctx, Entry{PolicyID: policyID, Action: action, PerformedBy: System()})
		require.NoError(t, err)
	}

	oldest, err := store.List(ctx, policyID, Oldest)
	require.NoError(t, err)
	require.Len(t, oldest, 3)
	assert.Equal(t, []string{"first", "second", "third"}, actions(oldest))

	newest, err := store.List(ctx, policyID, Newest)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, actions(newest))

	other, err := store.List(ctx, policyID+1, Oldest)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_StorageUnavailable(t *testing.T) {
	db := dbtest.Open(t)
	store := NewStore(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = store.Record(context.Background(), Entry{PolicyID: 1, Action: "approved"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrStorageUnavailable))
}

func actions(records []models.PolicyActivity) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Action
	}
	return out
}
