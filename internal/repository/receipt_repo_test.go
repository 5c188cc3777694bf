package repository

import (
	"context"
	"testing"
	"time"

	"naxospos/internal/model"
	"naxospos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptUpsertAndRetries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	due := now.Add(-time.Minute)
	later := now.Add(time.Hour)
	msg := "disk full"

	require.NoError(t, repo.Upsert(ctx, &model.Receipt{SaleID: 1, Total: testutil.Dec("5.00"), Status: model.ReceiptError, RetryCount: 1, NextRetryAt: &due, LastError: &msg}))
	require.NoError(t, repo.Upsert(ctx, &model.Receipt{SaleID: 2, Total: testutil.Dec("7.00"), Status: model.ReceiptError, RetryCount: 1, NextRetryAt: &later}))

	pending, err := repo.ListPendingRetries(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(1), pending[0].SaleID)

	path := "/tmp/venta_1.pdf"
	require.NoError(t, repo.Upsert(ctx, &model.Receipt{SaleID: 1, Total: testutil.Dec("5.00"), Status: model.ReceiptGenerated, PDFPath: &path}))

	rec, err := repo.FindBySaleID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptGenerated, rec.Status)
	assert.Equal(t, path, *rec.PDFPath)
	assert.Nil(t, rec.NextRetryAt)

	var n int64
	require.NoError(t, db.Model(&model.Receipt{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
