package repository

import (
	"context"
	"testing"

	"naxospos/internal/model"
	"naxospos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindByUsernameAcceptsEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	email := "Caja@Naxos.com"
	require.NoError(t, repo.Create(ctx, &model.User{Username: "caja1", Email: &email, PasswordHash: "x", Role: model.RoleCashier, IsActive: true}))

	u, err := repo.FindByUsername(ctx, "caja1")
	require.NoError(t, err)
	assert.Equal(t, "caja1", u.Username)

	u, err = repo.FindByUsername(ctx, "caja@naxos.com")
	require.NoError(t, err)
	assert.Equal(t, "caja1", u.Username)

	require.NoError(t, db.Model(u).Update("is_active", false).Error)
	_, err = repo.FindByUsername(ctx, "caja1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, byID.IsActive)
}
