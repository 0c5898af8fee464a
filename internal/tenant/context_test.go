package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmatrack/m/domain"
)

func TestShopBinding(t *testing.T) {
	ctx := context.Background()
	_, err := RequireShop(ctx)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))

	ctx = WithShop(ctx, 42)
	id, err := RequireShop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestZeroShopIsUnbound(t *testing.T) {
	_, ok := ShopID(WithShop(context.Background(), 0))
	assert.False(t, ok)
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserID(ctx))

	ctx = WithIdentity(ctx, Identity{UserID: 7, ShopID: 3, Role: domain.RoleStaff})
	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.False(t, got.IsSuperAdmin())
	require.NotNil(t, UserID(ctx))
	assert.Equal(t, int64(7), *UserID(ctx))
}
