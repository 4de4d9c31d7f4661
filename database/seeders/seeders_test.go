package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/database/seeders"
	"github.com/vancyferns/near2door/pkg/store"
)

func TestMarketplaceSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := services.New(repositories.New(store.NewMemory()), services.Options{})

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, svc, &out))
	assert.Contains(t, out.String(), "marketplace")
	require.NoError(t, seeders.RunAll(ctx, svc, &out))

	res, err := svc.Accounts.Login(ctx, services.LoginInput{Email: seeders.DemoShopEmail, Password: seeders.DemoPassword})
	require.NoError(t, err)
	require.NotNil(t, res.Account.ShopID)

	shops, err := svc.Shops.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Corner Kirana", shops[0].Name)

	orders, err := svc.Orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 24.7, orders[0].TotalPrice)

	agents, err := svc.Agents.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	earnings, err := svc.Agents.Earnings(ctx, agents[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), earnings.TotalDeliveries)

	assert.Equal(t, []string{"marketplace"}, seeders.Names())
}
