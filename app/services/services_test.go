package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *services.Services
	repos  *repositories.Repositories
	events *event.Bus
	disk   *storage.LocalDisk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repositories.New(store.NewMemory())
	bus := event.New()
	disk := storage.NewLocalDisk(t.TempDir(), "http://localhost/storage")
	svc := services.New(repos, services.Options{
		Events:           bus,
		Clock:            func() time.Time { return fixedNow },
		Disk:             disk,
		ReconcileWorkers: 2,
	})
	return &fixture{svc: svc, repos: repos, events: bus, disk: disk}
}

func (f *fixture) register(t *testing.T, email string, role workflow.Role) *models.Account {
	t.Helper()
	acc, err := f.svc.Accounts.Register(context.Background(), services.RegisterInput{
		Name:     "Test " + string(role),
		Email:    email,
		Password: "secret",
		Role:     string(role),
	})
	require.NoError(t, err)
	return acc
}

func (f *fixture) openShop(t *testing.T, name string) *models.Shop {
	t.Helper()
	ctx := context.Background()
	shop, err := f.svc.Shops.Create(ctx, services.CreateShopInput{Name: name})
	require.NoError(t, err)
	approved, err := f.svc.Shops.Approve(ctx, shop.ID.Hex())
	require.NoError(t, err)
	return approved
}

func ptr[T any](v T) *T { return &v }

// ─── Accounts ────────────────────────────────────────────────────────────────

func TestRegisterShopCreatesPendingLinkedShop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.svc.Accounts.Register(ctx, services.RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "pw",
		Role:     "shop",
		Meta:     map[string]any{"shop_name": "Asha Groceries"},
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.AccountPending, acc.Status)
	require.NotNil(t, acc.ShopID)

	shop, err := f.repos.Shops.FindByID(ctx, *acc.ShopID)
	require.NoError(t, err)
	assert.Equal(t, workflow.ShopPending, shop.Status)
	assert.Equal(t, "Asha Groceries", shop.Name)
	require.NotNil(t, shop.OwnerID)
	assert.Equal(t, acc.ID, *shop.OwnerID)
}

func TestRegisterRoleStatuses(t *testing.T) {
	f := newFixture(t)

	customer := f.register(t, "c@example.com", workflow.RoleCustomer)
	agent := f.register(t, "a@example.com", workflow.RoleAgent)

	assert.Equal(t, workflow.AccountNone, customer.Status)
	assert.Nil(t, customer.ShopID)
	assert.Equal(t, workflow.AccountPending, agent.Status)
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	f := newFixture(t)

	acc, err := f.svc.Accounts.Register(context.Background(), services.RegisterInput{
		Name: "No Role", Email: "nr@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleCustomer, acc.Role)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "dup@example.com", workflow.RoleCustomer)

	_, err := f.svc.Accounts.Register(ctx, services.RegisterInput{
		Name: "Other", Email: "dup@example.com", Password: "other", Role: "agent",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	stored, err := f.repos.Accounts.FindByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, first.Name, stored.Name)
	assert.Equal(t, "secret", stored.Password)
	assert.Equal(t, workflow.RoleCustomer, stored.Role)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Accounts.Register(ctx, services.RegisterInput{Name: "x", Email: "x@example.com", Password: "pw", Role: "admin"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Accounts.Register(ctx, services.RegisterInput{Name: "x", Password: "pw"})
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "email")
}

func TestRegisterAcceptsAnyEmailString(t *testing.T) {
	f := newFixture(t)
	acc, err := f.svc.Accounts.Register(context.Background(), services.RegisterInput{Name: "x", Email: "not-an-email", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "not-an-email", acc.Email)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.register(t, "c@example.com", workflow.RoleCustomer)
	f.register(t, "a@example.com", workflow.RoleAgent)

	res, err := f.svc.Accounts.Login(ctx, services.LoginInput{Email: "c@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, services.TokenPrefix+customer.ID.Hex(), res.Token)
	assert.Equal(t, customer.ID, res.Account.ID)

	_, err = f.svc.Accounts.Login(ctx, services.LoginInput{Email: "c@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.Accounts.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.Accounts.Login(ctx, services.LoginInput{Email: "a@example.com", Password: "secret"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestApproveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.register(t, "a@example.com", workflow.RoleAgent)
	customer := f.register(t, "c@example.com", workflow.RoleCustomer)

	var fired []event.Name
	f.events.Listen(event.AccountApproved, func(context.Context, any) { fired = append(fired, event.AccountApproved) })

	approved, err := f.svc.Accounts.Approve(ctx, agent.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, workflow.AccountApproved, approved.Status)
	assert.Len(t, fired, 1)

	_, err = f.svc.Accounts.Login(ctx, services.LoginInput{Email: "a@example.com", Password: "secret"})
	assert.NoError(t, err)

	_, err = f.svc.Accounts.Approve(ctx, customer.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Accounts.Approve(ctx, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ─── Shops ───────────────────────────────────────────────────────────────────

func TestApproveShopCascadesToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "s@example.com", workflow.RoleShop)

	shop, err := f.svc.Shops.Approve(ctx, owner.ShopID.Hex())
	require.NoError(t, err)
	assert.Equal(t, workflow.ShopOpen, shop.Status)
	assert.False(t, shop.Subscription.Active)

	acc, err := f.repos.Accounts.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.AccountApproved, acc.Status)

	_, err = f.svc.Accounts.Login(ctx, services.LoginInput{Email: "s@example.com", Password: "secret"})
	assert.NoError(t, err)
}

func TestApproveShopWithoutOwnerStillSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shop, err := f.svc.Shops.Create(ctx, services.CreateShopInput{
		Name:         "Corner Store",
		Subscription: &services.SubscriptionInput{Active: true, Status: "trial"},
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.ShopPending, shop.Status)

	approved, err := f.svc.Shops.Approve(ctx, shop.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, workflow.ShopOpen, approved.Status)
	assert.False(t, approved.Subscription.Active)
	assert.Equal(t, "trial", approved.Subscription.Status)
}

func TestShopCreateIgnoresRequestedStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shop, err := f.svc.Shops.Create(ctx, services.CreateShopInput{Name: "Bakery"})
	require.NoError(t, err)

	public, err := f.svc.Shops.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, public)

	pending, err := f.svc.Shops.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, shop.ID, pending[0].ID)

	unknown, err := f.svc.Shops.List(ctx, "approved")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestAdminListFiltersOnSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Shops.Create(ctx, services.CreateShopInput{Name: "A", Subscription: &services.SubscriptionInput{Status: "paid"}})
	require.NoError(t, err)
	_, err = f.svc.Shops.Create(ctx, services.CreateShopInput{Name: "B", Subscription: &services.SubscriptionInput{Status: "trial"}})
	require.NoError(t, err)

	all, err := f.svc.Shops.AdminList(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paid, err := f.svc.Shops.AdminList(ctx, "pending", "paid")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "A", paid[0].Name)
}

func TestShopUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop := f.openShop(t, "Chemist")
	id := shop.ID.Hex()

	updated, err := f.svc.Shops.Update(ctx, id, services.UpdateShopInput{
		Location:          ptr("MG Road"),
		ProfileImageCamel: ptr("http://img/1.png"),
		Status:            ptr("closed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "MG Road", updated.Location)
	assert.Equal(t, "http://img/1.png", updated.ProfileImage)
	assert.Equal(t, workflow.ShopClosed, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	_, err = f.svc.Shops.Update(ctx, id, services.UpdateShopInput{Status: ptr("pending")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Shops.Update(ctx, id, services.UpdateShopInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Shops.Update(ctx, id, services.UpdateShopInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestShopGetEmbedsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop := f.openShop(t, "Greens")

	_, err := f.svc.Products.Create(ctx, shop.ID.Hex(), services.CreateProductInput{Name: "Spinach", Price: ptr(1.5)})
	require.NoError(t, err)

	detail, err := f.svc.Shops.Get(ctx, shop.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Greens", detail.Name)
	require.Len(t, detail.Products, 1)
	assert.Equal(t, "Spinach", detail.Products[0].Name)
}

// ─── Products ────────────────────────────────────────────────────────────────

func TestProductCreateRequiresShopAndPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop := f.openShop(t, "Hardware")

	_, err := f.svc.Products.Create(ctx, "0123456789abcdef01234567", services.CreateProductInput{Name: "Nail", Price: ptr(0.1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Products.Create(ctx, shop.ID.Hex(), services.CreateProductInput{Name: "Nail"})
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "price")

	_, err = f.svc.Products.Create(ctx, shop.ID.Hex(), services.CreateProductInput{Name: "Nail", Price: ptr(-1.0)})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	free, err := f.svc.Products.Create(ctx, shop.ID.Hex(), services.CreateProductInput{Name: "Sticker", Price: ptr(0.0), Stock: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, free.Price)
	assert.Equal(t, 5, free.Stock)
	assert.Equal(t, []string{}, free.Images)
}

func TestProductUpdateIsScopedToShop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.openShop(t, "A")
	b := f.openShop(t, "B")

	product, err := f.svc.Products.Create(ctx, a.ID.Hex(), services.CreateProductInput{Name: "Milk", Price: ptr(2.0)})
	require.NoError(t, err)

	_, err = f.svc.Products.Update(ctx, b.ID.Hex(), product.ID.Hex(), services.UpdateProductInput{Price: ptr(9.0)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	unchanged, err := f.repos.Products.FindInShop(ctx, product.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, unchanged.Price)

	updated, err := f.svc.Products.Update(ctx, a.ID.Hex(), product.ID.Hex(), services.UpdateProductInput{Price: ptr(3.0), Stock: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Price)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, "Milk", updated.Name)

	_, err = f.svc.Products.Update(ctx, a.ID.Hex(), product.ID.Hex(), services.UpdateProductInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

// ─── Identifiers ─────────────────────────────────────────────────────────────

func TestMalformedIDsAreInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "0123456789abcdef0123456"} {
		calls := map[string]error{}
		_, calls["account"] = f.svc.Accounts.Get(ctx, bad)
		_, calls["approve user"] = f.svc.Accounts.Approve(ctx, bad)
		_, calls["shop"] = f.svc.Shops.Get(ctx, bad)
		_, calls["approve shop"] = f.svc.Shops.Approve(ctx, bad)
		_, calls["products"] = f.svc.Products.ListForShop(ctx, bad)
		_, calls["confirm"] = f.svc.Orders.Confirm(ctx, bad)
		_, calls["orders"] = f.svc.Orders.ListFor(ctx, services.OwnerAgent, bad)
		_, calls["earnings"] = f.svc.Agents.Earnings(ctx, bad)

		for name, err := range calls {
			assert.ErrorIs(t, err, apperr.ErrInvalidID, "%s(%q)", name, bad)
			assert.Equal(t, 400, apperr.Status(err), "%s(%q)", name, bad)
		}
	}
}
