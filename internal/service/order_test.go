package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
)

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "12-31-2099", want: "2099-12-31", ok: true},
		{in: "2099-12-31", want: "2099-12-31", ok: true},
		{in: "12/31/2099", want: "2099-12-31", ok: true},
		{in: "1/2/2099", want: "2099-01-02", ok: true},
		{in: "31-12-2099"},
		{in: "tomorrow"},
		{in: ""},
	}
	for _, tt := range tests {
		got, ok := parseDeadline(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		}
	}
}

func TestOrderService_CreateOrder_InvalidDeadline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)

	_, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "31.12.2099"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)
	assert.Equal(t, "Deadline", ae.Errors[0].Field)

	orders, err := env.Orders.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_CreateOrder_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Orders.CreateOrder(context.Background(), Identity{UserID: 9999}, OrderInput{ProductIDs: []uint{1}, Deadline: "12-31-2099"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)
	assert.Equal(t, "userId", ae.Errors[0].Field)
}

func TestOrderService_CreateOrder_NoProductsResolve(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "ann@example.com")

	_, err := env.Orders.CreateOrder(context.Background(), identityOf(user), OrderInput{ProductIDs: []uint{9998, 9999}, Deadline: "12-31-2099"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)
	assert.Equal(t, "ProductsId", ae.Errors[0].Field)
	assert.Equal(t, "Invalid products id", ae.Errors[0].Message)

	_, err = env.Orders.CreateOrder(context.Background(), identityOf(user), OrderInput{Deadline: "12-31-2099"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestOrderService_CreateOrder_MixedIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	a := env.product(t, "Marshmallow", "Sweets", 50, nil)
	b := env.product(t, "Zefir", "Sweets", 25, nil)

	order, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{
		ProductIDs: []uint{a.ID, 9999, b.ID},
		Deadline:   "12-31-2099",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDefault, order.Status)
	assert.True(t, order.Sum.Equal(decimal.NewFromInt(75)), order.Sum.String())
	assert.ElementsMatch(t, []string{"Marshmallow", "Zefir"}, productNames(order.Products))

	ev, ok := env.Events.Last(events.TopicOrders)
	require.True(t, ok)
	oe := ev.Event.(events.OrderEvent)
	assert.Equal(t, events.OrderCreated, oe.Type)
	assert.Equal(t, 75.0, oe.Sum)
}

func TestOrderService_SumIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)

	order, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "12-31-2099"})
	require.NoError(t, err)

	_, err = env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Name: "Marshmallow", Description: "d", CategoryName: "Sweets", Price: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	orders, err := env.Orders.ListOrders(ctx, &user.User.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.True(t, orders[0].Sum.Equal(decimal.NewFromInt(50)), orders[0].Sum.String())
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)
	order, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "12-31-2099"})
	require.NoError(t, err)

	for _, st := range []models.OrderStatus{models.StatusInWork, models.StatusRejected, models.StatusDone, models.StatusDefault} {
		got, err := env.Orders.UpdateOrderStatus(ctx, order.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}

	ev, ok := env.Events.Last(events.TopicOrders)
	require.True(t, ok)
	assert.Equal(t, events.OrderStatusChanged, ev.Event.(events.OrderEvent).Type)

	_, err = env.Orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatus(7))
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)
	assert.Equal(t, "Status", ae.Errors[0].Field)

	_, err = env.Orders.UpdateOrderStatus(ctx, 9999, models.StatusDone)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrderService_UpdateOrderStatus_OwnerMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)
	order, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "12-31-2099"})
	require.NoError(t, err)

	// sqlite does not enforce the owner foreign key here
	require.NoError(t, env.Repo.DB.Exec("DELETE FROM users WHERE id = ?", user.User.ID).Error)

	_, err = env.Orders.UpdateOrderStatus(ctx, order.ID, models.StatusDone)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	ae, _ := apperr.As(err)
	assert.Equal(t, []string{"User is undefined"}, ae.Messages())
}

func TestOrderService_ListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com")
	bob := env.register(t, "bob@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)

	for _, u := range []*AuthResult{ann, bob, bob} {
		_, err := env.Orders.CreateOrder(ctx, identityOf(u), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "12-31-2099"})
		require.NoError(t, err)
	}

	all, err := env.Orders.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := env.Orders.ListOrders(ctx, &bob.User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, bob.User.ID, o.UserID)
		require.Len(t, o.Products, 1)
		assert.Equal(t, "Sweets", o.Products[0].Category.Name)
	}
}
