package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
)

func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	env.category(t, "Sweets")
	env.category(t, "Drinks")

	env.product(t, "Marshmallow", "Sweets", 50, map[string]string{"color": "white"})
	env.product(t, "Zefir", "Sweets", 30, map[string]string{"color": "pink"})
	env.product(t, "Lemonade", "Drinks", 40, map[string]string{"taste": "citrus"})
	env.product(t, "Cocoa", "Drinks", 30, nil)
}

func TestCatalogService_ListProducts_SortByPrice(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	page, err := env.Catalog.ListProducts(ctx, ProductQuery{Page: 0, SortBy: "price"})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].Price.LessThan(page.Items[i-1].Price), "prices must not decrease")
	}
	// equal prices keep insertion order
	assert.Equal(t, []string{"Zefir", "Cocoa", "Lemonade", "Marshmallow"}, productNames(page.Items))

	unknown, err := env.Catalog.ListProducts(ctx, ProductQuery{SortBy: "popularity"})
	require.NoError(t, err)
	assert.Equal(t, productNames(page.Items), productNames(unknown.Items))

	empty, err := env.Catalog.ListProducts(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, productNames(page.Items), productNames(empty.Items))
}

func TestCatalogService_ListProducts_SortKeys(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	tests := []struct {
		sortBy string
		want   []string
	}{
		{sortBy: "name", want: []string{"Cocoa", "Lemonade", "Marshmallow", "Zefir"}},
		{sortBy: " NaMe ", want: []string{"Cocoa", "Lemonade", "Marshmallow", "Zefir"}},
		{sortBy: "category", want: []string{"Lemonade", "Cocoa", "Marshmallow", "Zefir"}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			page, err := env.Catalog.ListProducts(ctx, ProductQuery{SortBy: tt.sortBy})
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(page.Items))
		})
	}
}

func TestCatalogService_ListProducts_SortByDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := env.category(t, "Sweets")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Newest", "Oldest", "Middle"} {
		offsets := []int{3, 1, 2}
		p := &models.Product{
			Name:        name,
			Description: "d",
			Price:       decimal.NewFromInt(int64(10 - i)),
			CategoryID:  cat.ID,
			CreatedAt:   base.Add(time.Duration(offsets[i]) * time.Hour),
		}
		require.NoError(t, env.Repo.CreateProduct(ctx, p))
	}

	page, err := env.Catalog.ListProducts(ctx, ProductQuery{SortBy: "date"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Oldest", "Middle", "Newest"}, productNames(page.Items))
}

func TestCatalogService_ListProducts_Filters(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	tests := []struct {
		name string
		q    ProductQuery
		want []string
	}{
		{name: "category substring", q: ProductQuery{Category: "Drin"}, want: []string{"Cocoa", "Lemonade"}},
		{name: "category is case sensitive", q: ProductQuery{Category: "drinks"}, want: []string{}},
		{name: "search by name", q: ProductQuery{Search: "Zef"}, want: []string{"Zefir"}},
		{name: "search by description", q: ProductQuery{Search: "escription"}, want: []string{"Zefir", "Cocoa", "Lemonade", "Marshmallow"}},
		{name: "search by characteristic", q: ProductQuery{Search: "citrus"}, want: []string{"Lemonade"}},
		{name: "search strips spaces", q: ProductQuery{Search: " pi nk "}, want: []string{"Zefir"}},
		{name: "search and category", q: ProductQuery{Search: "o", Category: "Sweets"}, want: []string{"Zefir", "Marshmallow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.Catalog.ListProducts(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(page.Items))
		})
	}
}

func TestCatalogService_ListProducts_Thematic(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	all, err := env.Catalog.ListProducts(ctx, ProductQuery{SortBy: "name"})
	require.NoError(t, err)
	byName := map[string]uint{}
	for _, p := range all.Items {
		byName[p.Name] = p.ID
	}

	_, err = env.Thematics.CreateThematic(ctx, "NewYear", []uint{byName["Cocoa"], byName["Marshmallow"], 9999})
	require.NoError(t, err)

	page, err := env.Catalog.ListProducts(ctx, ProductQuery{Thematic: "Year", SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cocoa", "Marshmallow"}, productNames(page.Items))

	page, err = env.Catalog.ListProducts(ctx, ProductQuery{Thematic: "Year", Category: "Sweets"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Marshmallow"}, productNames(page.Items))

	_, err = env.Catalog.ListProducts(ctx, ProductQuery{Thematic: "Easter"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)
	assert.Equal(t, "thematic", ae.Errors[0].Field)
	assert.Equal(t, "no such thematic", ae.Errors[0].Message)
}

func TestCatalogService_ListProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.category(t, "Bulk")
	for i := 0; i < 23; i++ {
		env.product(t, fmt.Sprintf("item-%02d", i), "Bulk", int64(i), nil)
	}

	tests := []struct {
		page      int
		wantLen   int
		wantFirst string
	}{
		{page: 0, wantLen: 10, wantFirst: "item-00"},
		{page: 1, wantLen: 10, wantFirst: "item-10"},
		{page: 2, wantLen: 3, wantFirst: "item-20"},
		{page: 3, wantLen: 0},
		{page: -1, wantLen: 0},
		{page: math.MaxInt/PageSize + 1, wantLen: 0},
		{page: math.MaxInt, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			page, err := env.Catalog.ListProducts(ctx, ProductQuery{Page: tt.page})
			require.NoError(t, err)
			assert.Equal(t, 2, page.TotalPages)
			assert.Equal(t, tt.page, page.CurrentPage)
			require.Len(t, page.Items, tt.wantLen)
			assert.NotNil(t, page.Items)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Items[0].Name)
			}
		})
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	env := newTestEnv(t)
	idx := newFakeIndex()
	env.Catalog.Index = idx
	env.category(t, "Sweets")

	p := env.product(t, "Marshmallow", "Sweets", 50, map[string]string{"color": "white", "weight": "100g"})
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Sweets", p.Category.Name)
	assert.Len(t, p.Characteristics, 2)

	ev, ok := env.Events.Last(events.TopicProducts)
	require.True(t, ok)
	pe := ev.Event.(events.ProductEvent)
	assert.Equal(t, events.ProductCreated, pe.Type)
	assert.Equal(t, p.ID, pe.ProductID)
	assert.Equal(t, "Marshmallow", pe.Name)

	doc, ok := idx.docs[p.ID]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"white", "100g"}, doc.Characteristics)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.CreateProduct(ctx, ProductInput{
		Price:        decimal.NewFromInt(-1),
		CategoryName: "Nope",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, _ := apperr.As(err)

	fields := map[string]string{}
	for _, fe := range ae.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "No such category", fields["CategoryName"])
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Description")
	assert.Contains(t, fields, "Price")
	assert.Empty(t, env.Events.Events())
}

func TestCatalogService_GetProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)

	got, err := env.Catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marshmallow", got.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Views))

	_, err = env.Catalog.GetProduct(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Views))
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.category(t, "Sweets")
	env.category(t, "Gifts")
	p := env.product(t, "Marshmallow", "Sweets", 50, map[string]string{"color": "white"})

	got, err := env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Name:            "Marshmallow box",
		Description:     "boxed",
		CategoryName:    "Gifts",
		Price:           decimal.NewFromInt(70),
		Characteristics: map[string]string{"color": "pink", "size": "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Marshmallow box", got.Name)
	assert.Equal(t, "Gifts", got.Category.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(70)))
	assert.Len(t, got.Characteristics, 2)

	ev, ok := env.Events.Last(events.TopicProducts)
	require.True(t, ok)
	assert.Equal(t, events.ProductUpdated, ev.Event.(events.ProductEvent).Type)

	_, err = env.Catalog.UpdateProduct(ctx, 9999, ProductInput{Name: "x", Description: "y", CategoryName: "Gifts"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: "x", Description: "y", CategoryName: "Nope"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	idx := newFakeIndex()
	env.Catalog.Index = idx
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 50, nil)

	_, err := env.Baskets.AddProduct(ctx, user.User.ID, p.ID)
	require.NoError(t, err)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uint{p.ID}, idx.deleted)

	b, err := env.Baskets.GetBasket(ctx, user.User.ID)
	require.NoError(t, err)
	assert.Empty(t, b.Products)

	assert.ErrorIs(t, env.Catalog.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestCatalogService_DeleteProduct_Ordered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ann@example.com")
	env.category(t, "Sweets")
	p := env.product(t, "Marshmallow", "Sweets", 30, nil)

	order, err := env.Orders.CreateOrder(ctx, identityOf(user), OrderInput{ProductIDs: []uint{p.ID}, Deadline: "12-31-2099"})
	require.NoError(t, err)

	err = env.Catalog.DeleteProduct(ctx, p.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Product is referenced by orders"}, ae.Messages())

	orders, err := env.Orders.ListOrders(ctx, &user.User.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, []string{"Marshmallow"}, productNames(orders[0].Products))

	_, err = env.Catalog.GetProduct(ctx, p.ID)
	assert.NoError(t, err)
}

func TestCatalogService_Reindex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)

	n, err := env.Catalog.Reindex(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	idx := newFakeIndex()
	env.Catalog.Index = idx
	n, err = env.Catalog.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, idx.docs, 4)
	for _, doc := range idx.docs {
		assert.NotEmpty(t, doc.Category)
	}

	idx.err = errors.New("cluster red")
	_, err = env.Catalog.Reindex(ctx)
	assert.ErrorContains(t, err, "cluster red")
}

func TestCatalogService_SearchProducts(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	t.Run("falls back to substring search", func(t *testing.T) {
		page, err := env.Catalog.SearchProducts(ctx, "Zef", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Zefir"}, productNames(page.Items))
	})

	t.Run("uses index order", func(t *testing.T) {
		all, err := env.Catalog.ListProducts(ctx, ProductQuery{SortBy: "name"})
		require.NoError(t, err)

		idx := newFakeIndex()
		idx.hits = []uint{all.Items[3].ID, 9999, all.Items[0].ID}
		idx.total = 21
		env.Catalog.Index = idx
		t.Cleanup(func() { env.Catalog.Index = nil })

		page, err := env.Catalog.SearchProducts(ctx, "anything", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Zefir", "Cocoa"}, productNames(page.Items))
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, 1, page.CurrentPage)
	})

	t.Run("empty query lists the catalog", func(t *testing.T) {
		idx := newFakeIndex()
		env.Catalog.Index = idx
		t.Cleanup(func() { env.Catalog.Index = nil })

		page, err := env.Catalog.SearchProducts(ctx, "  ", 0)
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)
	})

	t.Run("page past the result window", func(t *testing.T) {
		idx := newFakeIndex()
		all, err := env.Catalog.ListProducts(ctx, ProductQuery{})
		require.NoError(t, err)
		idx.hits = []uint{all.Items[0].ID}
		idx.total = 1
		env.Catalog.Index = idx
		t.Cleanup(func() { env.Catalog.Index = nil })

		for _, p := range []int{maxSearchOffset / PageSize, math.MaxInt/PageSize + 1} {
			page, err := env.Catalog.SearchProducts(ctx, "Zefir", p)
			require.NoError(t, err)
			assert.Empty(t, page.Items)
			assert.Equal(t, p, page.CurrentPage)
		}
	})

	t.Run("index failure", func(t *testing.T) {
		idx := newFakeIndex()
		idx.err = errors.New("cluster red")
		env.Catalog.Index = idx
		t.Cleanup(func() { env.Catalog.Index = nil })

		_, err := env.Catalog.SearchProducts(ctx, "x", 0)
		assert.ErrorContains(t, err, "cluster red")
	})
}

func TestCatalogService_IndexFailureDoesNotFailWrite(t *testing.T) {
	env := newTestEnv(t)
	idx := newFakeIndex()
	idx.err = errors.New("cluster red")
	env.Catalog.Index = idx
	env.Events.Err = errors.New("broker down")
	env.category(t, "Sweets")

	p := env.product(t, "Marshmallow", "Sweets", 50, nil)
	assert.NotZero(t, p.ID)
}
