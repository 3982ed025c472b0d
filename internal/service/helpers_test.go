package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
	"github.com/Skotchmaster/zefir_shop/internal/search"
	"github.com/Skotchmaster/zefir_shop/internal/testdb"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	Repo       *repo.GormRepo
	Events     *events.Recorder
	Views      prometheus.Counter
	Accounts   *AccountService
	Catalog    *CatalogService
	Orders     *OrderService
	Baskets    *BasketService
	Categories *CategoryService
	Thematics  *ThematicService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(testdb.InitTestDB(t))
	rec := &events.Recorder{}
	views := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_product_views_total"})

	return &testEnv{
		Repo:   r,
		Events: rec,
		Views:  views,
		Accounts: &AccountService{
			Repo:        r,
			Events:      rec,
			JWTSecret:   testSecret,
			AccessTTL:   time.Minute,
			DefaultRole: models.RoleUser,
		},
		Catalog:    &CatalogService{Repo: r, Events: rec, Views: views},
		Orders:     &OrderService{Repo: r, Events: rec},
		Baskets:    &BasketService{Repo: r},
		Categories: &CategoryService{Repo: r},
		Thematics:  &ThematicService{Repo: r},
	}
}

func (e *testEnv) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := e.Accounts.Register(context.Background(), RegisterInput{
		Name:            "Ann",
		Surname:         "Lee",
		Phone:           "+7 999 123-45-67",
		Email:           email,
		Password:        "secret",
		PasswordConfirm: "secret",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	cat, err := e.Categories.CreateCategory(context.Background(), CategoryInput{Name: name, Description: name + " desc"})
	require.NoError(t, err)
	return cat
}

func (e *testEnv) product(t *testing.T, name, category string, price int64, chars map[string]string) *models.Product {
	t.Helper()
	p, err := e.Catalog.CreateProduct(context.Background(), ProductInput{
		Name:            name,
		Description:     name + " description",
		CategoryName:    category,
		Price:           decimal.NewFromInt(price),
		Characteristics: chars,
	})
	require.NoError(t, err)
	return p
}

func identityOf(res *AuthResult) Identity {
	return Identity{UserID: res.User.ID, Email: res.User.Email, Role: res.User.RoleName}
}

func productNames(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]search.Document
	deleted []uint
	hits    []uint
	total   int64
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]search.Document{}}
}

func (f *fakeIndex) Index(_ context.Context, doc search.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, f.hits, f.err
}
