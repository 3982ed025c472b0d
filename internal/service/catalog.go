package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
	"github.com/Skotchmaster/zefir_shop/internal/search"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

const PageSize = 10

const msgNoProduct = "Product not found"

// maxSearchOffset is the default index.max_result_window of Elasticsearch.
const maxSearchOffset = 10000

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndex
	Views  prometheus.Counter
}

type ProductQuery struct {
	Page     int
	Search   string
	SortBy   string
	Category string
	Thematic string
}

type ProductPage struct {
	Items       []models.Product
	TotalPages  int
	CurrentPage int
}

type ProductInput struct {
	Name            string
	Description     string
	CategoryName    string
	Price           decimal.Decimal
	Characteristics map[string]string
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// ListProducts filters, sorts and pages the whole catalog. Sorting happens
// before paging so page boundaries follow the requested order.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	q.Search = stripSpaces(q.Search)
	q.SortBy = stripSpaces(q.SortBy)
	q.Category = stripSpaces(q.Category)
	q.Thematic = stripSpaces(q.Thematic)

	var inThematic map[uint]struct{}
	if q.Thematic != "" {
		ids, err := s.thematicProducts(ctx, q.Thematic)
		if err != nil {
			return nil, err
		}
		inThematic = ids
	}

	all, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	filtered := make([]models.Product, 0, len(all))
	for _, p := range all {
		if !strings.Contains(p.Category.Name, q.Category) {
			continue
		}
		if !matchesSearch(p, q.Search) {
			continue
		}
		if inThematic != nil {
			if _, ok := inThematic[p.ID]; !ok {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, q.SortBy)
	return paginate(filtered, q.Page), nil
}

// thematicProducts resolves the first thematic, by name order, whose name
// contains fragment.
func (s *CatalogService) thematicProducts(ctx context.Context, fragment string) (map[uint]struct{}, error) {
	names, err := s.Repo.ListThematicNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thematics: %w", err)
	}
	for _, name := range names {
		if !strings.Contains(name, fragment) {
			continue
		}
		ids, err := s.Repo.ThematicProductIDs(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("thematic products: %w", err)
		}
		set := make(map[uint]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set, nil
	}
	return nil, apperr.BadRequest("thematic", "no such thematic")
}

func matchesSearch(p models.Product, text string) bool {
	if text == "" || strings.Contains(p.Name, text) || strings.Contains(p.Description, text) {
		return true
	}
	for _, c := range p.Characteristics {
		if strings.Contains(c.Value, text) {
			return true
		}
	}
	return false
}

// sortProducts orders in place. Unknown keys fall back to ascending price.
func sortProducts(items []models.Product, key string) {
	var less func(a, b models.Product) bool
	switch strings.ToLower(key) {
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case "category":
		less = func(a, b models.Product) bool { return a.Category.Name < b.Category.Name }
	case "date":
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// paginate keeps the historical floor division for TotalPages, so a trailing
// partial page is not counted even though it can be fetched.
func paginate(items []models.Product, page int) *ProductPage {
	out := &ProductPage{
		Items:       []models.Product{},
		TotalPages:  len(items) / PageSize,
		CurrentPage: page,
	}
	if page < 0 || len(items) == 0 || page > (len(items)-1)/PageSize {
		return out
	}
	start := page * PageSize
	end := min(start+PageSize, len(items))
	out.Items = items[start:end]
	return out
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgNoProduct)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if s.Views != nil {
		s.Views.Inc()
	}
	return p, nil
}

// validate collects every problem with in and resolves its category.
func (s *CatalogService) validate(ctx context.Context, in ProductInput) (*models.Category, error) {
	var errs apperr.Collector
	errs.Check(strings.TrimSpace(in.Name) != "", "Name", "Name can't be null or empty")
	errs.Check(strings.TrimSpace(in.Description) != "", "Description", "Description can't be null or empty")
	errs.Check(!in.Price.IsNegative(), "Price", "Price can't be negative")

	cat, err := s.Repo.GetCategoryByName(ctx, in.CategoryName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find category: %w", err)
		}
		errs.Add("CategoryName", "No such category")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	cat, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		CategoryID:      cat.ID,
		Characteristics: characteristicsFrom(in.Characteristics),
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p.Category = *cat

	logging.FromContext(ctx).Info("product_created", "svc", "catalog.create", "product_id", p.ID)
	s.afterWrite(ctx, events.ProductCreated, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgNoProduct)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	cat, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	upd := &models.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  cat.ID,
	}
	if err := s.Repo.UpdateProduct(ctx, upd, in.Characteristics); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	s.afterWrite(ctx, events.ProductUpdated, p)
	return p, nil
}

// DeleteProduct refuses products that orders still reference, so an order
// never loses its last product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	ordered, err := s.Repo.ProductOrdered(ctx, id)
	if err != nil {
		return fmt.Errorf("check product orders: %w", err)
	}
	if ordered {
		return apperr.BadRequest("Id", "Product is referenced by orders")
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(msgNoProduct)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	publish(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(id), 10), events.ProductEvent{
		Type:      events.ProductDeleted,
		ProductID: id,
		At:        time.Now().UTC(),
	})
	unindexProduct(ctx, s.Index, id)
	return nil
}

// SearchProducts uses the full-text index when one is configured and falls
// back to substring matching otherwise. An empty query lists the catalog.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page int) (*ProductPage, error) {
	if s.Index == nil || strings.TrimSpace(query) == "" {
		return s.ListProducts(ctx, ProductQuery{Page: page, Search: query})
	}
	if page < 0 || page > maxSearchOffset/PageSize-1 {
		return &ProductPage{Items: []models.Product{}, CurrentPage: page}, nil
	}

	total, ids, err := s.Index.Search(ctx, query, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load found products: %w", err)
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return &ProductPage{Items: items, TotalPages: int(total) / PageSize, CurrentPage: page}, nil
}

// Reindex pushes every product to the search index. It covers products
// written before the index was configured or while it was unreachable.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	all, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	for i := range all {
		if err := s.Index.Index(ctx, DocumentOf(&all[i])); err != nil {
			return i, fmt.Errorf("index product %d: %w", all[i].ID, err)
		}
	}
	return len(all), nil
}

func (s *CatalogService) afterWrite(ctx context.Context, typ string, p *models.Product) {
	publish(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), events.ProductEvent{
		Type:      typ,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Category:  p.Category.Name,
		At:        time.Now().UTC(),
	})
	indexProduct(ctx, s.Index, DocumentOf(p))
}

// DocumentOf builds the search document for p.
func DocumentOf(p *models.Product) search.Document {
	values := make([]string, 0, len(p.Characteristics))
	for _, c := range p.Characteristics {
		values = append(values, c.Value)
	}
	return search.Document{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category.Name,
		Price:           p.Price.InexactFloat64(),
		Characteristics: values,
	}
}

func characteristicsFrom(m map[string]string) []models.Characteristic {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.Characteristic, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.Characteristic{Key: k, Value: m[k]})
	}
	return out
}
