package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/metrics"
	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
	"github.com/Skotchmaster/sole_searcher/internal/util"
)

type SortKey string

const (
	SortByID    SortKey = "id"
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortKey maps an empty string to SortByID.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByID, nil
	case SortByID, SortByName, SortByPrice:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q: %w", s, ErrValidation)
	}
}

// ParseSortDirection maps an empty string to SortAsc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q: %w", s, ErrValidation)
	}
}

type ProductInput struct {
	Name     string
	Price    string
	ImageURL string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if !models.PricePattern.MatchString(in.Price) {
		return fmt.Errorf("price %q must look like $120 or $120.50: %w", in.Price, ErrValidation)
	}
	if !models.ImageURLPattern.MatchString(in.ImageURL) {
		return fmt.Errorf("image url %q must be http(s): %w", in.ImageURL, ErrValidation)
	}
	return nil
}

func SeedProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "AeroGlide 1", Price: "$180", ImageURL: "https://images.unsplash.com/photo-1600185365926-3a2ce3cdb9eb?q=80&w=1925&auto=format&fit=crop"},
		{ID: 2, Name: "Quantum Leap", Price: "$220", ImageURL: "https://images.unsplash.com/photo-1515955656352-a1fa3ffcd111?q=80&w=2070&auto=format&fit=crop"},
		{ID: 3, Name: "Stealth Runner", Price: "$150", ImageURL: "https://images.unsplash.com/photo-1605348532760-6753d2c43329?q=80&w=1964&auto=format&fit=crop"},
		{ID: 4, Name: "Vertex High-Top", Price: "$250", ImageURL: "https://images.unsplash.com/photo-1579338559194-a162d19bf842?q=80&w=1974&auto=format&fit=crop"},
		{ID: 5, Name: "Nova Trainer", Price: "$195", ImageURL: "https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?q=80&w=1964&auto=format&fit=crop"},
		{ID: 6, Name: "Echo Classic", Price: "$130", ImageURL: "https://images.unsplash.com/photo-1560769629-975ec94e6a86?q=80&w=1964&auto=format&fit=crop"},
	}
}

type CatalogService struct {
	Repo     *repo.StorageRepo
	Producer EventPublisher
	Now      func() time.Time

	mu       sync.RWMutex
	products []models.Product
}

// Load rehydrates the catalog. A catalog that was never written is seeded and
// persisted; an unreadable one falls back to the seed without touching storage.
func (s *CatalogService) Load(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "catalog.load")

	products, found, err := s.Repo.LoadProducts(ctx)
	switch {
	case err != nil:
		storageFailed(ctx, "catalog", "load", err)
		products = SeedProducts()
	case !found:
		products = SeedProducts()
		if err := s.Repo.SaveProducts(ctx, products); err != nil {
			storageFailed(ctx, "catalog", "save", err)
		}
		l.Info("catalog_seeded", "count", len(products))
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

func (s *CatalogService) Add(ctx context.Context, in ProductInput) (models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.add")
	if err := in.validate(); err != nil {
		l.Warn("product_create_error", "status", 400, "error", err)
		return models.Product{}, err
	}

	s.mu.Lock()
	p := models.Product{
		ID:       s.nextIDLocked(),
		Name:     in.Name,
		Price:    in.Price,
		ImageURL: in.ImageURL,
	}
	s.products = append(s.products, p)
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.CatalogMutationsTotal.WithLabelValues("create").Inc()
	publish(ctx, s.Producer, TopicProductEvents, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	l.Info("create_product_success", "product_id", p.ID)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, in ProductInput) (models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)
	if err := in.validate(); err != nil {
		l.Warn("product_patch_error", "status", 400, "error", err)
		return models.Product{}, err
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		l.Warn("product_patch_error", "status", 404)
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p := models.Product{ID: id, Name: in.Name, Price: in.Price, ImageURL: in.ImageURL}
	s.products[i] = p
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.CatalogMutationsTotal.WithLabelValues("update").Inc()
	publish(ctx, s.Producer, TopicProductEvents, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
	})
	l.Info("patch_product_success")
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		l.Warn("product_delete_error", "status", 404)
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	s.products = slices.Delete(s.products, i, i+1)
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.CatalogMutationsTotal.WithLabelValues("delete").Inc()
	publish(ctx, s.Producer, TopicProductEvents, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	l.Info("delete_product_success")
	return nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.products[i], nil
	}
	return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

// List returns a sorted copy of the catalog. The sort is stable, so equal
// keys keep catalog order in both directions.
func (s *CatalogService) List(key SortKey, dir SortDirection) []models.Product {
	s.mu.RLock()
	out := slices.Clone(s.products)
	s.mu.RUnlock()

	compare := compareBy(key)
	if dir == SortDesc {
		slices.SortStableFunc(out, func(a, b models.Product) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Page slices a listed snapshot. page is 1-based.
func Page(list []models.Product, page, size int) []models.Product {
	offset, limit := util.Calculate(page, size)
	if offset >= len(list) {
		return []models.Product{}
	}
	end := min(offset+limit, len(list))
	return list[offset:end]
}

func compareBy(key SortKey) func(a, b models.Product) int {
	switch key {
	case SortByName:
		return func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) }
	case SortByPrice:
		return func(a, b models.Product) int { return cmp.Compare(priceOrZero(a), priceOrZero(b)) }
	default:
		return func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) }
	}
}

func priceOrZero(p models.Product) float64 {
	v, err := p.PriceValue()
	if err != nil {
		return 0
	}
	return v
}

// nextIDLocked uses the wall clock in milliseconds and moves past the
// current maximum when the clock has not advanced.
func (s *CatalogService) nextIDLocked() int64 {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	id := now().UnixMilli()
	for _, p := range s.products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

func (s *CatalogService) indexLocked(id int64) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

func (s *CatalogService) persistLocked(ctx context.Context) {
	if err := s.Repo.SaveProducts(ctx, s.products); err != nil {
		storageFailed(ctx, "catalog", "save", err)
	}
}
