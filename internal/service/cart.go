package service

import (
	"context"
	"slices"
	"sync"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/metrics"
	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
)

// CartService holds the line items of the active user. Changes made while no
// user is active are kept in memory only.
type CartService struct {
	Repo     *repo.StorageRepo
	Producer EventPublisher

	mu     sync.RWMutex
	userID string
	items  []models.CartItem
}

// SessionChanged swaps the cart for the one stored under u. A nil u empties
// the in-memory cart and leaves storage alone.
func (s *CartService) SessionChanged(ctx context.Context, u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		s.userID = ""
		s.items = nil
		return
	}

	items, err := s.Repo.LoadCart(ctx, u.ID)
	if err != nil {
		storageFailed(ctx, "cart", "load", err)
		items = nil
	}
	s.userID = u.ID
	s.items = normalizeCart(items)
	logging.FromContext(ctx).Debug("cart_loaded", "user_id", u.ID, "lines", len(items))
}

// AddItem bumps the quantity of an existing line or appends a new one.
func (s *CartService) AddItem(ctx context.Context, p models.Product) models.CartItem {
	s.mu.Lock()
	var line models.CartItem
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items[i].Quantity++
		line = s.items[i]
	} else {
		line = models.CartItem{Product: p, Quantity: 1}
		s.items = append(s.items, line)
	}
	userID := s.userID
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.CartMutationsTotal.WithLabelValues("add").Inc()
	publish(ctx, s.Producer, TopicCartEvents, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": p.ID,
		"quantity":  line.Quantity,
	})
	return line
}

// RemoveItem drops the whole line. It reports false when there was none.
func (s *CartService) RemoveItem(ctx context.Context, productID int64) bool {
	s.mu.Lock()
	i := s.indexLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	userID := s.userID
	s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	publish(ctx, s.Producer, TopicCartEvents, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return true
}

func (s *CartService) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.items)
	if out == nil {
		out = []models.CartItem{}
	}
	return out
}

func (s *CartService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice counts lines with an unparsable price as zero.
func (s *CartService) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, it := range s.items {
		total += priceOrZero(it.Product) * float64(it.Quantity)
	}
	return total
}

func (s *CartService) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *CartService) indexLocked(productID int64) int {
	return slices.IndexFunc(s.items, func(it models.CartItem) bool { return it.Product.ID == productID })
}

func (s *CartService) persistLocked(ctx context.Context) {
	if s.userID == "" {
		return
	}
	if err := s.Repo.SaveCart(ctx, s.userID, s.items); err != nil {
		storageFailed(ctx, "cart", "save", err)
	}
}

// normalizeCart merges lines sharing a product id and drops lines with a
// quantity below one. The first snapshot of a product wins.
func normalizeCart(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	pos := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := pos[it.Product.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.Product.ID] = len(out)
		out = append(out, it)
	}
	return out
}
