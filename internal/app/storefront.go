// Package app composes the auth, catalog and cart stores over one key/value
// backend.
package app

import (
	"context"
	"time"

	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
	"github.com/Skotchmaster/sole_searcher/internal/service"
	"github.com/Skotchmaster/sole_searcher/internal/storage"
)

type Deps struct {
	Store  storage.Store
	Prefix string
	// Producer may be nil.
	Producer    service.EventPublisher
	AdminEmail  string
	AuthLatency time.Duration
	HashCost    int
}

type Storefront struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
}

// New rehydrates all three stores and subscribes the cart to session
// changes. A session restored from storage brings its cart with it.
func New(ctx context.Context, d Deps) *Storefront {
	r := &repo.StorageRepo{Store: d.Store, Keys: repo.Keys{Prefix: d.Prefix}}

	sf := &Storefront{
		Auth: &service.AuthService{
			Repo:       r,
			Producer:   d.Producer,
			AdminEmail: d.AdminEmail,
			Latency:    d.AuthLatency,
			HashCost:   d.HashCost,
		},
		Catalog: &service.CatalogService{Repo: r, Producer: d.Producer},
		Cart:    &service.CartService{Repo: r, Producer: d.Producer},
	}

	sf.Auth.Load(ctx)
	sf.Catalog.Load(ctx)
	sf.Auth.AddListener(sf.Cart)
	if u := sf.Auth.CurrentUser(); u != nil {
		sf.Cart.SessionChanged(ctx, u)
	}

	logging.FromContext(ctx).Info("storefront_ready",
		"users_key", r.Keys.Users(),
		"session", sf.Auth.CurrentUser() != nil,
		"cart_lines", len(sf.Cart.Items()),
	)
	return sf
}

// AddToCart puts the current catalog version of productID into the cart.
func (s *Storefront) AddToCart(ctx context.Context, productID int64) (models.CartItem, error) {
	p, err := s.Catalog.Get(ctx, productID)
	if err != nil {
		return models.CartItem{}, err
	}
	return s.Cart.AddItem(ctx, p), nil
}
