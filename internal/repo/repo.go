package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/storage"
)

const DefaultPrefix = "sole-searcher"

type Keys struct {
	Prefix string
}

func (k Keys) prefix() string {
	if k.Prefix == "" {
		return DefaultPrefix
	}
	return k.Prefix
}

func (k Keys) Users() string    { return k.prefix() + "-users" }
func (k Keys) Session() string  { return k.prefix() + "-session" }
func (k Keys) Products() string { return k.prefix() + "-products" }

func (k Keys) Cart(userID string) string {
	return k.prefix() + "-cart-" + userID
}

// StorageRepo maps the persisted state layout onto a key/value store.
type StorageRepo struct {
	Store storage.Store
	Keys  Keys
}

func (r *StorageRepo) LoadUsers(ctx context.Context) ([]models.StoredUser, error) {
	var users []models.StoredUser
	if _, err := storage.LoadJSON(ctx, r.Store, r.Keys.Users(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *StorageRepo) SaveUsers(ctx context.Context, users []models.StoredUser) error {
	if users == nil {
		users = []models.StoredUser{}
	}
	return storage.SaveJSON(ctx, r.Store, r.Keys.Users(), users)
}

func (r *StorageRepo) LoadSession(ctx context.Context) (*models.User, error) {
	var u *models.User
	if _, err := storage.LoadJSON(ctx, r.Store, r.Keys.Session(), &u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *StorageRepo) SaveSession(ctx context.Context, u models.User) error {
	return storage.SaveJSON(ctx, r.Store, r.Keys.Session(), u)
}

func (r *StorageRepo) ClearSession(ctx context.Context) error {
	err := r.Store.Delete(ctx, r.Keys.Session())
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// LoadProducts reports found=false when the catalog was never written.
func (r *StorageRepo) LoadProducts(ctx context.Context) ([]models.Product, bool, error) {
	var products []models.Product
	found, err := storage.LoadJSON(ctx, r.Store, r.Keys.Products(), &products)
	if err != nil {
		return nil, found, err
	}
	return products, found, nil
}

func (r *StorageRepo) SaveProducts(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	return storage.SaveJSON(ctx, r.Store, r.Keys.Products(), products)
}

func (r *StorageRepo) LoadCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if _, err := storage.LoadJSON(ctx, r.Store, r.Keys.Cart(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *StorageRepo) SaveCart(ctx context.Context, userID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return storage.SaveJSON(ctx, r.Store, r.Keys.Cart(userID), items)
}
