package transport

import "github.com/Skotchmaster/sole_searcher/internal/models"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	User *models.User `json:"user"`
}

type ProductRequest struct {
	Name     string `json:"name" validate:"required"`
	Price    string `json:"price" validate:"required,price"`
	ImageURL string `json:"imageUrl" validate:"required,httpurl"`
}

type PageMeta struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

type ProductListResponse struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type CartResponse struct {
	Items      []models.CartItem `json:"items"`
	Count      int               `json:"count"`
	TotalPrice float64           `json:"total_price"`
}
