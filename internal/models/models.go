package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var (
	PricePattern    = regexp.MustCompile(`^\$\d+(\.\d{1,2})?$`)
	ImageURLPattern = regexp.MustCompile(`^https?://.+`)
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// StoredUser is the user directory record. It never leaves the auth service.
type StoredUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl"`
}

func (p Product) PriceValue() (float64, error) {
	return ParsePrice(p.Price)
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func ParsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return v, nil
}
