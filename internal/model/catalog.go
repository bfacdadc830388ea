package model

import "time"

const (
	ShopStatusActive   = "active"
	ShopStatusPending  = "pending"
	ShopStatusInactive = "inactive"
)

// Shop is a restaurant or store listed in the marketplace
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShopInput is the writable part of a shop
type ShopInput struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
	Status      string `json:"status" binding:"omitempty,oneof=active pending inactive"`
}

// Product is an item a shop sells. Price is in the smallest currency unit.
type Product struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput is the non-file part of a product create/update form
type ProductInput struct {
	ShopID      string
	Name        string
	Description string
	Price       int64
}

// Pagination is the paging block of every listing response
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total items at the given limit
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ListFilters are the query parameters shared by the paginated listings
type ListFilters struct {
	Page   int
	Limit  int
	Search string
	Status string
	Role   string
	ShopID string
}
