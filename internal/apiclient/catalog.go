package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"food_marketplace/internal/model"
)

// Page is one page of a listing. The backend names the item array either "data" or "items".
type Page[T any] struct {
	Items      []T
	Pagination model.Pagination
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data       []T              `json:"data"`
		Items      []T              `json:"items"`
		Pagination model.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Items = raw.Data
	if p.Items == nil {
		p.Items = raw.Items
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	p.Pagination = raw.Pagination
	return nil
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func listQuery(f model.ListFilters) string {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.ShopID != "" {
		q.Set("shopId", f.ShopID)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func list[T any](ctx context.Context, c *Client, path, token string, f model.ListFilters) (*Page[T], error) {
	var page Page[T]
	if err := c.Request(ctx, path+listQuery(f), http.MethodGet, nil, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// --- Products ---

// ListProducts returns a page of products, optionally for one shop
func (c *Client) ListProducts(ctx context.Context, token string, f model.ListFilters) (*Page[model.Product], error) {
	return list[model.Product](ctx, c, "/products", token, f)
}

func productForm(in model.ProductInput, images []FormFile) *Form {
	form := &Form{}
	form.Add("name", in.Name).
		Add("description", in.Description).
		Add("price", strconv.FormatInt(in.Price, 10))
	if in.ShopID != "" {
		form.Add("shopId", in.ShopID)
	}
	for _, img := range images {
		img.Field = "images"
		form.AddFile(img)
	}
	return form
}

// CreateProduct uploads a new product with its images
func (c *Client) CreateProduct(ctx context.Context, token string, in model.ProductInput, images []FormFile) (*model.Product, error) {
	var resp envelope[model.Product]
	if err := c.RequestMultipart(ctx, "/products", http.MethodPost, productForm(in, images), token, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProduct replaces a product's fields. keepImages lists the already-uploaded image URLs to
// retain; any existing image not listed is dropped, and images are appended as new uploads.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, in model.ProductInput, keepImages []string, images []FormFile) (*model.Product, error) {
	if keepImages == nil {
		keepImages = []string{}
	}
	keep, err := json.Marshal(keepImages)
	if err != nil {
		return nil, err
	}
	form := productForm(in, images)
	form.Add("existingImages", string(keep))

	var resp envelope[model.Product]
	if err := c.RequestMultipart(ctx, "/products/"+url.PathEscape(id), http.MethodPut, form, token, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.Request(ctx, "/products/"+url.PathEscape(id), http.MethodDelete, nil, token, nil)
}

// --- Shops ---

// ListShops returns a page of shops filtered by search and status
func (c *Client) ListShops(ctx context.Context, token string, f model.ListFilters) (*Page[model.Shop], error) {
	return list[model.Shop](ctx, c, "/shops", token, f)
}

// CreateShop registers a shop
func (c *Client) CreateShop(ctx context.Context, token string, in model.ShopInput) (*model.Shop, error) {
	var resp envelope[model.Shop]
	if err := c.Request(ctx, "/shops", http.MethodPost, in, token, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateShop replaces a shop's fields
func (c *Client) UpdateShop(ctx context.Context, token, id string, in model.ShopInput) (*model.Shop, error) {
	var resp envelope[model.Shop]
	if err := c.Request(ctx, "/shops/"+url.PathEscape(id), http.MethodPut, in, token, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteShop removes a shop
func (c *Client) DeleteShop(ctx context.Context, token, id string) error {
	return c.Request(ctx, "/shops/"+url.PathEscape(id), http.MethodDelete, nil, token, nil)
}

// --- Users & orders ---

// ListUsers returns a page of user accounts filtered by search, role and status
func (c *Client) ListUsers(ctx context.Context, token string, f model.ListFilters) (*Page[model.UserProfile], error) {
	return list[model.UserProfile](ctx, c, "/users", token, f)
}

// ListOrders returns a page of orders visible to the token's owner
func (c *Client) ListOrders(ctx context.Context, token string, f model.ListFilters) (*Page[model.Order], error) {
	return list[model.Order](ctx, c, "/orders", token, f)
}
