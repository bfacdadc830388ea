package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"food_marketplace/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrShopNotFound   = errors.New("shop not found")
	ErrAccountBlocked = errors.New("account is blocked")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Store is the in-memory data behind the development backend
type Store struct {
	mu       sync.RWMutex
	users    map[string]*model.UserProfile
	phones   map[string]string // phone -> user id
	created  map[string]time.Time
	shops    map[string]*model.Shop
	products map[string]*model.Product
	orders   map[string]*model.Order
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*model.UserProfile),
		phones:   make(map[string]string),
		created:  make(map[string]time.Time),
		shops:    make(map[string]*model.Shop),
		products: make(map[string]*model.Product),
		orders:   make(map[string]*model.Order),
		now:      time.Now,
	}
}

// --- Users ---

// FindOrCreateUser returns the account for phone, creating it with role on first sight
func (s *Store) FindOrCreateUser(phone string, role model.Role) (model.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.phones[phone]; ok {
		return *s.users[id], false
	}
	u := &model.UserProfile{
		ID:     uuid.NewString(),
		Role:   role,
		Phone:  phone,
		Status: model.UserStatusActive,
	}
	s.users[u.ID] = u
	s.phones[phone] = u.ID
	s.created[u.ID] = s.now()
	return *u, true
}

// PutUser inserts or replaces a user
func (s *Store) PutUser(u model.UserProfile) model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = model.UserStatusActive
	}
	if _, ok := s.created[u.ID]; !ok {
		s.created[u.ID] = s.now()
	}
	s.users[u.ID] = &u
	if u.Phone != "" {
		s.phones[u.Phone] = u.ID
	}
	return u
}

// ListUsers filters by search (name, phone, email), role and status; newest first
func (s *Store) ListUsers(f model.ListFilters) ([]model.UserProfile, model.Pagination) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	role, _ := model.ParseRole(f.Role)
	var out []model.UserProfile
	for _, u := range s.users {
		if f.Role != "" && u.Role != role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if search != "" && !containsAny(search, u.FullName(), u.Phone, u.Email) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := s.created[out[i].ID], s.created[out[j].ID]
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f)
}

// --- Shops ---

// CreateShop adds a shop; status defaults to pending
func (s *Store) CreateShop(in model.ShopInput) model.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop := &model.Shop{ID: uuid.NewString(), CreatedAt: s.now()}
	applyShop(shop, in)
	s.shops[shop.ID] = shop
	return *shop
}

// UpdateShop replaces the writable fields of a shop
func (s *Store) UpdateShop(id string, in model.ShopInput) (model.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return model.Shop{}, ErrShopNotFound
	}
	applyShop(shop, in)
	return *shop, nil
}

func applyShop(shop *model.Shop, in model.ShopInput) {
	shop.Name = in.Name
	shop.Address = in.Address
	shop.Phone = in.Phone
	shop.Description = in.Description
	shop.OwnerID = in.OwnerID
	shop.Status = in.Status
	if shop.Status == "" {
		shop.Status = model.ShopStatusPending
	}
}

// DeleteShop removes a shop together with its products and returns the removed product IDs
func (s *Store) DeleteShop(id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[id]; !ok {
		return nil, ErrShopNotFound
	}
	delete(s.shops, id)
	var removed []string
	for pid, p := range s.products {
		if p.ShopID == id {
			delete(s.products, pid)
			removed = append(removed, pid)
		}
	}
	return removed, nil
}

// HasShop reports whether a shop exists
func (s *Store) HasShop(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.shops[id]
	return ok
}

// ListShops filters by search (name, address) and status; newest first
func (s *Store) ListShops(f model.ListFilters) ([]model.Shop, model.Pagination) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []model.Shop
	for _, shop := range s.shops {
		if f.Status != "" && shop.Status != f.Status {
			continue
		}
		if search != "" && !containsAny(search, shop.Name, shop.Address) {
			continue
		}
		out = append(out, *shop)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f)
}

// --- Products ---

// NewProductID reserves an ID so uploads can be stored before the product is saved
func (s *Store) NewProductID() string {
	return uuid.NewString()
}

// SaveProduct inserts or replaces a product
func (s *Store) SaveProduct(p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[p.ShopID]; !ok {
		return model.Product{}, ErrShopNotFound
	}
	now := s.now()
	if existing, ok := s.products[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	s.products[p.ID] = &p
	return p, nil
}

// FindProduct returns a product by ID
func (s *Store) FindProduct(id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return cp, nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// ListProducts filters by shop and search (name, description); newest first
func (s *Store) ListProducts(f model.ListFilters) ([]model.Product, model.Pagination) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []model.Product
	for _, p := range s.products {
		if f.ShopID != "" && p.ShopID != f.ShopID {
			continue
		}
		if search != "" && !containsAny(search, p.Name, p.Description) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f)
}

// --- Orders ---

// PutOrder inserts or replaces an order
func (s *Store) PutOrder(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	o.Total = total
	s.orders[o.ID] = &o
	return o
}

// ListOrders returns orders, limited to one customer when userID is set; newest first
func (s *Store) ListOrders(userID string, f model.ListFilters) ([]model.Order, model.Pagination) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	for _, o := range s.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		if f.ShopID != "" && o.ShopID != f.ShopID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f)
}

func paginate[T any](items []T, f model.ListFilters) ([]T, model.Pagination) {
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]T, 0, end-start)
	out = append(out, items[start:end]...)
	return out, model.NewPagination(page, limit, total)
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
