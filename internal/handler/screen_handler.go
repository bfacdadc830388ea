package handler

import (
	"context"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"food_marketplace/internal/apiclient"
	"food_marketplace/internal/middleware"
	"food_marketplace/internal/model"
	"food_marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Backend is the part of the API client the screens call
type Backend interface {
	ListProducts(ctx context.Context, token string, f model.ListFilters) (*apiclient.Page[model.Product], error)
	CreateProduct(ctx context.Context, token string, in model.ProductInput, images []apiclient.FormFile) (*model.Product, error)
	UpdateProduct(ctx context.Context, token, id string, in model.ProductInput, keepImages []string, images []apiclient.FormFile) (*model.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
	ListShops(ctx context.Context, token string, f model.ListFilters) (*apiclient.Page[model.Shop], error)
	CreateShop(ctx context.Context, token string, in model.ShopInput) (*model.Shop, error)
	UpdateShop(ctx context.Context, token, id string, in model.ShopInput) (*model.Shop, error)
	DeleteShop(ctx context.Context, token, id string) error
	ListUsers(ctx context.Context, token string, f model.ListFilters) (*apiclient.Page[model.UserProfile], error)
	ListOrders(ctx context.Context, token string, f model.ListFilters) (*apiclient.Page[model.Order], error)
}

// ScreenHandler serves the authenticated screens
type ScreenHandler struct {
	backend Backend
	auth    service.AuthService
}

// NewScreenHandler creates a new ScreenHandler
func NewScreenHandler(b Backend, auth service.AuthService) *ScreenHandler {
	return &ScreenHandler{backend: b, auth: auth}
}

type orderView struct {
	model.Order
	StatusText string `json:"statusText"`
}

func listFilters(c *gin.Context) model.ListFilters {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return model.ListFilters{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Status: c.Query("status"),
		Role:   c.Query("role"),
		ShopID: c.Query("shopId"),
	}
}

// token returns the bearer token of the session the route guard admitted
func token(c *gin.Context) string {
	s, _ := middleware.SessionFromContext(c)
	return s.Token
}

// backendFailed answers a failed backend call. A rejected token ends the session,
// so the route guard sends the user back to the login screen.
func (h *ScreenHandler) backendFailed(c *gin.Context, action string, err error) {
	if backendStatus(err) == http.StatusUnauthorized {
		log.Printf("WARN: backend rejected the session token while %s, logging out", action)
		h.auth.Logout(c.Request.Context())
	}
	respondBackendError(c, action, err)
}

func (h *ScreenHandler) Home(c *gin.Context) {
	s, _ := middleware.SessionFromContext(c)
	c.JSON(http.StatusOK, gin.H{"screen": "home", "role": s.Role()})
}

// Category lists shops; with ?shopId= it also lists that shop's products
func (h *ScreenHandler) Category(c *gin.Context) {
	f := listFilters(c)
	shopFilters := f
	shopFilters.ShopID = ""

	shops, err := h.backend.ListShops(c.Request.Context(), token(c), shopFilters)
	if err != nil {
		h.backendFailed(c, "listing shops", err)
		return
	}

	resp := gin.H{"screen": "category", "shops": shops.Items, "pagination": shops.Pagination}
	if f.ShopID != "" {
		products, err := h.backend.ListProducts(c.Request.Context(), token(c), model.ListFilters{ShopID: f.ShopID, Search: f.Search})
		if err != nil {
			h.backendFailed(c, "listing products", err)
			return
		}
		resp["products"] = products.Items
	}
	c.JSON(http.StatusOK, resp)
}

// Orders lists the viewer's orders with status labels for their role
func (h *ScreenHandler) Orders(c *gin.Context) {
	s, _ := middleware.SessionFromContext(c)
	page, err := h.backend.ListOrders(c.Request.Context(), s.Token, listFilters(c))
	if err != nil {
		h.backendFailed(c, "listing orders", err)
		return
	}

	views := make([]orderView, 0, len(page.Items))
	for _, o := range page.Items {
		views = append(views, orderView{Order: o, StatusText: model.StatusText(o.Status, s.Role())})
	}
	c.JSON(http.StatusOK, gin.H{"screen": "orders", "orders": views, "pagination": page.Pagination})
}

// --- Admin ---

func (h *ScreenHandler) AdminDashboard(c *gin.Context) {
	page, err := h.backend.ListProducts(c.Request.Context(), token(c), listFilters(c))
	if err != nil {
		h.backendFailed(c, "listing products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": "admin-dashboard", "products": page.Items, "pagination": page.Pagination})
}

// productForm reads the product fields and opens the uploaded images. The caller closes the files.
func productForm(c *gin.Context) (model.ProductInput, []apiclient.FormFile, []multipart.File, string) {
	in := model.ProductInput{
		ShopID:      strings.TrimSpace(c.PostForm("shopId")),
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
	}
	price, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("price")), 10, 64)
	if err != nil {
		return in, nil, nil, "Price must be a whole number"
	}
	in.Price = price

	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, nil, ""
	}
	var images []apiclient.FormFile
	var opened []multipart.File
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			closeAll(opened)
			return in, nil, nil, "Failed to read uploaded image"
		}
		opened = append(opened, f)
		images = append(images, apiclient.FormFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return in, images, opened, ""
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}

func (h *ScreenHandler) CreateProduct(c *gin.Context) {
	in, images, opened, msg := productForm(c)
	defer closeAll(opened)
	if msg != "" {
		respondFailure(c, http.StatusBadRequest, msg)
		return
	}

	product, err := h.backend.CreateProduct(c.Request.Context(), token(c), in, images)
	if err != nil {
		h.backendFailed(c, "creating product", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

// UpdateProduct forwards the edit form. existingImages is the JSON array of image URLs
// still shown in the form; images missing from it are dropped.
func (h *ScreenHandler) UpdateProduct(c *gin.Context) {
	in, images, opened, msg := productForm(c)
	defer closeAll(opened)
	if msg != "" {
		respondFailure(c, http.StatusBadRequest, msg)
		return
	}

	keep := []string{}
	if raw := strings.TrimSpace(c.PostForm("existingImages")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keep); err != nil {
			respondFailure(c, http.StatusBadRequest, "existingImages must be a JSON array of URLs")
			return
		}
	}

	product, err := h.backend.UpdateProduct(c.Request.Context(), token(c), c.Param("id"), in, keep, images)
	if err != nil {
		h.backendFailed(c, "updating product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (h *ScreenHandler) DeleteProduct(c *gin.Context) {
	if err := h.backend.DeleteProduct(c.Request.Context(), token(c), c.Param("id")); err != nil {
		h.backendFailed(c, "deleting product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// --- Superadmin ---

// SuperAdminDashboard loads the user listing (filtered by the query) and the first page of shops together
func (h *ScreenHandler) SuperAdminDashboard(c *gin.Context) {
	var (
		users *apiclient.Page[model.UserProfile]
		shops *apiclient.Page[model.Shop]
	)
	tok, f := token(c), listFilters(c)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		users, err = h.backend.ListUsers(ctx, tok, f)
		return err
	})
	g.Go(func() error {
		var err error
		shops, err = h.backend.ListShops(ctx, tok, model.ListFilters{Page: 1})
		return err
	})
	if err := g.Wait(); err != nil {
		h.backendFailed(c, "loading superadmin dashboard", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"screen": "superadmin-dashboard",
		"users":  gin.H{"items": users.Items, "pagination": users.Pagination},
		"shops":  gin.H{"items": shops.Items, "pagination": shops.Pagination},
	})
}

func (h *ScreenHandler) CreateShop(c *gin.Context) {
	var in model.ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	shop, err := h.backend.CreateShop(c.Request.Context(), token(c), in)
	if err != nil {
		h.backendFailed(c, "creating shop", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": shop})
}

func (h *ScreenHandler) UpdateShop(c *gin.Context) {
	var in model.ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	shop, err := h.backend.UpdateShop(c.Request.Context(), token(c), c.Param("id"), in)
	if err != nil {
		h.backendFailed(c, "updating shop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": shop})
}

func (h *ScreenHandler) DeleteShop(c *gin.Context) {
	if err := h.backend.DeleteShop(c.Request.Context(), token(c), c.Param("id")); err != nil {
		h.backendFailed(c, "deleting shop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shop deleted successfully"})
}
