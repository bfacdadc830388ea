package mockapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food_marketplace/internal/middleware"
	"food_marketplace/internal/model"
	"food_marketplace/internal/utils"

	"github.com/gin-gonic/gin"
)

// Config configures the development backend
type Config struct {
	JWT                    *utils.JWTUtil
	UploadsDir             string
	OTPTTL                 time.Duration
	EchoOTP                bool // return the code in the send-otp response
	InitialAdminPhone      string
	InitialSuperAdminPhone string
	GenerateOTP            func() (string, error)
}

// API serves the backend endpoints the marketplace client talks to
type API struct {
	cfg   Config
	store *Store
	otp   *OTPIssuer
}

// NewAPI creates a new API
func NewAPI(cfg Config, store *Store) *API {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	return &API{cfg: cfg, store: store, otp: NewOTPIssuer(cfg.OTPTTL, cfg.GenerateOTP)}
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
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

func listing[T any](c *gin.Context, items []T, p model.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "pagination": p})
}

// --- Auth ---

func (a *API) SendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Phone number is required")
		return
	}

	code, err := a.otp.Issue(strings.TrimSpace(req.Phone))
	if err != nil {
		log.Printf("Error issuing OTP: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to send OTP")
		return
	}
	log.Printf("OTP for %s: %s", req.Phone, code)

	resp := gin.H{"success": true, "message": "OTP sent"}
	if a.cfg.EchoOTP {
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Phone number and code are required")
		return
	}
	phone := strings.TrimSpace(req.Phone)

	if err := a.otp.Verify(phone, strings.TrimSpace(req.Code)); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			fail(c, http.StatusTooManyRequests, "Too many attempts, request a new code")
			return
		}
		fail(c, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	user, created := a.store.FindOrCreateUser(phone, a.roleForPhone(phone))
	if created {
		log.Printf("INFO: registered %s as %s", phone, user.Role)
		if user.Role == model.RoleUser {
			seedOrdersFor(a.store, user.ID)
		}
	}
	if user.Status == model.UserStatusBlocked {
		fail(c, http.StatusForbidden, "Account is blocked")
		return
	}

	token, err := a.cfg.JWT.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		log.Printf("Error generating token for %s: %v", user.ID, err)
		fail(c, http.StatusInternalServerError, "Failed to verify OTP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (a *API) roleForPhone(phone string) model.Role {
	switch {
	case a.cfg.InitialSuperAdminPhone != "" && phone == a.cfg.InitialSuperAdminPhone:
		return model.RoleSuperAdmin
	case a.cfg.InitialAdminPhone != "" && phone == a.cfg.InitialAdminPhone:
		return model.RoleAdmin
	}
	return model.RoleUser
}

// --- Products ---

func (a *API) ListProducts(c *gin.Context) {
	items, p := a.store.ListProducts(listFilters(c))
	listing(c, items, p)
}

func productFields(c *gin.Context) (model.ProductInput, string) {
	in := model.ProductInput{
		ShopID:      strings.TrimSpace(c.PostForm("shopId")),
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
	}
	if in.Name == "" {
		return in, "Product name is required"
	}
	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil || price <= 0 {
		return in, "Price must be a positive integer"
	}
	in.Price = price
	return in, ""
}

// saveImages validates and stores every "images" file; on failure nothing new is kept
func (a *API) saveImages(c *gin.Context, productID string) ([]string, int, string) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid multipart form"
	}
	files := form.File["images"]
	for _, fh := range files {
		if err := validateImage(fh); err != nil {
			return nil, http.StatusBadRequest, err.Error()
		}
	}

	var urls []string
	for _, fh := range files {
		url, err := saveProductImage(a.cfg.UploadsDir, productID, fh)
		if err != nil {
			log.Printf("Error saving product image: %v", err)
			for _, u := range urls {
				removeUpload(a.cfg.UploadsDir, u)
			}
			return nil, http.StatusInternalServerError, "Failed to upload images"
		}
		urls = append(urls, url)
	}
	return urls, 0, ""
}

func (a *API) CreateProduct(c *gin.Context) {
	in, msg := productFields(c)
	if msg == "" && in.ShopID == "" {
		msg = "Shop is required"
	}
	if msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if !a.store.HasShop(in.ShopID) {
		fail(c, http.StatusNotFound, "Shop not found")
		return
	}

	id := a.store.NewProductID()
	images, status, msg := a.saveImages(c, id)
	if msg != "" {
		fail(c, status, msg)
		return
	}

	product, err := a.store.SaveProduct(model.Product{
		ID:          id,
		ShopID:      in.ShopID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Images:      images,
	})
	if err != nil {
		for _, u := range images {
			removeUpload(a.cfg.UploadsDir, u)
		}
		fail(c, http.StatusNotFound, "Shop not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

func (a *API) UpdateProduct(c *gin.Context) {
	existing, err := a.store.FindProduct(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	in, msg := productFields(c)
	if msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if in.ShopID == "" {
		in.ShopID = existing.ShopID
	}

	kept := existing.Images
	var dropped []string
	if raw, ok := c.GetPostForm("existingImages"); ok {
		var keep []string
		if err := json.Unmarshal([]byte(raw), &keep); err != nil {
			fail(c, http.StatusBadRequest, "existingImages must be a JSON array of URLs")
			return
		}
		kept, dropped = reconcileImages(existing.Images, keep)
	}

	added, status, msg := a.saveImages(c, existing.ID)
	if msg != "" {
		fail(c, status, msg)
		return
	}

	existing.ShopID = in.ShopID
	existing.Name = in.Name
	existing.Description = in.Description
	existing.Price = in.Price
	existing.Images = append(kept, added...)

	product, err := a.store.SaveProduct(existing)
	if err != nil {
		for _, u := range added {
			removeUpload(a.cfg.UploadsDir, u)
		}
		fail(c, http.StatusNotFound, "Shop not found")
		return
	}
	for _, u := range dropped {
		if err := removeUpload(a.cfg.UploadsDir, u); err != nil {
			log.Printf("Error removing dropped image %s: %v", u, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (a *API) DeleteProduct(c *gin.Context) {
	existing, err := a.store.FindProduct(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	if err := a.store.DeleteProduct(existing.ID); err != nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	for _, u := range existing.Images {
		removeUpload(a.cfg.UploadsDir, u)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// --- Shops ---

func (a *API) ListShops(c *gin.Context) {
	items, p := a.store.ListShops(listFilters(c))
	listing(c, items, p)
}

func (a *API) CreateShop(c *gin.Context) {
	var in model.ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": a.store.CreateShop(in)})
}

func (a *API) UpdateShop(c *gin.Context) {
	var in model.ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	shop, err := a.store.UpdateShop(c.Param("id"), in)
	if err != nil {
		fail(c, http.StatusNotFound, "Shop not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": shop})
}

func (a *API) DeleteShop(c *gin.Context) {
	removed, err := a.store.DeleteShop(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Shop not found")
		return
	}
	if len(removed) > 0 {
		log.Printf("INFO: deleted shop %s with %d products", c.Param("id"), len(removed))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shop deleted successfully"})
}

// --- Users & orders ---

func (a *API) ListUsers(c *gin.Context) {
	items, p := a.store.ListUsers(listFilters(c))
	listing(c, items, p)
}

func (a *API) ListOrders(c *gin.Context) {
	var userID string
	if role, _ := c.Get(middleware.AuthRoleKey); role == model.RoleUser {
		userID = c.GetString(middleware.AuthUserKey)
	}
	items, p := a.store.ListOrders(userID, listFilters(c))
	listing(c, items, p)
}
