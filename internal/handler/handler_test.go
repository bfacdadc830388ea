package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"food_marketplace/internal/apiclient"
	"food_marketplace/internal/guard"
	"food_marketplace/internal/mockapi"
	"food_marketplace/internal/model"
	"food_marketplace/internal/repository"
	"food_marketplace/internal/service"
	"food_marketplace/internal/session"
	"food_marketplace/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixedCode       = "123456"
	adminPhone      = "+15550000001"
	superAdminPhone = "+15550000002"
	customerPhone   = "+15550000003"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type shell struct {
	router   *gin.Engine
	sessions *session.Store
}

func newShell(t *testing.T, baseURL string) *shell {
	t.Helper()
	sessions := session.NewStore(repository.NewMemoryKVRepository(), session.WithLogger(log.New(io.Discard, "", 0)))
	<-sessions.Ready()

	client := apiclient.New(baseURL, 5*time.Second)
	auth := service.NewAuthService(client, sessions)
	cfg := guard.DefaultConfig()

	router := gin.New()
	RegisterRoutes(router, sessions, cfg, NewAuthHandler(auth, cfg), NewScreenHandler(client, auth))
	return &shell{router: router, sessions: sessions}
}

// newShellWithBackend runs the shell against a seeded development backend
func newShellWithBackend(t *testing.T) *shell {
	t.Helper()
	store := mockapi.NewStore()
	mockapi.Seed(store)
	api := mockapi.NewAPI(mockapi.Config{
		JWT:                    utils.NewJWTUtil("test-secret", "marketplace", 1),
		UploadsDir:             t.TempDir(),
		InitialAdminPhone:      adminPhone,
		InitialSuperAdminPhone: superAdminPhone,
		GenerateOTP:            func() (string, error) { return fixedCode, nil },
	}, store)
	backend := httptest.NewServer(mockapi.NewRouter(api))
	t.Cleanup(backend.Close)
	return newShell(t, backend.URL+"/api/v1")
}

func (s *shell) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *shell) get(target string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, target, nil, "")
}

func (s *shell) postJSON(method, target string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	return s.do(method, target, bytes.NewReader(raw), "application/json")
}

func (s *shell) login(t *testing.T, phone string) {
	t.Helper()
	w := s.postJSON(http.MethodPost, "/login", gin.H{"phone": phone})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	w = s.postJSON(http.MethodPost, "/otp-verification", gin.H{"phone": phone, "code": fixedCode})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func productUpload(t *testing.T, fields map[string]string, files ...string) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("image:" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestShell_CustomerLoginFlow(t *testing.T) {
	s := newShellWithBackend(t)

	w := s.get("/category")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = s.get("/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screen":"login"}`, w.Body.String())

	w = s.postJSON(http.MethodPost, "/login", gin.H{"phone": " " + customerPhone})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/otp-verification?phone="+url.QueryEscape(customerPhone), w.Header().Get("Location"))

	w = s.get(w.Header().Get("Location"))
	assert.JSONEq(t, `{"screen":"otp-verification","phone":"`+customerPhone+`"}`, w.Body.String())

	w = s.postJSON(http.MethodPost, "/otp-verification", gin.H{"phone": customerPhone, "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid or expired code"}`, w.Body.String())
	assert.False(t, s.sessions.Snapshot().IsAuthenticated())

	w = s.postJSON(http.MethodPost, "/otp-verification", gin.H{"phone": customerPhone, "code": fixedCode})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/category", w.Header().Get("Location"))
	assert.Equal(t, model.RoleUser, s.sessions.Snapshot().Role())

	w = s.get("/category")
	require.Equal(t, http.StatusOK, w.Code)
	var category struct {
		Shops      []model.Shop     `json:"shops"`
		Pagination model.Pagination `json:"pagination"`
	}
	decode(t, w, &category)
	assert.Len(t, category.Shops, 3)
	assert.Equal(t, 3, category.Pagination.Total)

	w = s.get("/login")
	assert.Equal(t, http.StatusFound, w.Code, "public screens send authenticated users home")
	assert.Equal(t, "/category", w.Header().Get("Location"))

	w = s.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/category", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = s.get("/category")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestShell_CategoryWithShopProducts(t *testing.T) {
	s := newShellWithBackend(t)
	s.login(t, customerPhone)

	var category struct {
		Shops    []model.Shop    `json:"shops"`
		Products []model.Product `json:"products"`
	}
	decode(t, s.get("/category"), &category)
	require.NotEmpty(t, category.Shops)
	assert.Nil(t, category.Products)

	var shopID string
	for _, shop := range category.Shops {
		if shop.Name == "Napoli Pizza" {
			shopID = shop.ID
		}
	}
	require.NotEmpty(t, shopID)
	decode(t, s.get("/category?shopId="+shopID), &category)
	require.Len(t, category.Products, 2)
	for _, p := range category.Products {
		assert.Equal(t, shopID, p.ShopID)
	}
}

func TestShell_OrdersCarryRoleLabels(t *testing.T) {
	s := newShellWithBackend(t)
	s.login(t, customerPhone)

	w := s.get("/orders")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Orders []struct {
			Status     model.OrderStatus `json:"status"`
			StatusText string            `json:"statusText"`
		} `json:"orders"`
	}
	decode(t, w, &body)
	require.Len(t, body.Orders, 2)
	for _, o := range body.Orders {
		assert.Equal(t, model.StatusText(o.Status, model.RoleUser), o.StatusText)
		assert.NotEqual(t, "Unknown", o.StatusText)
	}
}

func TestShell_AdminManagesProducts(t *testing.T) {
	s := newShellWithBackend(t)
	s.login(t, adminPhone)

	w := s.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		Products []model.Product `json:"products"`
	}
	decode(t, w, &dashboard)
	require.Len(t, dashboard.Products, 4)
	shopID := dashboard.Products[0].ShopID

	body, contentType := productUpload(t, map[string]string{"shopId": shopID, "name": "Calzone", "price": "1200"}, "calzone.png")
	w = s.do(http.MethodPost, "/admin/products", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data model.Product `json:"data"`
	}
	decode(t, w, &created)
	require.Len(t, created.Data.Images, 1)
	assert.True(t, strings.HasSuffix(created.Data.Images[0], "/calzone.png"))

	body, contentType = productUpload(t, map[string]string{"name": "Calzone XL", "price": "1500", "existingImages": "[]"}, "xl.webp")
	w = s.do(http.MethodPut, "/admin/products/"+created.Data.ID, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Data model.Product `json:"data"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "Calzone XL", updated.Data.Name)
	require.Len(t, updated.Data.Images, 1)
	assert.True(t, strings.HasSuffix(updated.Data.Images[0], "/xl.webp"))

	body, contentType = productUpload(t, map[string]string{"name": "Calzone", "price": "cheap"})
	w = s.do(http.MethodPut, "/admin/products/"+created.Data.ID, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType = productUpload(t, map[string]string{"shopId": shopID, "name": "Gif", "price": "100"}, "anim.gif")
	w = s.do(http.MethodPost, "/admin/products", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+mockapi.ErrInvalidFileFormat.Error()+`"}`, w.Body.String())

	w = s.do(http.MethodDelete, "/admin/products/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/admin/products/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.get("/superadmin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestShell_SuperAdminManagesShops(t *testing.T) {
	s := newShellWithBackend(t)
	s.login(t, customerPhone)
	s.do(http.MethodPost, "/logout", nil, "")
	s.login(t, superAdminPhone)

	w := s.get("/superadmin/dashboard?role=user")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard struct {
		Users struct {
			Items      []model.UserProfile `json:"items"`
			Pagination model.Pagination    `json:"pagination"`
		} `json:"users"`
		Shops struct {
			Pagination model.Pagination `json:"pagination"`
		} `json:"shops"`
	}
	decode(t, w, &dashboard)
	require.Len(t, dashboard.Users.Items, 1)
	assert.Equal(t, customerPhone, dashboard.Users.Items[0].Phone)
	assert.Equal(t, 3, dashboard.Shops.Pagination.Total)

	w = s.postJSON(http.MethodPost, "/superadmin/shops", model.ShopInput{Name: "Taco Stand", Status: model.ShopStatusActive})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data model.Shop `json:"data"`
	}
	decode(t, w, &created)

	w = s.postJSON(http.MethodPut, "/superadmin/shops/"+created.Data.ID, model.ShopInput{Name: "Taco Truck", Status: model.ShopStatusInactive})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.postJSON(http.MethodPost, "/superadmin/shops", gin.H{"address": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/superadmin/shops/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/superadmin/shops/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Shop not found"}`, w.Body.String())
}

func TestShell_RejectedTokenLogsOut(t *testing.T) {
	s := newShellWithBackend(t)
	require.NoError(t, s.sessions.Login(context.Background(), "forged-token", model.UserProfile{ID: "u1", Role: model.RoleUser}))

	w := s.get("/category")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token"}`, w.Body.String())
	assert.False(t, s.sessions.Snapshot().IsAuthenticated())

	w = s.get("/category")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestShell_UnknownRoleLandsOnFallback(t *testing.T) {
	s := newShellWithBackend(t)
	require.NoError(t, s.sessions.Login(context.Background(), "tok", model.UserProfile{ID: "u1", Role: "COURIER"}))

	w := s.get("/login")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = s.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screen":"home","role":"COURIER"}`, w.Body.String())
}

func TestShell_BackendUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	s := newShell(t, dead.URL+"/api/v1")

	w := s.postJSON(http.MethodPost, "/login", gin.H{"phone": customerPhone})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+apiclient.NetworkErrorMessage+`"}`, w.Body.String())

	w = s.postJSON(http.MethodPost, "/login", gin.H{"phone": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postJSON(http.MethodPost, "/otp-verification", gin.H{"phone": customerPhone})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Verification code is required"}`, w.Body.String())
}

func TestShell_FormEncodedLogin(t *testing.T) {
	s := newShellWithBackend(t)
	form := url.Values{"phone": {customerPhone}}
	w := s.do(http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSessionView(t *testing.T) {
	s := newShellWithBackend(t)

	w := s.get("/session")
	assert.JSONEq(t, `{"loading":false,"authenticated":false,"role":"","user":null}`, w.Body.String())

	s.login(t, adminPhone)
	var view struct {
		Authenticated bool               `json:"authenticated"`
		Role          model.Role         `json:"role"`
		User          *model.UserProfile `json:"user"`
	}
	decode(t, s.get("/session"), &view)
	assert.True(t, view.Authenticated)
	assert.Equal(t, model.RoleAdmin, view.Role)
	require.NotNil(t, view.User)
	assert.Equal(t, adminPhone, view.User.Phone)
}

func TestShell_LoadingScreenBeforeSessionIsReady(t *testing.T) {
	gate := make(chan struct{})
	sessions := session.NewStore(&gatedKV{MemoryKVRepository: repository.NewMemoryKVRepository(), gate: gate},
		session.WithLogger(log.New(io.Discard, "", 0)))
	router := gin.New()
	cfg := guard.DefaultConfig()
	auth := service.NewAuthService(apiclient.New("http://127.0.0.1:1", time.Second), sessions)
	RegisterRoutes(router, sessions, cfg, NewAuthHandler(auth, cfg), NewScreenHandler(apiclient.New("http://127.0.0.1:1", time.Second), auth))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screen":"loading"}`, w.Body.String())

	close(gate)
	<-sessions.Ready()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}

type gatedKV struct {
	*repository.MemoryKVRepository
	gate chan struct{}
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, bool, error) {
	<-g.gate
	return g.MemoryKVRepository.Get(ctx, key)
}
