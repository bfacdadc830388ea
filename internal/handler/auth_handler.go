package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"food_marketplace/internal/apiclient"
	"food_marketplace/internal/guard"
	"food_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the public screens and the OTP login flow
type AuthHandler struct {
	service service.AuthService
	guard   guard.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, cfg guard.Config) *AuthHandler {
	return &AuthHandler{service: s, guard: cfg}
}

func screen(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"screen": name})
	}
}

func (h *AuthHandler) OTPScreen(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"screen": "otp-verification", "phone": c.Query("phone")})
}

// SendOTP requests a code and moves on to the verification screen
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" form:"phone"`
	}
	if err := c.ShouldBind(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if _, err := h.service.SendOTP(c.Request.Context(), req.Phone); err != nil {
		if errors.Is(err, service.ErrPhoneRequired) {
			respondFailure(c, http.StatusBadRequest, "Phone number is required")
			return
		}
		respondBackendError(c, "sending OTP", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/otp-verification?phone="+url.QueryEscape(strings.TrimSpace(req.Phone)))
}

// VerifyOTP checks the code; on success the session is authenticated and the user lands on
// the screen for their role. On failure the user stays on the verification screen.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" form:"phone"`
		Code  string `json:"code" form:"code"`
	}
	if err := c.ShouldBind(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneRequired):
			respondFailure(c, http.StatusBadRequest, "Phone number is required")
		case errors.Is(err, service.ErrCodeRequired):
			respondFailure(c, http.StatusBadRequest, "Verification code is required")
		case backendStatus(err) < http.StatusInternalServerError:
			respondFailure(c, http.StatusUnauthorized, apiclient.Message(err))
		default:
			respondBackendError(c, "verifying OTP", err)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, h.guard.LandingPage(user.Role))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context())
	log.Println("INFO: user logged out")
	c.Redirect(http.StatusSeeOther, h.guard.LoginPage())
}
