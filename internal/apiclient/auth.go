package apiclient

import (
	"context"
	"net/http"

	"food_marketplace/internal/model"
)

// SendOTPResponse is the backend reply to an OTP request. Code is only echoed by development backends.
type SendOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// VerifyOTPResponse carries the credentials issued after a correct code
type VerifyOTPResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    model.UserProfile `json:"user"`
}

// SendOTP asks the backend to text a one-time code to phone
func (c *Client) SendOTP(ctx context.Context, phone string) (*SendOTPResponse, error) {
	var resp SendOTPResponse
	body := map[string]string{"phone": phone}
	if err := c.Request(ctx, "/auth/send-otp", http.MethodPost, body, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyOTP exchanges phone + code for a token and the user's profile
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*VerifyOTPResponse, error) {
	var resp VerifyOTPResponse
	body := map[string]string{"phone": phone, "code": code}
	if err := c.Request(ctx, "/auth/verify-otp", http.MethodPost, body, "", &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User.ID == "" {
		return nil, &APIError{Status: http.StatusOK, Message: GenericErrorMessage}
	}
	return &resp, nil
}
