package api

import (
	"context"
	"net/http"

	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
)

// RequestOTP asks the backend to send a one-time code to the phone number.
// Sandbox and staging environments echo the code back for convenience.
func (c *Client) RequestOTP(ctx context.Context, phone string) (debugOTP string, err error) {
	var out struct {
		envelope
		OTP string `json:"otp"`
	}

	err = c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/user/request-otp",
		Body:   map[string]any{"phoneNumber": phone},
	}, &out)
	if err != nil {
		return "", err
	}
	if err := out.ok(); err != nil {
		return "", err
	}
	return out.OTP, nil
}

// VerifyOTPResult is the successful login payload.
type VerifyOTPResult struct {
	User  normalize.User
	Token string
}

// VerifyOTP exchanges a phone/OTP pair for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*VerifyOTPResult, error) {
	var out struct {
		envelope
		Data  normalize.User `json:"data"`
		Token string         `json:"token"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/user/verify-otp",
		Body:   map[string]any{"phoneNumber": phone, "otp": otp},
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return &VerifyOTPResult{User: out.Data, Token: out.Token}, nil
}

// FetchUser returns the profile, addresses included.
func (c *Client) FetchUser(ctx context.Context) (*normalize.User, error) {
	var out struct {
		envelope
		Data normalize.User `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/user/getUser",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateUser updates the profile name and email.
func (c *Client) UpdateUser(ctx context.Context, name, email string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPut,
		Path:   "/user/",
		Body:   map[string]any{"fullName": name, "email": email},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}
