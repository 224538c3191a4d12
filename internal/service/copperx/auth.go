package copperx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CopperxBot/entity"
	"CopperxBot/internal/lib/validate"
)

func (c *Client) RequestOtp(ctx context.Context, email string) (*entity.OtpChallenge, error) {
	var out entity.OtpChallenge
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/email-otp/request",
		body:   map[string]string{"email": email},
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(out); err != nil {
		return nil, fmt.Errorf("otp challenge: %w", err)
	}
	return &out, nil
}

type authResponse struct {
	AccessToken string             `json:"accessToken" validate:"required"`
	ExpireAt    time.Time          `json:"expireAt"`
	User        entity.UserProfile `json:"user"`
}

// VerifyOtp exchanges the code for an access token. A rejected code is
// reported as entity.ErrInvalidOtp.
func (c *Client) VerifyOtp(ctx context.Context, email, otp, sid string) (*entity.AuthResult, error) {
	var out authResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/email-otp/authenticate",
		body: map[string]string{
			"email": email,
			"otp":   otp,
			"sid":   sid,
		},
	}, &out)
	var apiErr *APIError
	if errors.Is(err, entity.ErrUnauthorized) || (errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest) {
		return nil, entity.ErrInvalidOtp
	}
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(out); err != nil {
		return nil, fmt.Errorf("auth response: %w", err)
	}
	result := &entity.AuthResult{
		AccessToken: out.AccessToken,
		User:        out.User,
	}
	if !out.ExpireAt.IsZero() {
		result.ExpireAt = out.ExpireAt.Unix()
	}
	return result, nil
}

// CheckToken reports whether the API still accepts token.
func (c *Client) CheckToken(ctx context.Context, token string) (bool, error) {
	_, err := c.Me(ctx, token)
	if errors.Is(err, entity.ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Me(ctx context.Context, token string) (*entity.UserProfile, error) {
	var out entity.UserProfile
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/auth/me",
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
