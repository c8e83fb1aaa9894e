package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tiptravel/tip-web/internal/domain"
)

// Login exchanges credentials for a token pair.
func (cl *Client) Login(ctx context.Context, email, password, deviceID string) (*domain.TokenPair, error) {
	data, err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		language: DefaultLanguage,
		body: map[string]string{
			"email":     email,
			"password":  password,
			"device_id": deviceID,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeTokens(data, "login")
}

// Register creates an account using an emailed verification code.
func (cl *Client) Register(ctx context.Context, email, password, deviceID, code string) (*domain.TokenPair, error) {
	data, err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		language: DefaultLanguage,
		body: map[string]string{
			"email":             email,
			"password":          password,
			"device_id":         deviceID,
			"verification_code": code,
			"code_type":         domain.CodeTypeRegister,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeTokens(data, "register")
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (cl *Client) Refresh(ctx context.Context, refreshToken, deviceID string) (string, error) {
	data, err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/refresh",
		language: DefaultLanguage,
		body: map[string]string{
			"refresh_token": refreshToken,
			"device_id":     deviceID,
		},
	})
	if err != nil {
		return "", err
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := decode(data, &out, "refresh"); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("backend: refresh response has no access token")
	}
	return out.AccessToken, nil
}

// Me returns the identity behind accessToken.
func (cl *Client) Me(ctx context.Context, accessToken string) (*domain.User, error) {
	data, err := cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/auth/me",
		token:    accessToken,
		language: DefaultLanguage,
	})
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := decode(data, &u, "me"); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes accessToken on the backend.
func (cl *Client) Logout(ctx context.Context, accessToken string) error {
	_, err := cl.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/logout",
		token:  accessToken,
	})
	return err
}

// SendVerificationCode emails a one-time code for codeType.
func (cl *Client) SendVerificationCode(ctx context.Context, email, codeType string) error {
	_, err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/send-verification",
		language: DefaultLanguage,
		body:     map[string]string{"email": email, "code_type": codeType},
	})
	return err
}

// ResetPassword sets a new password using a forgot-password code.
func (cl *Client) ResetPassword(ctx context.Context, email, code, password, deviceID string) error {
	_, err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/reset-password",
		language: DefaultLanguage,
		body: map[string]string{
			"email":             email,
			"verification_code": code,
			"password":          password,
			"device_id":         deviceID,
		},
	})
	return err
}

func decodeTokens(data []byte, what string) (*domain.TokenPair, error) {
	var tp domain.TokenPair
	if err := decode(data, &tp, what); err != nil {
		return nil, err
	}
	if tp.AccessToken == "" || tp.RefreshToken == "" {
		return nil, fmt.Errorf("backend: %s response is missing tokens", what)
	}
	return &tp, nil
}
