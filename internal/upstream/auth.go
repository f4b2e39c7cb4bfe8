package upstream

import (
	"context"
	"net/http"

	"catalog_admin/internal/domain/models"
)

// AuthClient covers the /auth/admin endpoints.
type AuthClient struct {
	c *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (a *AuthClient) Login(ctx context.Context, email, password string) (string, models.User, error) {
	status, env, err := a.c.sendJSON(ctx, http.MethodPost, "/auth/admin/login", loginRequest{
		Email:    email,
		Password: password,
	})
	env, err = expect(status, env, err, http.StatusOK)
	if err != nil {
		return "", models.User{}, err
	}

	out, err := decodeResponse[loginResponse](env)
	if err != nil {
		return "", models.User{}, err
	}
	return out.Token, out.User, nil
}

// Me validates the stored token and returns the current admin profile.
// A 401 here means the session is expired and must be cleared.
func (a *AuthClient) Me(ctx context.Context) (models.User, error) {
	out, err := getResource[struct {
		User models.User `json:"user"`
	}](ctx, a.c, "/auth/admin/me")
	if err != nil {
		return models.User{}, err
	}
	return out.User, nil
}
