package gateway

import (
	"context"
	"net/http"

	"github.com/me/linkshort/pkg/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, username, password, email string) (*Response, error) {
	return c.Do(ctx, "Register", Request{
		Method: http.MethodPost,
		Path:   "/register",
		Body:   registerRequest{Username: username, Email: email, Password: password},
	})
}

// Login exchanges credentials for a token. The returned Token may be empty
// if the gateway answered 2xx without one.
func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	resp, err := c.Do(ctx, "Login", Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	login, err := DecodeAs[model.LoginResponse]("Login", resp)
	if err != nil {
		return nil, err
	}
	return &login, nil
}

// Logout revokes the current token on the gateway.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, "Logout", Request{Method: http.MethodPost, Path: "/logout", Auth: true})
	return err
}
