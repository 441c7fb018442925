package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/linkshort/pkg/model"
)

type createURLRequest struct {
	OriginalURL string `json:"originalUrl"`
}

type customURLRequest struct {
	OriginalURL string `json:"originalUrl"`
	CustomCode  string `json:"customCode"`
}

// ListURLs returns the signed-in user's short links.
func (c *Client) ListURLs(ctx context.Context) ([]model.ShortURL, error) {
	resp, err := c.Do(ctx, "ListURLs", Request{Method: http.MethodGet, Path: "/urls", Auth: true})
	if err != nil {
		return nil, err
	}
	return DecodeAs[[]model.ShortURL]("ListURLs", resp)
}

// CreateShortenedURL creates a short link. A non-empty customCode goes to the
// custom-alias endpoint; otherwise the gateway picks the code.
func (c *Client) CreateShortenedURL(ctx context.Context, originalURL, customCode string) (*model.ShortURL, error) {
	req := Request{Method: http.MethodPost, Path: "/urls", Body: createURLRequest{OriginalURL: originalURL}, Auth: true}
	if customCode != "" {
		req.Path = "/urls/custom"
		req.Body = customURLRequest{OriginalURL: originalURL, CustomCode: customCode}
	}

	resp, err := c.Do(ctx, "CreateShortenedURL", req)
	if err != nil {
		return nil, err
	}
	created, err := DecodeAs[model.ShortURL]("CreateShortenedURL", resp)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteURL deletes the short link with the given ID.
func (c *Client) DeleteURL(ctx context.Context, id string) error {
	_, err := c.Do(ctx, "DeleteURL", Request{Method: http.MethodDelete, Path: "/urls/" + url.PathEscape(id), Auth: true})
	return err
}

// ValidateShortCode asks the gateway about a short code. The body shape is
// gateway-defined, so the raw response is returned.
func (c *Client) ValidateShortCode(ctx context.Context, code string) (*Response, error) {
	return c.Do(ctx, "ValidateShortCode", Request{Method: http.MethodGet, Path: "/urls/validate/" + url.PathEscape(code)})
}

// RedirectToURL resolves a short code through the gateway's redirect route.
func (c *Client) RedirectToURL(ctx context.Context, code string) (*Response, error) {
	return c.Do(ctx, "RedirectToURL", Request{Method: http.MethodGet, Path: "/urls/redirect/" + url.PathEscape(code)})
}
