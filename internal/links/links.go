// Package links manages the signed-in user's short links: listing,
// creating, deleting, checking and resolving codes.
package links

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/me/linkshort/internal/validate"
	"github.com/me/linkshort/pkg/gateway"
	"github.com/me/linkshort/pkg/model"
)

// API is the part of the gateway client the service uses.
type API interface {
	ListURLs(ctx context.Context) ([]model.ShortURL, error)
	CreateShortenedURL(ctx context.Context, originalURL, customCode string) (*model.ShortURL, error)
	DeleteURL(ctx context.Context, id string) error
	ValidateShortCode(ctx context.Context, code string) (*gateway.Response, error)
	RedirectToURL(ctx context.Context, code string) (*gateway.Response, error)
}

// Service holds the most recently fetched list of links. Concurrent
// refreshes are last-write-wins.
type Service struct {
	api         API
	shortDomain string
	logger      *slog.Logger

	mu    sync.RWMutex
	links []model.ShortURL
}

// NewService creates a links service. shortDomain is the prefix share URLs
// are built from.
func NewService(api API, shortDomain string, logger *slog.Logger) *Service {
	return &Service{
		api:         api,
		shortDomain: strings.TrimRight(shortDomain, "/"),
		logger:      logger.With("component", "links"),
	}
}

// Links returns a copy of the cached list.
func (s *Service) Links() []model.ShortURL {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ShortURL, len(s.links))
	copy(out, s.links)
	return out
}

// Refresh replaces the cached list with the gateway's.
func (s *Service) Refresh(ctx context.Context) ([]model.ShortURL, error) {
	list, err := s.api.ListURLs(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.ShortURL{}
	}

	s.mu.Lock()
	s.links = list
	s.mu.Unlock()

	s.logger.Debug("links refreshed", "count", len(list))
	return s.Links(), nil
}

// Shorten creates a short link for originalURL, using alias as the code when
// given. The new link is put at the front of the cached list.
func (s *Service) Shorten(ctx context.Context, originalURL, alias string) (model.ShortURL, error) {
	originalURL = strings.TrimSpace(originalURL)
	alias = strings.TrimSpace(alias)
	if err := validate.Struct("Shorten", validate.Shorten{OriginalURL: originalURL, CustomCode: alias}); err != nil {
		return model.ShortURL{}, err
	}

	created, err := s.api.CreateShortenedURL(ctx, originalURL, alias)
	if err != nil {
		return model.ShortURL{}, err
	}

	link := model.ShortURL{}
	if created != nil {
		link = *created
	}
	if link.OriginalURL == "" {
		link.OriginalURL = originalURL
	}
	if link.ShortCode == "" {
		link.ShortCode = alias
	}

	s.mu.Lock()
	s.links = append([]model.ShortURL{link}, s.links...)
	s.mu.Unlock()

	s.logger.Info("link created", "code", link.ShortCode, "custom", alias != "")
	return link, nil
}

// Delete removes the link with the given ID on the gateway and from the
// cached list.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.NewValidationError("Delete", "ID is required")
	}
	if err := s.api.DeleteURL(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.links[:0:0]
	for _, l := range s.links {
		if string(l.ID) != id {
			kept = append(kept, l)
		}
	}
	s.links = kept
	s.mu.Unlock()

	s.logger.Info("link deleted", "id", id)
	return nil
}

// Check reports whether a short code is taken. A 404 from the gateway means
// it is free.
func (s *Service) Check(ctx context.Context, code string) (model.CodeCheck, error) {
	code = strings.TrimSpace(code)
	if err := validate.Struct("Check", validate.Code{ShortCode: code}); err != nil {
		return model.CodeCheck{}, err
	}

	resp, err := s.api.ValidateShortCode(ctx, code)
	if err != nil {
		if model.StatusOf(err) == http.StatusNotFound {
			return model.CodeCheck{ShortCode: code, Exists: false}, nil
		}
		return model.CodeCheck{}, err
	}
	return model.CodeCheck{ShortCode: code, Exists: existsFrom(resp.Value())}, nil
}

// existsFrom interprets the validate endpoint's body, which is either a bare
// boolean or an object carrying one.
func existsFrom(v any) bool {
	switch body := v.(type) {
	case bool:
		return body
	case map[string]any:
		for _, key := range []string{"exists", "valid", "isValid"} {
			if b, ok := body[key].(bool); ok {
				return b
			}
		}
		return len(body) > 0
	case string:
		return strings.EqualFold(strings.TrimSpace(body), "true")
	default:
		return false
	}
}

// Resolve looks up the original URL behind a short code.
func (s *Service) Resolve(ctx context.Context, code string) (model.RedirectTarget, error) {
	code = strings.TrimSpace(code)
	if err := validate.Struct("Resolve", validate.Code{ShortCode: code}); err != nil {
		return model.RedirectTarget{}, err
	}

	resp, err := s.api.RedirectToURL(ctx, code)
	if err != nil {
		return model.RedirectTarget{}, err
	}

	target := model.RedirectTarget{ShortCode: code, OriginalURL: originalFrom(resp)}
	if target.OriginalURL == "" {
		return model.RedirectTarget{}, &model.Error{Kind: model.KindTransport, Op: "Resolve", Status: resp.Status, Message: "gateway returned no target URL"}
	}
	return target, nil
}

func originalFrom(resp *gateway.Response) string {
	if resp.Location != "" {
		return resp.Location
	}
	switch body := resp.Value().(type) {
	case map[string]any:
		for _, key := range []string{"originalUrl", "url"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	case string:
		return strings.TrimSpace(body)
	}
	return ""
}

// ShareURL returns the public URL for a short code.
func (s *Service) ShareURL(code string) string {
	return s.shortDomain + "/" + code
}
