package devgateway

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/linkshort/internal/validate"
	"github.com/me/linkshort/pkg/model"
)

const generatedCodeLen = 7

type createURLRequest struct {
	OriginalURL string `json:"originalUrl"`
	CustomCode  string `json:"customCode"`
}

func (s *Server) handleListURLs(w http.ResponseWriter, r *http.Request) {
	user := usernameFromContext(r.Context())

	s.mu.Lock()
	out := make([]model.ShortURL, 0)
	for _, l := range s.links {
		if l.CreatedBy == user {
			out = append(out, *l)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateURL(w http.ResponseWriter, r *http.Request) {
	var req createURLRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.createURL(w, r, req.OriginalURL, "")
}

func (s *Server) handleCreateCustomURL(w http.ResponseWriter, r *http.Request) {
	var req createURLRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomCode == "" {
		respondValidation(w, "CustomCode", "The CustomCode field is required.")
		return
	}
	s.createURL(w, r, req.OriginalURL, req.CustomCode)
}

func (s *Server) createURL(w http.ResponseWriter, r *http.Request, originalURL, code string) {
	if err := validate.Struct("CreateURL", validate.Shorten{OriginalURL: originalURL, CustomCode: code}); err != nil {
		respondValidation(w, "OriginalUrl", err.Error())
		return
	}

	s.mu.Lock()
	if code == "" {
		code = s.generateCodeLocked()
	} else if _, taken := s.codes[strings.ToLower(code)]; taken {
		s.mu.Unlock()
		respondMessage(w, http.StatusConflict, fmt.Sprintf("Short code '%s' is already in use.", code))
		return
	}

	link := &model.ShortURL{
		ID:          model.ID(uuid.NewString()),
		OriginalURL: originalURL,
		ShortCode:   code,
		ShortURL:    s.shortBase(r) + "/" + code,
		CreatedAt:   model.Timestamp{Time: s.now().UTC()},
		CreatedBy:   usernameFromContext(r.Context()),
	}
	s.links[string(link.ID)] = link
	s.codes[strings.ToLower(code)] = string(link.ID)
	created := *link
	s.mu.Unlock()

	s.logger.Info("link created", "code", code, "user", created.CreatedBy)
	respondJSON(w, http.StatusCreated, created)
}

// generateCodeLocked returns an unused random code. s.mu must be held.
func (s *Server) generateCodeLocked() string {
	for {
		code := strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedCodeLen]
		if _, taken := s.codes[code]; !taken {
			return code
		}
	}
}

func (s *Server) shortBase(r *http.Request) string {
	if s.config.ShortBase != "" {
		return strings.TrimRight(s.config.ShortBase, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/gateway/urls/redirect"
}

func (s *Server) handleDeleteURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := usernameFromContext(r.Context())

	s.mu.Lock()
	link, ok := s.links[id]
	if !ok || link.CreatedBy != user {
		s.mu.Unlock()
		respondMessage(w, http.StatusNotFound, "Short URL not found.")
		return
	}
	delete(s.links, id)
	delete(s.codes, strings.ToLower(link.ShortCode))
	s.mu.Unlock()

	s.logger.Info("link deleted", "id", id, "user", user)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupCode(code string) (*model.ShortURL, bool) {
	id, ok := s.codes[strings.ToLower(code)]
	if !ok {
		return nil, false
	}
	return s.links[id], true
}

func (s *Server) handleValidateCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	_, exists := s.lookupCode(code)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, model.CodeCheck{ShortCode: code, Exists: exists})
}

// handleRedirect answers API callers with JSON and browsers with a 302.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	link, ok := s.lookupCode(code)
	var target string
	if ok {
		link.ClickCount++
		target = link.OriginalURL
	}
	s.mu.Unlock()

	if !ok {
		respondMessage(w, http.StatusNotFound, "Short URL not found.")
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		respondJSON(w, http.StatusOK, model.RedirectTarget{ShortCode: code, OriginalURL: target})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
