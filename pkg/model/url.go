package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ShortURL is a shortened link as returned by the gateway.
type ShortURL struct {
	ID          ID        `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	ShortURL    string    `json:"shortUrl,omitempty"`
	ClickCount  int64     `json:"clickCount"`
	CreatedAt   Timestamp `json:"createdAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string     `json:"token"`
	Username  string     `json:"username,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// RedirectTarget is the body returned when resolving a short code.
type RedirectTarget struct {
	ShortCode   string `json:"shortCode"`
	OriginalURL string `json:"originalUrl"`
}

// CodeCheck is the body returned by short-code validation.
type CodeCheck struct {
	ShortCode string `json:"shortCode"`
	Exists    bool   `json:"exists"`
}

// timestampLayouts are accepted when decoding gateway timestamps. .NET
// backends often omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a time that decodes from any of the gateway's date formats.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339, zone-less ISO 8601, null and "".
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// ID is a resource identifier that the gateway may send as a string or a number.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
