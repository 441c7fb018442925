package model

// Session is the client's authentication state. Token and User are either
// both set or both empty.
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
}

// Present reports whether the session holds a token and a user.
func (s Session) Present() bool {
	return s.Token != "" && s.User != nil
}

// Username returns the signed-in username, or "" when absent.
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// Persisted session keys.
const (
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
)
