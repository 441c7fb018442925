package model

import "time"

// User is the signed-in account as the client knows it. The gateway does not
// return a profile; CreatedAt is stamped locally when the session is created.
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
