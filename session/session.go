package session

import (
	"time"

	"github.com/jrsteele09/rxadmin/users"
)

// Record is the durable form of a session. A record is either empty or carries a
// user together with both tokens.
type Record struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	LastActiveAt time.Time   `json:"lastActiveAt,omitempty"`
}

func (r Record) complete() bool {
	return r.User != nil && r.AccessToken != "" && r.RefreshToken != ""
}

func (r Record) empty() bool {
	return r.User == nil && r.AccessToken == "" && r.RefreshToken == ""
}
