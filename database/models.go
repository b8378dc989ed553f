package database

import (
	"errors"
	"time"

	"github.com/CrowderSoup/minijira/api"
)

// ErrNoSession is returned when nobody is signed in.
var ErrNoSession = errors.New("no stored session")

// Session is what the browser app kept in local storage: the token and the
// signed-in user.
type Session struct {
	Token     string
	User      api.User
	UpdatedAt time.Time
}

type sessionRow struct {
	Token     string    `db:"token"`
	User      string    `db:"user_json"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Preference keys.
const (
	PrefPageSize = "page_size"
)
