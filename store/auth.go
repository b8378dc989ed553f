package store

import "github.com/CrowderSoup/minijira/api"

// AuthState is the signed-in user. Persistence of the token is the session
// store's job; this slice only mirrors it.
type AuthState struct {
	User            *api.User `json:"user"`
	Token           string    `json:"-"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	Flags
}

// SessionRestored loads a session read from local storage at startup.
type SessionRestored struct {
	User  *api.User
	Token string
}

func (a SessionRestored) apply(s *State) {
	s.Auth.User = a.User
	s.Auth.Token = a.Token
	s.Auth.IsAuthenticated = a.Token != ""
}

type LoginStarted struct{}

func (LoginStarted) apply(s *State) {
	s.Auth.IsLoading = true
	s.Auth.IsError = false
	s.Auth.Message = ""
}

type LoggedIn struct {
	User  api.User
	Token string
}

func (a LoggedIn) apply(s *State) {
	user := a.User
	s.Auth.succeed()
	s.Auth.User = &user
	s.Auth.Token = a.Token
	s.Auth.IsAuthenticated = true
}

type LoginFailed struct{ Message string }

func (a LoginFailed) apply(s *State) {
	s.Auth.fail(a.Message)
	s.Auth.IsAuthenticated = false
	s.Auth.User = nil
	s.Auth.Token = ""
}

type LoggedOut struct{}

func (LoggedOut) apply(s *State) {
	s.Auth.User = nil
	s.Auth.Token = ""
	s.Auth.IsAuthenticated = false
}

type AuthReset struct{}

func (AuthReset) apply(s *State) { s.Auth.reset() }
