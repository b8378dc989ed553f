package store

import "github.com/CrowderSoup/minijira/api"

// UsersState is the developers list.
type UsersState struct {
	Users []api.User `json:"users"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Flags
}

type UsersFetchStarted struct{}

func (UsersFetchStarted) apply(s *State) {
	s.Users.IsLoading = true
	s.Users.IsError = false
	s.Users.Message = ""
}

type UsersFetched struct{ Page api.UserPage }

func (a UsersFetched) apply(s *State) {
	u := &s.Users
	u.succeed()
	u.Users = append([]api.User{}, a.Page.Users...)
	u.Total = a.Page.Total
	u.Page = a.Page.Page
	u.Pages = a.Page.Pages
}

type UsersFetchFailed struct{ Message string }

func (a UsersFetchFailed) apply(s *State) {
	s.Users.IsLoading = false
	s.Users.IsError = true
	s.Users.Message = a.Message
}

type UserCreateStarted struct{}

func (UserCreateStarted) apply(s *State) { s.Users.start() }

// UserCreated appends the new developer to the current page.
type UserCreated struct{ User api.User }

func (a UserCreated) apply(s *State) {
	s.Users.succeed()
	s.Users.Users = append(s.Users.Users, a.User)
}

type UserCreateFailed struct{ Message string }

func (a UserCreateFailed) apply(s *State) { s.Users.fail(a.Message) }

type UserUpdateStarted struct{}

func (UserUpdateStarted) apply(s *State) { s.Users.start() }

type UserUpdated struct{ User api.User }

func (a UserUpdated) apply(s *State) {
	u := &s.Users
	u.succeed()
	for i := range u.Users {
		if u.Users[i].ID == a.User.ID {
			u.Users[i] = a.User
			return
		}
	}
}

type UserUpdateFailed struct{ Message string }

func (a UserUpdateFailed) apply(s *State) { s.Users.fail(a.Message) }
