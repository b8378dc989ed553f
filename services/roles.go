package services

import (
	"strings"
	"unicode"

	"github.com/CrowderSoup/minijira/api"
)

// HasRole compares roles case-insensitively.
func HasRole(user *api.User, role api.Role) bool {
	return user != nil && strings.EqualFold(string(user.Role), string(role))
}

func IsManager(user *api.User) bool   { return HasRole(user, api.RoleManager) }
func IsDeveloper(user *api.User) bool { return HasRole(user, api.RoleDeveloper) }

// Initials returns the first letters of the first and last name, or "U"
// for an empty name.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "U"
	case 1:
		return firstUpper(parts[0])
	default:
		return firstUpper(parts[0]) + firstUpper(parts[len(parts)-1])
	}
}

func firstUpper(word string) string {
	for _, r := range word {
		return string(unicode.ToUpper(r))
	}
	return ""
}
