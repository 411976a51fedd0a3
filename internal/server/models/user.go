package models

import (
	"slices"
	"strings"
)

type User struct {
	Entity
	UserName     string
	Email        string
	DisplayName  string
	PasswordHash []byte
	Roles        []string
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// JoinRoles and SplitRoles convert between the slice form and the
// comma-separated column value.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func SplitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// UserDTO never carries the password hash.
type UserDTO struct {
	EntityDTO
	UserName    string   `json:"userName"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

func UserToDTO(u *User) UserDTO {
	return UserDTO{
		EntityDTO:   u.Entity.ToDTO(),
		UserName:    u.UserName,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Roles:       u.Roles,
	}
}
