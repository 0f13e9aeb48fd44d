package entity

import "strings"

// UserRole is the authorization role carried by a user and its access token.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", invalid("role", "must be admin or user")
	}
	return r, nil
}

func (r UserRole) CanManageProducts() bool    { return r == RoleAdmin }
func (r UserRole) CanManageRecipes() bool     { return r == RoleAdmin }
func (r UserRole) CanManageIngredients() bool { return r == RoleAdmin }
func (r UserRole) CanManageUsers() bool       { return r == RoleAdmin }
func (r UserRole) CanCreateOrders() bool      { return r.IsValid() }
