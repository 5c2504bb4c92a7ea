package models

// Principal is the authenticated caller a service call acts for.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// PrincipalFor builds the principal for a stored user
func PrincipalFor(u User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// IsAdmin reports whether the caller has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanActFor reports whether the caller may read or change data owned by userID
func (p Principal) CanActFor(userID uint) bool {
	return p.IsAdmin() || SameRecord(p.UserID, userID)
}
