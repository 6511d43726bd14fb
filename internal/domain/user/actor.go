package user

// Actor is the authenticated caller of an operation, as asserted by the
// identity provider's token.
type Actor struct {
	UserID uint
	Email  string
	Role   Role
}

// IsAdmin reports whether the actor may perform back-office operations
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Customer builds a customer actor
func Customer(userID uint) Actor {
	return Actor{UserID: userID, Role: RoleCustomer}
}

// Admin builds an admin actor
func Admin(userID uint) Actor {
	return Actor{UserID: userID, Role: RoleAdmin}
}
