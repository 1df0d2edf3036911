package auth

// Actor is the identity performing a request, as established from its
// access token.
type Actor struct {
	ID   string
	Role string
}

// Authenticated reports whether the actor carries a non-empty identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// Policy decides what an actor is allowed to do. Injected wherever an
// authorization decision is made, so no handler hardcodes who the
// administrators are.
type Policy interface {
	IsAdmin(actor Actor) bool
}

// RolePolicy grants admin capability based on the actor's role claim.
type RolePolicy struct {
	AdminRole string
}

func NewRolePolicy(adminRole string) RolePolicy {
	return RolePolicy{AdminRole: adminRole}
}

func (p RolePolicy) IsAdmin(actor Actor) bool {
	return actor.Authenticated() && actor.Role == p.AdminRole
}
