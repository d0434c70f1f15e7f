package auth

// Actor is the authenticated identity making a request.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether actor may update or delete a resource owned by
// ownerID. Admins always can, even when the owner id does not match.
func CanModify(actor Actor, ownerID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}

// CanChangeRole reports whether actor may change any user's role.
func CanChangeRole(actor Actor) bool {
	return actor.IsAdmin()
}
