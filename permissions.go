package blog

import "github.com/google/uuid"

// CheckPermission reports whether the identity may mutate a resource owned by
// resourceOwnerID. Superusers may touch any resource; everyone else only
// their own. Pure function of its inputs.
func CheckPermission(identity Identity, resourceOwnerID uuid.UUID) bool {
	if identity == nil {
		return false
	}
	return identity.IsSuperuser() || identity.UUID() == resourceOwnerID
}

// RequirePermission turns a denied CheckPermission into ErrNotAuthorized.
func RequirePermission(identity Identity, resourceOwnerID uuid.UUID) error {
	if !CheckPermission(identity, resourceOwnerID) {
		return ErrNotAuthorized
	}
	return nil
}
