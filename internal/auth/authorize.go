package auth

import (
	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
)

// Authorize fails with Forbidden unless id.Role is one of allowed. Roles
// outside the defined set never pass, even if listed.
func Authorize(id Identity, allowed ...domain.Role) error {
	switch id.Role {
	case domain.RoleAdmin, domain.RoleUser, domain.RoleStoreOwner:
	default:
		return apperr.Forbidden("Insufficient permissions")
	}
	for _, r := range allowed {
		if r == id.Role {
			return nil
		}
	}
	return apperr.Forbidden("Insufficient permissions")
}
