package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned for callers lacking a required privilege:
// non-admins creating or resolving markets, or non-owners cancelling an
// order.
var ErrUnauthorized = errors.New("unauthorized")

// AdminAuthority gates market creation and resolution.
type AdminAuthority interface {
	RequireAdmin(caller uuid.UUID) error
}

// StaticAdmins authorizes a fixed set of participant IDs, loaded from
// configuration at startup.
type StaticAdmins struct {
	admins map[uuid.UUID]struct{}
}

func NewStaticAdmins(ids ...uuid.UUID) *StaticAdmins {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &StaticAdmins{admins: set}
}

func (a *StaticAdmins) RequireAdmin(caller uuid.UUID) error {
	if _, ok := a.admins[caller]; !ok {
		return fmt.Errorf("caller %s: %w", caller, ErrUnauthorized)
	}
	return nil
}
