// Package identity describes who is calling. A Principal is passed explicitly
// into every operation that needs authorization; nothing reads it from
// ambient request state.
package identity

import (
	"fmt"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/errs"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSender  Role = "sender"
	RolePostman Role = "postman"
)

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleSender, RolePostman:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

// Principal is an authenticated caller.
type Principal struct {
	userID kernel.UUID
	role   Role
}

func NewPrincipal(userID kernel.UUID, role Role) (Principal, error) {
	if err := userID.Validate(); err != nil {
		return Principal{}, err
	}
	if err := role.Validate(); err != nil {
		return Principal{}, err
	}
	return Principal{userID: userID, role: role}, nil
}

func (p Principal) UserID() kernel.UUID {
	return p.userID
}

func (p Principal) Role() Role {
	return p.role
}

func (p Principal) IsAdmin() bool {
	return p.role == RoleAdmin
}

// RequireAdmin fails with errs.ErrAccessDenied for non-admin principals.
func (p Principal) RequireAdmin(action string) error {
	if !p.IsAdmin() {
		return errs.NewAccessDeniedError(action, "slots")
	}
	return nil
}

// CanAccessOrder allows admins and the sender who owns the order.
func (p Principal) CanAccessOrder(senderID kernel.UUID) error {
	if p.IsAdmin() || p.userID.IsEqual(senderID) {
		return nil
	}
	return errs.NewAccessDeniedError("access", "order of another sender")
}

// CanCreateOrders allows senders and admins.
func (p Principal) CanCreateOrders() error {
	if p.role == RoleSender || p.role == RoleAdmin {
		return nil
	}
	return errs.NewAccessDeniedError("create", "orders")
}
