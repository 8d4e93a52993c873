package auth

import (
	"context"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type contextKey struct{}

// AuthContext identifies the authenticated caller for the lifetime of one
// request: who they are, which family they act within, and their role.
type AuthContext struct {
	UserID    int64
	FamilyID  int64
	Role      string
	SessionID int64
}

// Guardian reports whether the caller holds a parent or admin role.
func (ac AuthContext) Guardian() bool {
	return model.IsGuardianRole(ac.Role)
}

// MemberOf reports whether the caller belongs to the given family.
func (ac AuthContext) MemberOf(familyID int64) bool {
	return ac.FamilyID == familyID
}

// Manages reports whether the caller is a guardian of the given family.
func (ac AuthContext) Manages(familyID int64) bool {
	return ac.FamilyID == familyID && model.IsGuardianRole(ac.Role)
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func FamilyID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.FamilyID
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

// IsGuardian reports whether the caller holds a parent or admin role.
func IsGuardian(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return model.IsGuardianRole(ac.Role)
}

// CanManage reports whether the caller is a guardian of the given family.
// Every guardian-only operation routes through this single check.
func CanManage(ctx context.Context, familyID int64) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.FamilyID == familyID && model.IsGuardianRole(ac.Role)
}

// SameFamily reports whether the caller belongs to the given family.
func SameFamily(ctx context.Context, familyID int64) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.FamilyID == familyID
}
