package core

import (
	"github.com/google/uuid"
)

// Viewer is the identity a read or a command is executed for.
type Viewer struct {
	UserID  uuid.UUID
	IsStaff bool
}

// CanSee reports whether the viewer may see records owned by ownerID. Staff sees everything.
func (v Viewer) CanSee(ownerID uuid.UUID) bool {
	return v.IsStaff || v.UserID == ownerID
}
