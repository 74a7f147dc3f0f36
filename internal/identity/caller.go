package identity

import "time-ledger/internal/models"

// Caller is the resolved identity attached to every request.
type Caller struct {
	UserID   uint
	Elevated bool
}

func FromUser(u models.User) Caller {
	return Caller{UserID: u.ID, Elevated: u.Elevated()}
}

// CanModify reports whether the caller may change a record owned by ownerID.
func (c Caller) CanModify(ownerID uint) bool {
	return c.Elevated || c.UserID == ownerID
}

func (c Caller) Valid() bool {
	return c.UserID > 0
}
