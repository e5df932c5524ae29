package usecase

import "github.com/K-Gaydukov/marketplace/internal/entity"

type AccessMode int

const (
	ModeRead AccessMode = iota
	ModeMutate
)

// CanAccess decides whether p may touch o. Admins (and service callers)
// access any order in any mode; users only their own. Listing is not
// routed through here: it filters by owner instead of denying.
func CanAccess(o *entity.Order, p entity.Principal, mode AccessMode) bool {
	if p.IsAdmin() {
		return true
	}
	return o.UserID == p.UserID
}
