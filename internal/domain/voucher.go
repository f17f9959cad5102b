package domain

import "time"

// Voucher is a single-use access code belonging to a plan's pool. A voucher
// flips from unused to used exactly once and is never deleted; pools only
// shrink at runtime, restocking happens through an out-of-band seed merge.
type Voucher struct {
	Code       string
	Plan       string
	Used       bool
	AssignedTo *int64
	AssignedAt *time.Time
}
