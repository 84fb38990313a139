package wincode

import "time"

// Code is a redeemable winner code. A code exists if and only if its owning
// entry won, and the claimed flag only ever transitions false to true.
type Code struct {
	Code      string     `db:"code"`
	EntryID   string     `db:"scan_entry_id"`
	Claimed   bool       `db:"claimed"`
	ClaimedAt *time.Time `db:"claimed_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// ListedCode is a code row joined with the owning entry's source address, as
// exposed on the admin codes listing.
type ListedCode struct {
	Code
	IPAddress string `db:"ip_address"`
}
