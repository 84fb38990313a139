package entry

import "time"

// Entry records a single participation attempt. One entry exists per
// identifier for the lifetime of the campaign; entries are never updated or
// deleted.
type Entry struct {
	ID         string    `db:"id"`
	Identifier string    `db:"identifier"`
	IPAddress  string    `db:"ip_address"`
	Won        bool      `db:"won"`
	CreatedAt  time.Time `db:"created_at"`
}
