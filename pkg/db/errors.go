package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique
// constraint failure. With a constraint name it matches that specific index,
// which is how the booking-per-quote upsert distinguishes "already booked"
// from other write errors. Matching on message text keeps the check uniform
// across the pgx and lib/pq drivers, which wrap the server error differently.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
