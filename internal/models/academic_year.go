package models

import "time"

// AcademicYear models one yearly admission cycle. At most one row carries
// active = true at any time; the repository enforces this transactionally.
type AcademicYear struct {
	ID        int64     `db:"academic_year_id" json:"academic_year_id"`
	YearRange string    `db:"year_range" json:"year_range"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
