package models

import "time"

// Applicant represents a registered applicant. The password column holds an
// opaque credential hash; plaintext never reaches the repository.
type Applicant struct {
	ID            int64     `db:"applicant_id" json:"applicant_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Address       string    `db:"address" json:"address"`
	ContactNumber *string   `db:"contact_number" json:"contact_number,omitempty"`
	Email         string    `db:"email" json:"email"`
	Sex           string    `db:"sex" json:"sex"`
	PasswordHash  string    `db:"password" json:"-"`
	Birthdate     time.Time `db:"birthdate" json:"birthdate"`
}
