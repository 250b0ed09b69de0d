package models

// Staff represents an admissions staff account.
type Staff struct {
	ID           int64  `db:"staff_id" json:"staff_id"`
	FullName     string `db:"full_name" json:"full_name"`
	Sex          string `db:"sex" json:"sex"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password" json:"-"`
}
