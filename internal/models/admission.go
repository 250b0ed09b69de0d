package models

import "time"

// AdmissionOutcome is the closed set of batch decision types. The database
// carries a matching CHECK constraint on admission_records.type.
type AdmissionOutcome string

const (
	OutcomePassed    AdmissionOutcome = "Passed"
	OutcomeNotPassed AdmissionOutcome = "NotPassed"
	OutcomeNoShow    AdmissionOutcome = "NoShow"
)

// Valid reports whether the outcome is one of the known types.
func (o AdmissionOutcome) Valid() bool {
	switch o {
	case OutcomePassed, OutcomeNotPassed, OutcomeNoShow:
		return true
	}
	return false
}

// Status returns the application status the outcome maps to.
func (o AdmissionOutcome) Status() ApplicationStatus {
	return ApplicationStatus(o)
}

// AdmissionRecord captures one batch outcome decision applied to a set of
// applications. Immutable after creation.
type AdmissionRecord struct {
	ID             int64            `db:"admission_record_id" json:"admission_record_id"`
	CourseStatusID int64            `db:"course_status_id" json:"course_status_id"`
	Type           AdmissionOutcome `db:"type" json:"type"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// AdmissionListRow is the staff-facing admission record list projection.
type AdmissionListRow struct {
	ID           int64            `db:"admission_record_id" json:"admission_record_id"`
	Type         AdmissionOutcome `db:"type" json:"type"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	CourseName   string           `db:"course_name" json:"course_name"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
}

// AdmissionApplicationRow lists one application inside an admission record.
type AdmissionApplicationRow struct {
	ApplicationID int64     `db:"application_id" json:"application_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Date          time.Time `db:"application_date" json:"application_date"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	ContactNumber *string   `db:"contact_number" json:"contact_number,omitempty"`
	Sex           string    `db:"sex" json:"sex"`
	Birthdate     time.Time `db:"birthdate" json:"birthdate"`
}

// AdmissionExportRow is the flat download projection with course, year and
// outcome denormalised onto every row.
type AdmissionExportRow struct {
	ApplicationID int64            `db:"application_id" json:"application_id"`
	FullName      string           `db:"full_name" json:"full_name"`
	Date          time.Time        `db:"application_date" json:"application_date"`
	Email         string           `db:"email" json:"email"`
	Address       string           `db:"address" json:"address"`
	ContactNumber *string          `db:"contact_number" json:"contact_number,omitempty"`
	Sex           string           `db:"sex" json:"sex"`
	Birthdate     time.Time        `db:"birthdate" json:"birthdate"`
	CourseName    string           `db:"course_name" json:"course_name"`
	AcademicYear  string           `db:"academic_year" json:"academic_year"`
	Type          AdmissionOutcome `db:"type" json:"type"`
}
