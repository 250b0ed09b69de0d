package models

import "time"

// ApplicationStatus is the closed set of application lifecycle states:
// Pending -> Scheduled -> {Passed, NotPassed, NoShow}. Pending may also be
// promoted directly; terminal states are never reversed.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "Pending"
	ApplicationScheduled ApplicationStatus = "Scheduled"
	ApplicationPassed    ApplicationStatus = "Passed"
	ApplicationNotPassed ApplicationStatus = "NotPassed"
	ApplicationNoShow    ApplicationStatus = "NoShow"
)

// Valid reports whether the status is one of the known states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationScheduled, ApplicationPassed, ApplicationNotPassed, ApplicationNoShow:
		return true
	}
	return false
}

// Terminal reports whether the status is a final outcome.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationPassed, ApplicationNotPassed, ApplicationNoShow:
		return true
	}
	return false
}

// Application links an applicant to a course offering for one admission cycle.
// Document fields store extensions only; file bytes live in external storage.
type Application struct {
	ID                int64             `db:"application_id" json:"application_id"`
	ApplicantID       int64             `db:"applicant_id" json:"applicant_id"`
	CourseStatusID    int64             `db:"course_status_id" json:"course_status_id"`
	AdmissionRecordID *int64            `db:"admission_record_id" json:"admission_record_id,omitempty"`
	Status            ApplicationStatus `db:"application_status" json:"application_status"`
	Date              time.Time         `db:"application_date" json:"application_date"`
	Remarks           *string           `db:"remarks" json:"remarks,omitempty"`
	ScheduleStart     *time.Time        `db:"schedule_start" json:"schedule_start,omitempty"`
	ScheduleEnd       *time.Time        `db:"schedule_end" json:"schedule_end,omitempty"`
	DocumentOneExt    *string           `db:"document_one_ext" json:"document_one_ext,omitempty"`
	DocumentTwoExt    *string           `db:"document_two_ext" json:"document_two_ext,omitempty"`
}

// ApplicationRow is the staff-facing list projection including the applicant
// name.
type ApplicationRow struct {
	ID             int64             `db:"application_id" json:"application_id"`
	ApplicantID    int64             `db:"applicant_id" json:"applicant_id"`
	FullName       string            `db:"full_name" json:"full_name"`
	Status         ApplicationStatus `db:"application_status" json:"application_status"`
	Date           time.Time         `db:"application_date" json:"application_date"`
	Remarks        *string           `db:"remarks" json:"remarks,omitempty"`
	ScheduleStart  *time.Time        `db:"schedule_start" json:"schedule_start,omitempty"`
	ScheduleEnd    *time.Time        `db:"schedule_end" json:"schedule_end,omitempty"`
	DocumentOneExt *string           `db:"document_one_ext" json:"document_one_ext,omitempty"`
	DocumentTwoExt *string           `db:"document_two_ext" json:"document_two_ext,omitempty"`
}

// ApplicantApplication is the applicant's own view of their submission.
type ApplicantApplication struct {
	ID            int64             `db:"application_id" json:"application_id"`
	Status        ApplicationStatus `db:"application_status" json:"application_status"`
	Date          time.Time         `db:"application_date" json:"application_date"`
	ScheduleStart *time.Time        `db:"schedule_start" json:"schedule_start,omitempty"`
	ScheduleEnd   *time.Time        `db:"schedule_end" json:"schedule_end,omitempty"`
	Remarks       *string           `db:"remarks" json:"remarks,omitempty"`
	CourseName    string            `db:"course_name" json:"course_name"`
	AcademicYear  string            `db:"academic_year" json:"academic_year"`
}

// ApplicationSummary is the minimal existence-check projection.
type ApplicationSummary struct {
	ID         int64             `db:"application_id" json:"application_id"`
	Status     ApplicationStatus `db:"application_status" json:"application_status"`
	Date       time.Time         `db:"application_date" json:"application_date"`
	CourseName string            `db:"course_name" json:"course_name"`
}
