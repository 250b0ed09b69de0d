package models

import "time"

// CourseStatus labels. Year activation writes Active/Inactive; creating a new
// offering marks prior-year rows INACTIVE. Both lowercase and uppercase
// inactive spellings exist in stored data, so reads must not assume one.
const (
	CourseStatusActive         = "Active"
	CourseStatusInactive       = "Inactive"
	CourseStatusInactiveLegacy = "INACTIVE"
)

// Course is a program offered by the school, independent of academic year.
type Course struct {
	ID   int64  `db:"course_id" json:"course_id"`
	Name string `db:"course_name" json:"course_name"`
}

// CourseStatus is the offering of a Course within one AcademicYear, carrying
// the slot capacity. (course_id, academic_year_id) is unique.
type CourseStatus struct {
	ID             int64     `db:"course_status_id" json:"course_status_id"`
	CourseID       int64     `db:"course_id" json:"course_id"`
	AcademicYearID int64     `db:"academic_year_id" json:"academic_year_id"`
	Slots          int       `db:"slots" json:"slots"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CourseListing joins a course with its active-year offering, when present.
// Courses without a current offering have nil status fields.
type CourseListing struct {
	CourseID       int64  `db:"course_id" json:"course_id"`
	CourseName     string `db:"course_name" json:"course_name"`
	CourseStatusID *int64 `db:"course_status_id" json:"course_status_id"`
	Slots          *int   `db:"slots" json:"slots"`
}

// ActiveCourse is a course with a confirmed offering in the active year.
type ActiveCourse struct {
	CourseID       int64  `db:"course_id" json:"course_id"`
	CourseName     string `db:"course_name" json:"course_name"`
	CourseStatusID int64  `db:"course_status_id" json:"course_status_id"`
	Slots          int    `db:"slots" json:"slots"`
}
