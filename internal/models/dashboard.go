package models

import "time"

// DashboardStats aggregates the five admin dashboard panels into one result.
type DashboardStats struct {
	TotalApplicants    int                   `json:"total_applicants"`
	ActiveCourses      int                   `json:"active_courses"`
	TotalAdmissions    int                   `json:"total_admissions"`
	TotalStaff         int                   `json:"total_staff"`
	RecentApplications []RecentApplication   `json:"recent_applications"`
	AvailableCourses   []AvailableCourse     `json:"available_courses"`
	AdmissionLists     []RecentAdmissionList `json:"admission_lists"`
}

// RecentApplication is a dashboard row for the latest submissions.
type RecentApplication struct {
	ApplicationID int64             `db:"application_id" json:"application_id"`
	FullName      string            `db:"full_name" json:"full_name"`
	CourseName    string            `db:"course_name" json:"course_name"`
	Status        ApplicationStatus `db:"application_status" json:"application_status"`
}

// AvailableCourse is an active offering with open slots.
type AvailableCourse struct {
	CourseStatusID int64  `db:"course_status_id" json:"course_status_id"`
	CourseName     string `db:"course_name" json:"course_name"`
	YearRange      string `db:"year_range" json:"year_range"`
	Slots          int    `db:"slots" json:"slots"`
}

// RecentAdmissionList is a dashboard row for the latest batch decisions.
type RecentAdmissionList struct {
	AdmissionRecordID int64            `db:"admission_record_id" json:"admission_record_id"`
	CourseName        string           `db:"course_name" json:"course_name"`
	Type              AdmissionOutcome `db:"type" json:"type"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}
