package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
)

// DashboardRepository computes the aggregate admin dashboard statistics. The
// five panels are independent queries combined into one result; there is no
// snapshot guarantee between them.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository instantiates a dashboard repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats gathers counts and recent activity for the admin dashboard.
func (r *DashboardRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		RecentApplications: []models.RecentApplication{},
		AvailableCourses:   []models.AvailableCourse{},
		AdmissionLists:     []models.RecentAdmissionList{},
	}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalApplicants, `SELECT COUNT(*) FROM applicants`},
		{&stats.ActiveCourses, `SELECT COUNT(*) FROM course_status WHERE status = 'Active'`},
		{&stats.TotalAdmissions, `SELECT COUNT(*) FROM admission_records`},
		{&stats.TotalStaff, `SELECT COUNT(*) FROM staffs`},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}

	if err := r.db.SelectContext(ctx, &stats.RecentApplications, `
		SELECT a.application_id, ap.full_name, c.course_name, a.application_status
		FROM applications a
		INNER JOIN applicants ap ON a.applicant_id = ap.applicant_id
		INNER JOIN course_status cs ON a.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		ORDER BY a.application_date DESC, a.application_id DESC
		LIMIT 5`); err != nil {
		return nil, fmt.Errorf("dashboard recent applications: %w", err)
	}

	if err := r.db.SelectContext(ctx, &stats.AvailableCourses, `
		SELECT cs.course_status_id, c.course_name, ay.year_range, cs.slots
		FROM course_status cs
		INNER JOIN courses c ON cs.course_id = c.course_id
		INNER JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id
		WHERE cs.slots > 0 AND cs.status = 'Active'
		ORDER BY c.course_name ASC`); err != nil {
		return nil, fmt.Errorf("dashboard available courses: %w", err)
	}

	if err := r.db.SelectContext(ctx, &stats.AdmissionLists, `
		SELECT ar.admission_record_id, c.course_name, ar.type, ar.created_at
		FROM admission_records ar
		INNER JOIN course_status cs ON ar.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		ORDER BY ar.created_at DESC
		LIMIT 5`); err != nil {
		return nil, fmt.Errorf("dashboard admission lists: %w", err)
	}

	return stats, nil
}
