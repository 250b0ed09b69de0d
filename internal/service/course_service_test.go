package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type mockCourseRepo struct {
	created       *models.Course
	statusErr     error
	statusCalls   int
	statusCourse  int64
	statusSlots   int
	updateErr     error
	deleteErr     error
	deletedCourse int64
}

func (m *mockCourseRepo) Create(ctx context.Context, name string) (*models.Course, error) {
	m.created = &models.Course{ID: 1, Name: name}
	return m.created, nil
}

func (m *mockCourseRepo) CreateStatus(ctx context.Context, courseID int64, slots int) error {
	m.statusCalls++
	m.statusCourse = courseID
	m.statusSlots = slots
	return m.statusErr
}

func (m *mockCourseRepo) Update(ctx context.Context, courseID int64, name string, slots int) error {
	return m.updateErr
}

func (m *mockCourseRepo) Delete(ctx context.Context, courseID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedCourse = courseID
	return nil
}

func (m *mockCourseRepo) List(ctx context.Context, limit, offset int) ([]models.CourseListing, int, error) {
	return nil, 0, nil
}

func (m *mockCourseRepo) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	return nil, nil
}

func (m *mockCourseRepo) ListWithoutActiveStatus(ctx context.Context) ([]models.Course, error) {
	return nil, nil
}

func newCourseService(repo *mockCourseRepo) *CourseService {
	return NewCourseService(repo, validator.New(), zap.NewNop())
}

func TestCourseServiceCreateStatus(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	err := svc.CreateStatus(context.Background(), CreateCourseStatusRequest{CourseID: 5, Slots: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(5), repo.statusCourse)
	assert.Equal(t, 40, repo.statusSlots)
}

func TestCourseServiceCreateStatusAcceptsZeroSlots(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	err := svc.CreateStatus(context.Background(), CreateCourseStatusRequest{CourseID: 5, Slots: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.statusCalls)
	assert.Equal(t, 0, repo.statusSlots)
}

func TestCourseServiceCreateStatusRejectsNegativeSlots(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	err := svc.CreateStatus(context.Background(), CreateCourseStatusRequest{CourseID: 5, Slots: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.statusCalls)
}

func TestCourseServiceCreateStatusRequiresCourse(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	err := svc.CreateStatus(context.Background(), CreateCourseStatusRequest{Slots: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.statusCalls)
}

func TestCourseServiceCreateStatusPropagatesNoActiveYear(t *testing.T) {
	repo := &mockCourseRepo{statusErr: appErrors.Clone(appErrors.ErrNoActiveYear, "")}
	svc := newCourseService(repo)

	err := svc.CreateStatus(context.Background(), CreateCourseStatusRequest{CourseID: 5, Slots: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoActiveYear.Code, appErrors.FromError(err).Code)
}
