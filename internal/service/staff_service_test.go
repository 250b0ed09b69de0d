package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type mockStaffRepo struct {
	created   *models.Staff
	updated   *models.Staff
	updateOK  bool
	deleteOK  bool
	createErr error
}

func (m *mockStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	if m.createErr != nil {
		return m.createErr
	}
	staff.ID = 4
	m.created = staff
	return nil
}

func (m *mockStaffRepo) Update(ctx context.Context, staff *models.Staff) (bool, error) {
	m.updated = staff
	return m.updateOK, nil
}

func (m *mockStaffRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return m.deleteOK, nil
}

func (m *mockStaffRepo) List(ctx context.Context, limit, offset int) ([]models.Staff, int, error) {
	return nil, 0, nil
}

func newStaffService(repo *mockStaffRepo) *StaffService {
	return NewStaffService(repo, validator.New(), zap.NewNop())
}

func TestStaffCreateHashesPassword(t *testing.T) {
	repo := &mockStaffRepo{}
	svc := newStaffService(repo)

	staff, err := svc.Create(context.Background(), CreateStaffRequest{
		FullName: "Maria Santos",
		Sex:      "Female",
		Email:    "maria@school.edu",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), staff.ID)
	assert.NotEqual(t, "password123", repo.created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("password123")))
}

func TestStaffUpdateBlankPasswordKeepsCredential(t *testing.T) {
	repo := &mockStaffRepo{updateOK: true}
	svc := newStaffService(repo)

	err := svc.Update(context.Background(), 4, UpdateStaffRequest{
		FullName: "Maria Santos",
		Sex:      "Female",
		Email:    "maria@school.edu",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.updated.PasswordHash)
}

func TestStaffUpdateNotFound(t *testing.T) {
	repo := &mockStaffRepo{updateOK: false}
	svc := newStaffService(repo)

	err := svc.Update(context.Background(), 99, UpdateStaffRequest{
		FullName: "Maria Santos",
		Sex:      "Female",
		Email:    "maria@school.edu",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStaffDeleteNotFound(t *testing.T) {
	repo := &mockStaffRepo{deleteOK: false}
	svc := newStaffService(repo)

	err := svc.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
