package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type mockAuthApplicants struct {
	applicant *models.Applicant
	err       error
}

func (m *mockAuthApplicants) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.applicant, nil
}

func (m *mockAuthApplicants) FindByID(ctx context.Context, id int64) (*models.Applicant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.applicant, nil
}

type mockAuthStaffs struct {
	staff *models.Staff
	err   error
}

func (m *mockAuthStaffs) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.staff, nil
}

func newAuthService(applicants *mockAuthApplicants, staffs *mockAuthStaffs, superEmail, superPassword string) *AuthService {
	return NewAuthService(applicants, staffs, validator.New(), zap.NewNop(), AuthConfig{
		Secret:             "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		SuperAdminEmail:    superEmail,
		SuperAdminPassword: superPassword,
	})
}

func TestAuthLoginApplicantSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	res, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleApplicant, res.User.Role)
	assert.Equal(t, int64(9), res.User.ID)
}

func TestAuthLoginApplicantWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	_, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "nope-nope-nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginApplicantUnknownEmail(t *testing.T) {
	applicants := &mockAuthApplicants{err: sql.ErrNoRows}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	_, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginStaffSuperAdmin(t *testing.T) {
	staffs := &mockAuthStaffs{err: sql.ErrNoRows}
	svc := newAuthService(&mockAuthApplicants{}, staffs, "admin@school.edu", "sup3r-secret")

	res, err := svc.LoginStaff(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "sup3r-secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, res.User.Role)
	assert.Equal(t, models.SuperAdminID, res.User.ID)
}

func TestAuthLoginStaffSuperAdminWrongPasswordFallsThrough(t *testing.T) {
	staffs := &mockAuthStaffs{err: sql.ErrNoRows}
	svc := newAuthService(&mockAuthApplicants{}, staffs, "admin@school.edu", "sup3r-secret")

	_, err := svc.LoginStaff(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "wrong-secret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginStaffTableAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	staffs := &mockAuthStaffs{staff: &models.Staff{ID: 4, Email: "staff@school.edu", PasswordHash: string(hash)}}
	svc := newAuthService(&mockAuthApplicants{}, staffs, "admin@school.edu", "sup3r-secret")

	res, err := svc.LoginStaff(context.Background(), models.LoginRequest{Email: "staff@school.edu", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, res.User.Role)
	assert.Equal(t, int64(4), res.User.ID)
}

func TestAuthRefreshRejectsAccessToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	res, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: res.AccessToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthRefreshIssuesNewPair(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	res, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, models.RoleApplicant, refreshed.User.Role)
}

func TestAuthRefreshDeletedApplicant(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	res, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)

	applicants.err = sql.ErrNoRows
	applicants.applicant = nil

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRoundTrip(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	applicants := &mockAuthApplicants{applicant: &models.Applicant{ID: 9, Email: "jane@example.com", PasswordHash: string(hash)}}
	svc := newAuthService(applicants, &mockAuthStaffs{}, "", "")

	res, err := svc.LoginApplicant(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, models.RoleApplicant, claims.Role)

	_, err = svc.ValidateToken(res.RefreshToken)
	require.Error(t, err)
}
