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

	"github.com/fitdesk/trainer-api/internal/models"
	appErrors "github.com/fitdesk/trainer-api/pkg/errors"
)

type authRepoStub struct {
	trainer       *models.Trainer
	findErr       error
	lastLoginErr  error
	lastLoginSeen []string
}

func (s *authRepoStub) FindByEmail(_ context.Context, email string) (*models.Trainer, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.trainer == nil || s.trainer.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.trainer, nil
}

func (s *authRepoStub) FindByID(_ context.Context, id string) (*models.Trainer, error) {
	if s.trainer == nil || s.trainer.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.trainer, nil
}

func (s *authRepoStub) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	s.lastLoginSeen = append(s.lastLoginSeen, id)
	return s.lastLoginErr
}

func newAuthFixture(t *testing.T, trainer *models.Trainer) (*AuthService, *authRepoStub) {
	t.Helper()
	repo := &authRepoStub{trainer: trainer}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "fitdesk-test",
	})
	return svc, repo
}

func activeTrainer(t *testing.T) *models.Trainer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Trainer{
		ID:           "trainer-1",
		Email:        "coach@fitdesk.io",
		PasswordHash: string(hash),
		FullName:     "Alex Coach",
		Specialty:    "strength",
		Active:       true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	svc, repo := newAuthFixture(t, activeTrainer(t))

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "coach@fitdesk.io", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "trainer-1", resp.Trainer.ID)
	assert.Equal(t, []string{"trainer-1"}, repo.lastLoginSeen)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "trainer-1", claims.TrainerID)
	assert.Equal(t, "coach@fitdesk.io", claims.Email)
	assert.Equal(t, "fitdesk-test", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, activeTrainer(t))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "coach@fitdesk.io", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t, activeTrainer(t))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@fitdesk.io", Password: "s3cret"})
	require.Error(t, err)
	// unknown accounts and bad passwords are indistinguishable to the caller
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	trainer := activeTrainer(t)
	trainer.Active = false
	svc, _ := newAuthFixture(t, trainer)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "coach@fitdesk.io", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc, _ := newAuthFixture(t, activeTrainer(t))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginSucceedsWhenLastLoginUpdateFails(t *testing.T) {
	svc, repo := newAuthFixture(t, activeTrainer(t))
	repo.lastLoginErr = sql.ErrConnDone

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "coach@fitdesk.io", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, activeTrainer(t))

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newAuthFixture(t, activeTrainer(t))
	other := NewAuthService(&authRepoStub{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "other-secret",
		AccessTokenExpiry: time.Hour,
	})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "coach@fitdesk.io", Password: "s3cret"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
