package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

func newUserRepoMock(t *testing.T) (*userRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &userRepository{q: db}, mock
}

func userRows(user *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "phone", "security_stamp",
		"is_active", "is_email_confirmed", "created_at", "updated_at", "last_login_at",
	}).AddRow(
		user.ID, user.Email, user.PasswordHash, user.FullName, nil, user.SecurityStamp,
		user.IsActive, user.IsEmailConfirmed, user.CreatedAt, user.UpdatedAt, nil,
	)
}

func TestUserCreate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			sqlmock.AnyArg(), "new@example.com", "hash", "New User", nil,
			sqlmock.AnyArg(), true, false, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &domain.User{
		Email:        "new@example.com",
		PasswordHash: "hash",
		FullName:     "New User",
		IsActive:     true,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.SecurityStamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	want := &domain.User{
		ID:            "user-1",
		Email:         "found@example.com",
		PasswordHash:  "hash",
		FullName:      "Found User",
		SecurityStamp: "stamp",
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("found@example.com").
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "found@example.com")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Email, got.Email)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdatePassword(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET password_hash = $2, security_stamp = $3`)).
		WithArgs("user-1", "new-hash", "new-stamp", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "user-1", "new-hash", "new-stamp")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePasswordNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET password_hash = $2, security_stamp = $3`)).
		WithArgs("ghost", "new-hash", "new-stamp", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "new-hash", "new-stamp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserConfirmEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET is_email_confirmed = TRUE`)).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ConfirmEmail(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
