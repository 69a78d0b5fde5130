package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxwellzeha/jonduplastics/database"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var profileColumns = []string{"id", "first_name", "last_name", "email", "phone", "business_address", "created_at", "updated_at"}

func TestProfileFindByID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProfileRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(id, "Ada", "Obi", "ada@example.com", "+2348000000000", "12 Marina, Lagos", now, now))

	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "12 Marina, Lagos", p.BusinessAddress)
}

func TestProfileFindByID_MissingRelationKeepsSQLState(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProfileRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles"`)).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "profiles" does not exist`})

	p, err := repo.FindByID(context.Background(), uuid.New())
	assert.Nil(t, p)
	assert.True(t, database.IsUndefinedTable(err))
}

func TestProfileUpdate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProfileRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	req := &models.UpdateProfileRequest{FirstName: "Ada", LastName: "Obi", Phone: "1", BusinessAddress: "New address"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "profiles" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles"`)).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(id, "Ada", "Obi", "ada@example.com", "1", "New address", now, now))

	p, err := repo.Update(context.Background(), id, req)
	require.NoError(t, err)
	assert.Equal(t, "New address", p.BusinessAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdate_NoRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProfileRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "profiles" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.Update(context.Background(), uuid.New(), &models.UpdateProfileRequest{FirstName: "a", LastName: "b", Phone: "c", BusinessAddress: "d"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAccountStore_RollsBackOnError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormAccountStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email_verified", "role"}).AddRow(uuid.New(), false, "user"))
	mock.ExpectRollback()

	boom := errors.New("profile insert failed")
	err := store.WithinTransaction(context.Background(), func(users repository.UserRepository, _ repository.ProfileRepository) error {
		if err := users.Create(context.Background(), &models.User{Email: "a@b.c", Password: "hash"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
