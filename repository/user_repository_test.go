package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	sqlDB *sql.DB
	mock  sqlmock.Sqlmock
	repo  repository.UserRepository
}

func (s *UserRepositoryTestSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	s.Require().NoError(err)

	s.sqlDB = db
	s.mock = mock
	s.repo = repository.NewGormUserRepository(gormDB)
}

func (s *UserRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) TestFindByEmail() {
	id := uuid.New()
	now := time.Now()
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "email_verified", "verification_code", "role", "created_at", "updated_at"}).
			AddRow(id, "buyer@example.com", "hash", true, "", "user", now, now))

	u, err := s.repo.FindByEmail(context.Background(), "buyer@example.com")
	s.NoError(err)
	s.Equal(id, u.ID)
	s.True(u.EmailVerified)
}

func (s *UserRepositoryTestSuite) TestFindByEmail_NotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := s.repo.FindByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
	s.Nil(u)
}

func (s *UserRepositoryTestSuite) TestRevokeAllUserRefreshTokens() {
	userID := uuid.New()
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "refresh_tokens" SET "revoked"=$1 WHERE user_id = $2`)).
		WithArgs(true, userID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectCommit()

	s.NoError(s.repo.RevokeAllUserRefreshTokens(context.Background(), userID))
}

func (s *UserRepositoryTestSuite) TestRevokeRefreshTokenByTokenID() {
	query := regexp.QuoteMeta(`UPDATE "refresh_tokens" SET "revoked"=$1 WHERE token_id = $2 AND revoked = $3`)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(query).WithArgs(true, "jti-1", false).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	revoked, err := s.repo.RevokeRefreshTokenByTokenID(context.Background(), "jti-1")
	s.NoError(err)
	s.True(revoked)

	// a second rotation of the same token finds nothing left to revoke
	s.mock.ExpectBegin()
	s.mock.ExpectExec(query).WithArgs(true, "jti-1", false).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	revoked, err = s.repo.RevokeRefreshTokenByTokenID(context.Background(), "jti-1")
	s.NoError(err)
	s.False(revoked)
}

func (s *UserRepositoryTestSuite) TestDeleteExpiredRefreshTokens() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "refresh_tokens" WHERE expires_at < $1`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectCommit()

	n, err := s.repo.DeleteExpiredRefreshTokens(context.Background(), time.Now())
	s.NoError(err)
	s.Equal(int64(2), n)
}
