//go:build integration

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/testutil/containers"
)

type RepositorySuite struct {
	suite.Suite
	pg   *containers.PostgresContainer
	repo *auth.Repository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.repo = auth.NewRepository(s.pg.Pool)
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "users"))
}

func (s *RepositorySuite) TestEnsureDefaultAdminIsIdempotent() {
	ctx := context.Background()
	hash, err := auth.HashPassword("first")
	s.Require().NoError(err)
	created, err := s.repo.EnsureDefaultAdmin(ctx, " Admin ", hash)
	s.Require().NoError(err)
	s.True(created)

	other, err := auth.HashPassword("second")
	s.Require().NoError(err)
	created, err = s.repo.EnsureDefaultAdmin(ctx, "admin", other)
	s.Require().NoError(err)
	s.False(created)

	u, err := s.repo.GetByUsername(ctx, "ADMIN")
	s.Require().NoError(err)
	s.True(u.IsAdmin)
	s.True(auth.CheckPassword("first", u.Password), "existing password is kept")
}

func (s *RepositorySuite) TestCreateAndUpdate() {
	ctx := context.Background()
	u, err := s.repo.Create(ctx, auth.CreateUserParams{Username: "Reception", PasswordHash: "x", FirstName: "Eva"})
	s.Require().NoError(err)
	s.Equal("reception", u.Username)
	s.True(u.Enabled)

	_, err = s.repo.Create(ctx, auth.CreateUserParams{Username: "reception", PasswordHash: "y"})
	s.True(apperr.Is(err, apperr.KindConflict))

	s.Require().NoError(s.repo.UpdateProfile(ctx, u.ID, "Eva", "Nová", "eva@example.com"))
	s.Require().NoError(s.repo.TouchLastLogin(ctx, u.ID))
	got, err := s.repo.GetByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Nová", got.LastName)

	s.True(apperr.Is(s.repo.UpdatePassword(ctx, 9999, "z"), apperr.KindNotFound))
}
