//go:build integration

package guestbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/guestdesk/backend/internal/guestbook"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/testutil/containers"
)

type RepositorySuite struct {
	suite.Suite
	pg   *containers.PostgresContainer
	repo *guestbook.Repository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.repo = guestbook.NewRepository(s.pg.Pool)
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "guest_book"))
}

func visitor(last string) models.Visitor {
	return models.Visitor{FirstName: "Jiří", LastName: last, Company: "Acme", Phone: "+420777123456"}
}

func (s *RepositorySuite) TestAppendAndDownloadFidelity() {
	ctx := context.Background()
	pdf := []byte("%PDF-1.4\x00\x01\x02 binary \xff\xfe")
	email := "jiri@example.com"
	v := visitor("Novák")
	v.Email = &email

	sub, err := s.repo.Append(ctx, v, pdf)
	s.Require().NoError(err)
	s.NotZero(sub.ID)
	s.False(sub.CreatedAt.IsZero())

	got, summary, err := s.repo.GetDocument(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(pdf, got)
	s.Equal("Novák", summary.LastName)
	s.Require().NotNil(summary.Email)
	s.Equal(email, *summary.Email)
	s.True(sub.CreatedAt.Equal(summary.CreatedAt))
}

func (s *RepositorySuite) TestListNewestFirst() {
	ctx := context.Background()
	first, err := s.repo.Append(ctx, visitor("First"), []byte("a"))
	s.Require().NoError(err)
	second, err := s.repo.Append(ctx, visitor("Second"), []byte("b"))
	s.Require().NoError(err)

	list, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
	s.Nil(list[0].Email)
}

func (s *RepositorySuite) TestRowsAreWriteOnce() {
	ctx := context.Background()
	sub, err := s.repo.Append(ctx, visitor("Immutable"), []byte("original"))
	s.Require().NoError(err)

	_, err = s.pg.Pool.Exec(ctx, `UPDATE guest_book SET pdf_file = 'changed' WHERE id = $1`, sub.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "immutable")

	got, _, err := s.repo.GetDocument(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal([]byte("original"), got)
}

func (s *RepositorySuite) TestGetDocumentNotFound() {
	_, _, err := s.repo.GetDocument(context.Background(), 999)
	s.True(apperr.Is(err, apperr.KindNotFound))
}
