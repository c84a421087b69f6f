package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/repository"
	"github.com/vytor/duodash/internal/repository/sqlite"
	"github.com/vytor/duodash/internal/testutil"
)

type ProfileRepositorySuite struct {
	suite.Suite
	db        *sql.DB
	repo      repository.ProfileRepository
	snapshots repository.SnapshotRepository
}

func (s *ProfileRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProfileRepository(s.db)
	s.snapshots = sqlite.NewSnapshotRepository(s.db)
}

func (s *ProfileRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ProfileRepositorySuite) TestUpsertIsIdempotent() {
	ctx := context.Background()

	first, err := s.repo.Upsert(ctx, "duoFan")
	s.Require().NoError(err)
	s.Assert().Greater(first.ID, int64(0))
	s.Assert().Nil(first.LastSyncAt)

	second, err := s.repo.Upsert(ctx, "DUOFAN")
	s.Require().NoError(err)
	s.Assert().Equal(first.ID, second.ID)
	s.Assert().Equal("duoFan", second.Username)

	profiles, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Assert().Len(profiles, 1)
}

func (s *ProfileRepositorySuite) TestGet_NotFound() {
	p, err := s.repo.Get(context.Background(), 404)
	s.Require().NoError(err)
	s.Assert().Nil(p)

	p, err = s.repo.GetByUsername(context.Background(), "ghost")
	s.Require().NoError(err)
	s.Assert().Nil(p)
}

func (s *ProfileRepositorySuite) TestGetByUsername_CaseInsensitive() {
	ctx := context.Background()
	created, err := s.repo.Upsert(ctx, "Lingo")
	s.Require().NoError(err)

	found, err := s.repo.GetByUsername(ctx, "lingo")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Assert().Equal(created.ID, found.ID)
}

func (s *ProfileRepositorySuite) TestUpdateSync() {
	ctx := context.Background()
	p, err := s.repo.Upsert(ctx, "owl")
	s.Require().NoError(err)

	syncedAt := time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repo.UpdateSync(ctx, p.ID, syncedAt))

	got, err := s.repo.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.LastSyncAt)
	s.Assert().True(syncedAt.Equal(*got.LastSyncAt))
}

func (s *ProfileRepositorySuite) TestList_OrderedByCreation() {
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.repo.Upsert(ctx, name)
		s.Require().NoError(err)
	}

	profiles, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(profiles, 3)
	s.Assert().Equal("a", profiles[0].Username)
	s.Assert().Equal("c", profiles[2].Username)
}

func (s *ProfileRepositorySuite) TestDelete_RemovesSnapshots() {
	ctx := context.Background()
	p, err := s.repo.Upsert(ctx, "owl")
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "other")
	s.Require().NoError(err)

	now := time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC)
	s.Require().NoError(s.snapshots.Insert(ctx, testutil.Snapshot("s1", "owl", 3, 100, now)))
	s.Require().NoError(s.snapshots.Insert(ctx, testutil.Snapshot("s2", "other", 5, 200, now)))

	s.Require().NoError(s.repo.Delete(ctx, p.ID))

	got, err := s.repo.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)

	owl, err := s.snapshots.Count(ctx, models.SnapshotFilter{Username: "owl"})
	s.Require().NoError(err)
	s.Assert().Zero(owl)

	other, err := s.snapshots.Count(ctx, models.SnapshotFilter{Username: "other"})
	s.Require().NoError(err)
	s.Assert().Equal(1, other)
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileRepositorySuite))
}
