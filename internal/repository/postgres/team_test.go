package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/domain"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
)

func newTeamTestFixture(t *testing.T) (*TeamRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewTeamRepository(mock)
	return repo, mock
}

func sampleTeam() *domain.Team {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Team{
		ID:          "team-1",
		Name:        "Platform",
		Description: "Platform engineering",
		OwnerID:     "u-owner",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestTeamRepository_Create_InsertsOwnerMembership(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	team := sampleTeam()

	mock.ExpectBegin()
	mock.ExpectExec("(?s)INSERT INTO teams").
		WithArgs(team.ID, team.Name, team.Description, team.OwnerID, team.CreatedAt, team.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO team_members").
		WithArgs(team.ID, team.OwnerID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), team)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_Create_RollsBackOnMembershipFailure(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	team := sampleTeam()

	mock.ExpectBegin()
	mock.ExpectExec("(?s)INSERT INTO teams").
		WithArgs(team.ID, team.Name, team.Description, team.OwnerID, team.CreatedAt, team.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO team_members").
		WithArgs(team.ID, team.OwnerID).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), team)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_GetByID_LoadsMembers(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	team := sampleTeam()

	mock.ExpectQuery("(?s)SELECT .+ FROM teams\\s+WHERE id =").
		WithArgs(team.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
			AddRow(team.ID, team.Name, team.Description, team.OwnerID, team.CreatedAt, team.UpdatedAt))
	mock.ExpectQuery("SELECT user_id FROM team_members").
		WithArgs(team.ID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("u-member").AddRow("u-owner"))

	got, err := repo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.Name, got.Name)
	assert.Equal(t, []string{"u-member", "u-owner"}, got.MemberIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("(?s)SELECT .+ FROM teams\\s+WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_RemoveMember_NotAMember(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM team_members").
		WithArgs("team-1", "u-ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.RemoveMember(context.Background(), "team-1", "u-ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_AddMember_DuplicateIsNoOp(t *testing.T) {
	repo, mock := newTeamTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO team_members").
		WithArgs("team-1", "u-member").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.AddMember(context.Background(), "team-1", "u-member")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
