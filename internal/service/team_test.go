package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// --- Mock Team Repository ---

type mockTeamRepository struct {
	mock.Mock
}

func (m *mockTeamRepository) Create(ctx context.Context, team *domain.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *mockTeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *mockTeamRepository) List(ctx context.Context, params pagination.Params) ([]domain.Team, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Team), args.Int(1), args.Error(2)
}

func (m *mockTeamRepository) Update(ctx context.Context, team *domain.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *mockTeamRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTeamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *mockTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

// --- Mock Notification Repository ---

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) ListByUserID(ctx context.Context, userID string, params pagination.Params) ([]domain.Notification, int, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Helpers ---

func newTestTeamService(teamRepo *mockTeamRepository, userRepo *mockUserRepository, notificationRepo *mockNotificationRepository) *TeamService {
	return NewTeamService(teamRepo, userRepo, notificationRepo, newTestLogger())
}

func sampleTeam() *domain.Team {
	now := time.Now().UTC()
	return &domain.Team{
		ID:          "team-1",
		Name:        "Platform",
		Description: "Platform engineering",
		OwnerID:     "u-owner",
		MemberIDs:   []string{"u-owner", "u-member"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// --- Create ---

func TestTeamCreate_OwnerBecomesMember(t *testing.T) {
	teamRepo := new(mockTeamRepository)
	teamRepo.On("Create", mock.Anything, mock.MatchedBy(func(team *domain.Team) bool {
		return team.OwnerID == "u-owner" && len(team.MemberIDs) == 1 && team.MemberIDs[0] == "u-owner"
	})).Return(nil)

	svc := newTestTeamService(teamRepo, new(mockUserRepository), new(mockNotificationRepository))

	team, err := svc.Create(context.Background(), "u-owner", CreateTeamInput{Name: "Platform"})

	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Equal(t, "Platform", team.Name)
	teamRepo.AssertExpectations(t)
}

func TestTeamCreate_EmptyName(t *testing.T) {
	svc := newTestTeamService(new(mockTeamRepository), new(mockUserRepository), new(mockNotificationRepository))

	_, err := svc.Create(context.Background(), "u-owner", CreateTeamInput{})

	assertCode(t, err, "INVALID_INPUT")
}

// --- AddMember ---

func TestTeamAddMember_CreatesNotification(t *testing.T) {
	team := sampleTeam()

	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, "team-1").Return(team, nil)
	teamRepo.On("AddMember", mock.Anything, "team-1", "u-new").Return(nil)

	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, "u-new").Return(activeUser("Str0ngPass"), nil)

	notificationRepo := new(mockNotificationRepository)
	notificationRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "u-new" && n.Type == domain.NotificationTeamAdded
	})).Return(nil)

	svc := newTestTeamService(teamRepo, userRepo, notificationRepo)

	err := svc.AddMember(context.Background(), "team-1", "u-new")

	require.NoError(t, err)
	teamRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestTeamAddMember_ExistingMemberIsNoOp(t *testing.T) {
	team := sampleTeam()

	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, "team-1").Return(team, nil)

	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, "u-member").Return(activeUser("Str0ngPass"), nil)

	svc := newTestTeamService(teamRepo, userRepo, new(mockNotificationRepository))

	err := svc.AddMember(context.Background(), "team-1", "u-member")

	require.NoError(t, err)
	teamRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamAddMember_NotificationFailureDoesNotBlock(t *testing.T) {
	team := sampleTeam()

	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, "team-1").Return(team, nil)
	teamRepo.On("AddMember", mock.Anything, "team-1", "u-new").Return(nil)

	userRepo := new(mockUserRepository)
	userRepo.On("GetByID", mock.Anything, "u-new").Return(activeUser("Str0ngPass"), nil)

	notificationRepo := new(mockNotificationRepository)
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(assert.AnError)

	svc := newTestTeamService(teamRepo, userRepo, notificationRepo)

	err := svc.AddMember(context.Background(), "team-1", "u-new")

	assert.NoError(t, err)
}

// --- RemoveMember ---

func TestTeamRemoveMember_Success(t *testing.T) {
	team := sampleTeam()

	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, "team-1").Return(team, nil)
	teamRepo.On("RemoveMember", mock.Anything, "team-1", "u-member").Return(nil)

	svc := newTestTeamService(teamRepo, new(mockUserRepository), new(mockNotificationRepository))

	err := svc.RemoveMember(context.Background(), "team-1", "u-member")

	assert.NoError(t, err)
	teamRepo.AssertExpectations(t)
}

func TestTeamRemoveMember_OwnerRejected(t *testing.T) {
	team := sampleTeam()

	teamRepo := new(mockTeamRepository)
	teamRepo.On("GetByID", mock.Anything, "team-1").Return(team, nil)

	svc := newTestTeamService(teamRepo, new(mockUserRepository), new(mockNotificationRepository))

	err := svc.RemoveMember(context.Background(), "team-1", "u-owner")

	assertCode(t, err, "INVALID_INPUT")
	teamRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}
