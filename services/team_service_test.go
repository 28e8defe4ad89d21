package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
	"github.com/playmatch/playmatch-server/storage"
)

type mockTeamRepo struct {
	CreateFunc      func(ctx context.Context, team *models.Team) error
	GetByIDFunc     func(ctx context.Context, id int) (*models.Team, error)
	GetMemberFunc   func(ctx context.Context, teamID, userID int) (*models.TeamMember, error)
	ListMembersFunc func(ctx context.Context, teamID int) ([]*models.TeamMember, error)
	AddMemberFunc   func(ctx context.Context, member *models.TeamMember) error
	SearchFunc      func(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error)

	AddMemberCalls     []*models.TeamMember
	RemoveMemberCalls  []int
	SoftDeleteCalls    []int
	UpdateCalls        []*models.Team
	UpdateLogoKeyCalls []string
}

func (m *mockTeamRepo) Create(ctx context.Context, team *models.Team) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, team)
	}
	team.ID = 1
	return nil
}

func (m *mockTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTeamNotFound
}

func (m *mockTeamRepo) Update(ctx context.Context, team *models.Team) error {
	m.UpdateCalls = append(m.UpdateCalls, team)
	return nil
}

func (m *mockTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey string) error {
	m.UpdateLogoKeyCalls = append(m.UpdateLogoKeyCalls, logoKey)
	return nil
}

func (m *mockTeamRepo) SoftDelete(ctx context.Context, id int) error {
	m.SoftDeleteCalls = append(m.SoftDeleteCalls, id)
	return nil
}

func (m *mockTeamRepo) Search(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, city, name, limit, offset)
	}
	return nil, nil
}

func (m *mockTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	m.AddMemberCalls = append(m.AddMemberCalls, member)
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, member)
	}
	return nil
}

func (m *mockTeamRepo) GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(ctx, teamID, userID)
	}
	return nil, repositories.ErrTeamMemberNotFound
}

func (m *mockTeamRepo) RemoveMember(ctx context.Context, teamID, userID int) error {
	m.RemoveMemberCalls = append(m.RemoveMemberCalls, userID)
	return nil
}

func (m *mockTeamRepo) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, teamID)
	}
	return nil, nil
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)

	UploadCalls []string
	DeleteCalls []string
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	m.UploadCalls = append(m.UploadCalls, key)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, reader)
	}
	return &storage.UploadResult{Key: key, Location: "https://cdn.playmatch.app/" + key}, nil
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	m.DeleteCalls = append(m.DeleteCalls, key)
	return nil
}

func (m *mockUploader) GetPublicURL(key string) string {
	return "https://cdn.playmatch.app/" + key
}

func adminTeamRepo(team *models.Team, adminID int) *mockTeamRepo {
	return &mockTeamRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*models.Team, error) {
			return team, nil
		},
		GetMemberFunc: func(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
			if userID == adminID {
				return &models.TeamMember{TeamID: teamID, UserID: userID, Role: models.TeamRoleAdmin}, nil
			}
			return &models.TeamMember{TeamID: teamID, UserID: userID, Role: models.TeamRoleMember}, nil
		},
	}
}

func TestTeamService_CreateTeam(t *testing.T) {
	t.Run("creator becomes the admin", func(t *testing.T) {
		teamRepo := &mockTeamRepo{}
		svc := NewTeamService(teamRepo, &mockUserRepo{}, nil, testLogger())

		team, err := svc.CreateTeam(context.Background(), 42, CreateTeamInput{Name: "Night Owls"})
		require.NoError(t, err)
		assert.Equal(t, "Night Owls", team.Name)
		assert.True(t, team.Active)
		require.Len(t, teamRepo.AddMemberCalls, 1)
		assert.Equal(t, models.TeamRoleAdmin, teamRepo.AddMemberCalls[0].Role)
		assert.Equal(t, 42, teamRepo.AddMemberCalls[0].UserID)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		teamRepo := &mockTeamRepo{
			CreateFunc: func(ctx context.Context, team *models.Team) error {
				return repositories.ErrTeamNameConflict
			},
		}
		svc := NewTeamService(teamRepo, &mockUserRepo{}, nil, testLogger())

		_, err := svc.CreateTeam(context.Background(), 42, CreateTeamInput{Name: "Night Owls"})
		assert.ErrorIs(t, err, ErrTeamNameConflict)
	})
}

func TestTeamService_AddMember(t *testing.T) {
	team := &models.Team{ID: 1, Name: "Night Owls", Active: true}

	t.Run("admin adds an existing user", func(t *testing.T) {
		teamRepo := adminTeamRepo(team, 42)
		userRepo := &mockUserRepo{
			GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
		}
		svc := NewTeamService(teamRepo, userRepo, nil, testLogger())

		member, err := svc.AddMember(context.Background(), 1, 42, AddTeamMemberInput{UserID: 50, Role: "MEMBER"})
		require.NoError(t, err)
		assert.Equal(t, models.TeamRoleMember, member.Role)
		assert.Equal(t, 50, member.UserID)
	})

	t.Run("plain member cannot manage the roster", func(t *testing.T) {
		teamRepo := adminTeamRepo(team, 42)
		svc := NewTeamService(teamRepo, &mockUserRepo{}, nil, testLogger())

		_, err := svc.AddMember(context.Background(), 1, 50, AddTeamMemberInput{UserID: 51, Role: "MEMBER"})
		assert.ErrorIs(t, err, ErrTeamAdminForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		teamRepo := adminTeamRepo(team, 42)
		svc := NewTeamService(teamRepo, &mockUserRepo{}, nil, testLogger())

		_, err := svc.AddMember(context.Background(), 1, 42, AddTeamMemberInput{UserID: 50, Role: "MEMBER"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("already in the team", func(t *testing.T) {
		teamRepo := adminTeamRepo(team, 42)
		teamRepo.AddMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
			return repositories.ErrTeamMemberConflict
		}
		userRepo := &mockUserRepo{
			GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
		}
		svc := NewTeamService(teamRepo, userRepo, nil, testLogger())

		_, err := svc.AddMember(context.Background(), 1, 42, AddTeamMemberInput{UserID: 50, Role: "MEMBER"})
		assert.ErrorIs(t, err, ErrTeamMemberConflict)
	})
}

func TestTeamService_UploadLogo(t *testing.T) {
	t.Run("replaces the logo and deletes the old object", func(t *testing.T) {
		oldKey := "teams/1/logo-100.png"
		team := &models.Team{ID: 1, Name: "Night Owls", Active: true, LogoKey: &oldKey}
		teamRepo := adminTeamRepo(team, 42)
		uploader := &mockUploader{}
		svc := NewTeamService(teamRepo, &mockUserRepo{}, uploader, testLogger())

		updated, err := svc.UploadLogo(context.Background(), 1, 42, "image/png", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		require.Len(t, uploader.UploadCalls, 1)
		assert.Contains(t, uploader.UploadCalls[0], "teams/1/logo-")
		require.Len(t, teamRepo.UpdateLogoKeyCalls, 1)
		require.Len(t, uploader.DeleteCalls, 1, "previous logo object should be removed")
		assert.Equal(t, oldKey, uploader.DeleteCalls[0])
		require.NotNil(t, updated.LogoURL)
		assert.Contains(t, *updated.LogoURL, "https://cdn.playmatch.app/")
	})

	t.Run("unsupported content type", func(t *testing.T) {
		svc := NewTeamService(&mockTeamRepo{}, &mockUserRepo{}, &mockUploader{}, testLogger())

		_, err := svc.UploadLogo(context.Background(), 1, 42, "image/gif", strings.NewReader("gif"))
		assert.ErrorIs(t, err, ErrUnsupportedLogoType)
	})

	t.Run("only a team admin can change the logo", func(t *testing.T) {
		team := &models.Team{ID: 1, Name: "Night Owls", Active: true}
		teamRepo := adminTeamRepo(team, 42)
		svc := NewTeamService(teamRepo, &mockUserRepo{}, &mockUploader{}, testLogger())

		_, err := svc.UploadLogo(context.Background(), 1, 50, "image/png", strings.NewReader("png"))
		assert.ErrorIs(t, err, ErrTeamAdminForbidden)
	})
}

func TestTeamService_SearchTeams(t *testing.T) {
	var gotLimit, gotOffset int
	teamRepo := &mockTeamRepo{
		SearchFunc: func(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := NewTeamService(teamRepo, &mockUserRepo{}, nil, testLogger())

	_, err := svc.SearchTeams(context.Background(), "Bangalore", "", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit, "zero limit should fall back to the default")
	assert.Equal(t, 0, gotOffset, "negative offset should be clamped")

	_, err = svc.SearchTeams(context.Background(), "", "", 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit, "oversized limit should fall back to the default")
	assert.Equal(t, 10, gotOffset)
}

func TestTeamService_DeleteTeam(t *testing.T) {
	logoKey := "teams/1/logo-100.png"
	team := &models.Team{ID: 1, Name: "Night Owls", Active: true, LogoKey: &logoKey}
	teamRepo := adminTeamRepo(team, 42)
	uploader := &mockUploader{}
	svc := NewTeamService(teamRepo, &mockUserRepo{}, uploader, testLogger())

	err := svc.DeleteTeam(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Len(t, teamRepo.SoftDeleteCalls, 1)
	require.Len(t, uploader.DeleteCalls, 1)
	assert.Equal(t, logoKey, uploader.DeleteCalls[0])
}
