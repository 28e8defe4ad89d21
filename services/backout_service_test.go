package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/playmatch-server/models"
)

type mockBackoutRepo struct {
	CreateCalls []*models.BackoutLog
}

func (m *mockBackoutRepo) Create(ctx context.Context, log *models.BackoutLog) error {
	m.CreateCalls = append(m.CreateCalls, log)
	return nil
}

func TestBackoutService_LogBackout(t *testing.T) {
	match := openMatch(1, 11, 3)
	matchRepo := &mockMatchRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Match, error) {
			return match, nil
		},
	}

	t.Run("captain logs a backout for a participant", func(t *testing.T) {
		backoutRepo := &mockBackoutRepo{}
		participantRepo := &mockParticipantRepo{
			FindByMatchAndUserFunc: func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
				return &models.Participant{ID: 7, MatchID: matchID, UserID: userID}, nil
			},
		}
		svc := NewBackoutService(backoutRepo, matchRepo, participantRepo, testLogger())

		log, err := svc.LogBackout(context.Background(), match.ID, 1, LogBackoutInput{UserID: 42, Reason: "INJURY"})
		require.NoError(t, err)
		assert.Equal(t, models.BackoutReasonInjury, log.Reason)
		assert.Equal(t, 1, log.LoggedBy)
		require.Len(t, backoutRepo.CreateCalls, 1)
	})

	t.Run("non-captain cannot log", func(t *testing.T) {
		svc := NewBackoutService(&mockBackoutRepo{}, matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.LogBackout(context.Background(), match.ID, 99, LogBackoutInput{UserID: 42, Reason: "INJURY"})
		assert.ErrorIs(t, err, ErrNotCaptain)
	})

	t.Run("target must be a participant", func(t *testing.T) {
		svc := NewBackoutService(&mockBackoutRepo{}, matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.LogBackout(context.Background(), match.ID, 1, LogBackoutInput{UserID: 42, Reason: "TRAVEL"})
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("unknown reason fails validation", func(t *testing.T) {
		svc := NewBackoutService(&mockBackoutRepo{}, matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.LogBackout(context.Background(), match.ID, 1, LogBackoutInput{UserID: 42, Reason: "VIBES"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "Reason")
	})
}
