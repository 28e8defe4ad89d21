package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

func paidParticipant(userID, fee int, mode models.PaymentMode) *models.Participant {
	return &models.Participant{
		ID:            userID,
		UserID:        userID,
		Role:          models.RoleTeam,
		Status:        models.ParticipantConfirmed,
		FeeAmount:     fee,
		PaymentStatus: models.PaymentPaid,
		PaymentMode:   &mode,
	}
}

func unpaidParticipant(userID, fee int) *models.Participant {
	return &models.Participant{
		ID:            userID,
		UserID:        userID,
		Role:          models.RoleTeam,
		Status:        models.ParticipantConfirmed,
		FeeAmount:     fee,
		PaymentStatus: models.PaymentUnpaid,
	}
}

func TestPaymentService_MarkPayment(t *testing.T) {
	match := openMatch(1, 11, 3)
	matchRepo := &mockMatchRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Match, error) {
			return match, nil
		},
	}

	t.Run("captain marks a participant paid", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			FindByMatchAndUserFunc: func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
				return unpaidParticipant(42, 200), nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		p, err := svc.MarkPayment(context.Background(), match.ID, 1, MarkPaymentInput{TargetUserID: 42, PaymentMode: "UPI"})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, p.PaymentStatus)
		require.NotNil(t, p.PaymentMode)
		assert.Equal(t, models.PaymentModeUPI, *p.PaymentMode)
		require.Len(t, participantRepo.MarkPaymentCalls, 1)
	})

	t.Run("re-marking an already paid participant overwrites the mode", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			FindByMatchAndUserFunc: func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
				return paidParticipant(42, 200, models.PaymentModeCash), nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		p, err := svc.MarkPayment(context.Background(), match.ID, 1, MarkPaymentInput{TargetUserID: 42, PaymentMode: "UPI"})
		require.NoError(t, err, "re-marking is allowed, not an error")
		assert.Equal(t, models.PaymentModeUPI, *p.PaymentMode)
	})

	t.Run("non-captain cannot mark payments", func(t *testing.T) {
		svc := NewPaymentService(matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.MarkPayment(context.Background(), match.ID, 99, MarkPaymentInput{TargetUserID: 42, PaymentMode: "CASH"})
		assert.ErrorIs(t, err, ErrNotCaptain)
	})

	t.Run("unknown payment mode fails validation", func(t *testing.T) {
		svc := NewPaymentService(matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.MarkPayment(context.Background(), match.ID, 1, MarkPaymentInput{TargetUserID: 42, PaymentMode: "BARTER"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "PaymentMode")
	})

	t.Run("target must be a participant", func(t *testing.T) {
		svc := NewPaymentService(matchRepo, &mockParticipantRepo{}, testLogger())

		_, err := svc.MarkPayment(context.Background(), match.ID, 1, MarkPaymentInput{TargetUserID: 42, PaymentMode: "CASH"})
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}

func TestPaymentService_GetPaymentTracking(t *testing.T) {
	match := openMatch(1, 11, 3)
	matchRepo := &mockMatchRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Match, error) {
			return match, nil
		},
	}
	roster := []*models.Participant{
		paidParticipant(10, 200, models.PaymentModeCash),
		paidParticipant(11, 250, models.PaymentModeUPI),
		unpaidParticipant(12, 200),
	}

	t.Run("captain sees the full breakdown", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			ListByMatchFunc: func(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error) {
				assert.True(t, withUsers, "captain view should join user data")
				return roster, nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		tracking, err := svc.GetPaymentTracking(context.Background(), match.ID, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, tracking.TotalPlayers)
		assert.Equal(t, 2, tracking.PaidCount)
		assert.Equal(t, 1, tracking.UnpaidCount)
		assert.Equal(t, 450, tracking.TotalCollected)
		assert.Equal(t, 200, tracking.TotalPending)
		assert.Len(t, tracking.Players, 3)
		assert.Equal(t, tracking.TotalPlayers, tracking.PaidCount+tracking.UnpaidCount)
	})

	t.Run("unpaid filter narrows both the list and the aggregates", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			ListByMatchFunc: func(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error) {
				return roster, nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		filter := models.PaymentUnpaid
		tracking, err := svc.GetPaymentTracking(context.Background(), match.ID, 1, &filter)
		require.NoError(t, err)
		require.Len(t, tracking.Players, 1)
		assert.Equal(t, 12, tracking.Players[0].UserID)
		assert.Equal(t, 1, tracking.TotalPlayers, "totals are computed over the filtered rows")
		assert.Equal(t, 0, tracking.PaidCount)
		assert.Equal(t, 1, tracking.UnpaidCount)
		assert.Equal(t, 0, tracking.TotalCollected)
		assert.Equal(t, 200, tracking.TotalPending)
	})

	t.Run("paid filter leaves nothing pending", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			ListByMatchFunc: func(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error) {
				return roster, nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		filter := models.PaymentPaid
		tracking, err := svc.GetPaymentTracking(context.Background(), match.ID, 1, &filter)
		require.NoError(t, err)
		require.Len(t, tracking.Players, 2)
		assert.Equal(t, 2, tracking.TotalPlayers)
		assert.Equal(t, 0, tracking.UnpaidCount)
		assert.Equal(t, 450, tracking.TotalCollected)
		assert.Equal(t, 0, tracking.TotalPending)
	})

	t.Run("regular participant sees only their own row", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			FindByMatchAndUserFunc: func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
				return unpaidParticipant(12, 200), nil
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		tracking, err := svc.GetPaymentTracking(context.Background(), match.ID, 12, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, tracking.TotalPlayers)
		require.Len(t, tracking.Players, 1)
		assert.Equal(t, 12, tracking.Players[0].UserID)
		assert.Equal(t, 200, tracking.TotalPending)
	})

	t.Run("outsider gets nothing", func(t *testing.T) {
		participantRepo := &mockParticipantRepo{
			FindByMatchAndUserFunc: func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
				return nil, repositories.ErrParticipantNotFound
			},
		}
		svc := NewPaymentService(matchRepo, participantRepo, testLogger())

		_, err := svc.GetPaymentTracking(context.Background(), match.ID, 99, nil)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}
