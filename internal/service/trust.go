package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/YusovID/barter-service/pkg/metrics"
)

// Weights of the trust score components. They sum to 1.
const (
	WeightVerification = 0.20
	WeightEndorsement  = 0.25
	WeightReputation   = 0.30
	WeightDispute      = 0.10
	WeightBehavior     = 0.15
)

const (
	endorsementSaturation = 10
	unratedReputation     = 0.8
	violationPenalty      = 0.05
	minRuleAdherence      = 0.5
	activitySaturation    = 5
	maxRating             = 5
)

// CalculateTrustScore derives the score breakdown from stats alone.
func CalculateTrustScore(stats domain.UserStats) domain.TrustScoreBreakdown {
	verification := float64(stats.Verifications.Count()) / 4

	endorsement := math.Min(float64(max(stats.Endorsements, 0))/endorsementSaturation, 1)

	reputation := unratedReputation
	if stats.RatingCount > 0 {
		reputation = clamp01(float64(stats.TotalRating) / float64(stats.RatingCount) / maxRating)
	}

	dispute := 1.0
	if stats.CompletedExchanges > 0 {
		dispute = clamp01(1 - float64(max(stats.Disputes, 0))/float64(stats.CompletedExchanges))
	}

	adherence := math.Max(minRuleAdherence, 1-float64(max(stats.RuleViolations, 0))*violationPenalty)
	activity := math.Min(1, float64(max(stats.CompletedExchanges, 0))/activitySaturation)
	behavior := (clamp01(stats.ResponseRate) + math.Min(adherence, 1) + activity) / 3

	total := 100 * (WeightVerification*verification +
		WeightEndorsement*endorsement +
		WeightReputation*reputation +
		WeightDispute*dispute +
		WeightBehavior*behavior)

	return domain.TrustScoreBreakdown{
		UserID:       stats.UserID,
		Verification: percent(verification),
		Endorsement:  percent(endorsement),
		Reputation:   percent(reputation),
		Dispute:      percent(dispute),
		Behavior:     percent(behavior),
		Total:        min(max(int(math.Round(total)), 0), 100),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Min(math.Max(v, 0), 1)
}

func percent(v float64) int {
	return int(math.Round(clamp01(v) * 100))
}

type TrustService interface {
	CalculateTrustScore(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error)
	GetStats(ctx context.Context, userID string) (*domain.UserStats, error)
	AddRating(ctx context.Context, userID string, rating int) error
	AddEndorsement(ctx context.Context, userID string) error
	RecordDispute(ctx context.Context, userID string) error
	RecordRuleViolation(ctx context.Context, userID string) error
	SetResponseRate(ctx context.Context, userID string, rate float64) error
	SetVerification(ctx context.Context, userID string, verify func(*domain.Verifications)) error
}

type TrustServiceImpl struct {
	BaseService
	stats repository.StatsRepository
}

func NewTrustService(db Transactor, log *slog.Logger, stats repository.StatsRepository) *TrustServiceImpl {
	return &TrustServiceImpl{
		BaseService: NewBaseService(db, log),
		stats:       stats,
	}
}

func (s *TrustServiceImpl) CalculateTrustScore(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	const op = "internal.service.trust.CalculateTrustScore"

	stats, err := s.stats.Get(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get stats: %w", op, err)
	}

	score := CalculateTrustScore(*stats)

	return &score, nil
}

func (s *TrustServiceImpl) GetStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	const op = "internal.service.trust.GetStats"

	stats, err := s.stats.Get(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get stats: %w", op, err)
	}

	return stats, nil
}

func (s *TrustServiceImpl) AddRating(ctx context.Context, userID string, rating int) error {
	const op = "internal.service.trust.AddRating"

	if rating < 1 || rating > maxRating {
		return apperrors.ErrInvalidRating
	}

	return s.mutate(ctx, op, userID, "rating", func(stats *domain.UserStats) {
		stats.TotalRating += rating
		stats.RatingCount++
	})
}

func (s *TrustServiceImpl) AddEndorsement(ctx context.Context, userID string) error {
	const op = "internal.service.trust.AddEndorsement"

	return s.mutate(ctx, op, userID, "endorsement", func(stats *domain.UserStats) {
		stats.Endorsements++
	})
}

func (s *TrustServiceImpl) RecordDispute(ctx context.Context, userID string) error {
	const op = "internal.service.trust.RecordDispute"

	return s.mutate(ctx, op, userID, "dispute", func(stats *domain.UserStats) {
		stats.Disputes++
	})
}

func (s *TrustServiceImpl) RecordRuleViolation(ctx context.Context, userID string) error {
	const op = "internal.service.trust.RecordRuleViolation"

	return s.mutate(ctx, op, userID, "rule_violation", func(stats *domain.UserStats) {
		stats.RuleViolations++
	})
}

func (s *TrustServiceImpl) SetResponseRate(ctx context.Context, userID string, rate float64) error {
	const op = "internal.service.trust.SetResponseRate"

	return s.mutate(ctx, op, userID, "response_rate", func(stats *domain.UserStats) {
		stats.ResponseRate = clamp01(rate)
	})
}

// SetVerification applies verify to the user's verification flags.
func (s *TrustServiceImpl) SetVerification(ctx context.Context, userID string, verify func(*domain.Verifications)) error {
	const op = "internal.service.trust.SetVerification"

	return s.mutate(ctx, op, userID, "verification", func(stats *domain.UserStats) {
		verify(&stats.Verifications)
	})
}

func (s *TrustServiceImpl) mutate(ctx context.Context, op, userID, event string, fn func(*domain.UserStats)) error {
	if userID == "" {
		return apperrors.ErrNotAuthenticated
	}

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		stats, err := s.stats.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("%s: failed to get stats with lock: %w", op, err)
		}

		fn(stats)

		if err := s.stats.Save(ctx, tx, stats); err != nil {
			return fmt.Errorf("%s: failed to save stats: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordTrustEvent(event)
	s.log.Debug("trust stats updated", slog.String("op", op), slog.String("user_id", userID), slog.String("event", event))

	return nil
}
