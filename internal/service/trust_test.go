package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrustWeightsSumToOne(t *testing.T) {
	sum := WeightVerification + WeightEndorsement + WeightReputation + WeightDispute + WeightBehavior
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCalculateTrustScore(t *testing.T) {
	testCases := []struct {
		name     string
		stats    domain.UserStats
		expected domain.TrustScoreBreakdown
	}{
		{
			name:  "new user defaults",
			stats: domain.DefaultUserStats("u1"),
			expected: domain.TrustScoreBreakdown{
				UserID:       "u1",
				Verification: 25,
				Endorsement:  0,
				Reputation:   80,
				Dispute:      100,
				Behavior:     67,
				Total:        49,
			},
		},
		{
			name: "established trader",
			stats: domain.UserStats{
				UserID:             "u2",
				CompletedExchanges: 10,
				TotalRating:        45,
				RatingCount:        10,
				Disputes:           1,
				Endorsements:       5,
				RuleViolations:     2,
				Verifications:      domain.Verifications{Email: true, Phone: true, Address: true},
				ResponseRate:       0.6,
			},
			// behavior = (0.6 + 0.9 + 1) / 3
			// total = 100 * (0.2*0.75 + 0.25*0.5 + 0.3*0.9 + 0.1*0.9 + 0.15*0.8333) = 76
			expected: domain.TrustScoreBreakdown{
				UserID:       "u2",
				Verification: 75,
				Endorsement:  50,
				Reputation:   90,
				Dispute:      90,
				Behavior:     83,
				Total:        76,
			},
		},
		{
			name: "saturated everything",
			stats: domain.UserStats{
				UserID:             "u3",
				CompletedExchanges: 50,
				TotalRating:        250,
				RatingCount:        50,
				Endorsements:       40,
				Verifications:      domain.Verifications{Email: true, Phone: true, ID: true, Address: true},
				ResponseRate:       1,
			},
			expected: domain.TrustScoreBreakdown{
				UserID:       "u3",
				Verification: 100,
				Endorsement:  100,
				Reputation:   100,
				Dispute:      100,
				Behavior:     100,
				Total:        100,
			},
		},
		{
			name: "more disputes than exchanges",
			stats: domain.UserStats{
				UserID:             "u4",
				CompletedExchanges: 2,
				Disputes:           7,
				RuleViolations:     40,
				ResponseRate:       0.3,
			},
			// behavior = (0.3 + 0.5 + 0.4) / 3 = 0.4
			// total = 100 * (0.3*0.8 + 0.15*0.4) = 30
			expected: domain.TrustScoreBreakdown{
				UserID:       "u4",
				Verification: 0,
				Endorsement:  0,
				Reputation:   80,
				Dispute:      0,
				Behavior:     40,
				Total:        30,
			},
		},
		{
			name: "response rate outside the unit interval",
			stats: domain.UserStats{
				UserID:       "u5",
				ResponseRate: 7.5,
			},
			expected: domain.TrustScoreBreakdown{
				UserID:       "u5",
				Verification: 0,
				Endorsement:  0,
				Reputation:   80,
				Dispute:      100,
				Behavior:     67,
				Total:        44,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateTrustScore(tc.stats))
		})
	}
}

func FuzzCalculateTrustScore(f *testing.F) {
	f.Add(0, 0, 0, 0, 0, 0, 1.0, uint8(1))
	f.Add(2, 10, 1, 9, 3, 20, 0.4, uint8(15))
	f.Add(1, -5, 3, 100, -2, -1, -3.0, uint8(0))
	f.Add(0, 1<<30, 1, 1<<30, 1<<30, 1<<30, math.Inf(1), uint8(7))

	f.Fuzz(func(t *testing.T, exchanges, totalRating, ratingCount, disputes, endorsements, violations int, responseRate float64, flags uint8) {
		stats := domain.UserStats{
			UserID:             "fuzz",
			CompletedExchanges: exchanges,
			TotalRating:        totalRating,
			RatingCount:        ratingCount,
			Disputes:           disputes,
			Endorsements:       endorsements,
			RuleViolations:     violations,
			Verifications: domain.Verifications{
				Email:   flags&1 != 0,
				Phone:   flags&2 != 0,
				ID:      flags&4 != 0,
				Address: flags&8 != 0,
			},
			ResponseRate: responseRate,
		}

		score := CalculateTrustScore(stats)

		for name, v := range map[string]int{
			"verification": score.Verification,
			"endorsement":  score.Endorsement,
			"reputation":   score.Reputation,
			"dispute":      score.Dispute,
			"behavior":     score.Behavior,
			"total":        score.Total,
		} {
			if v < 0 || v > 100 {
				t.Fatalf("%s = %d out of range for %+v", name, v, stats)
			}
		}
	})
}

func TestTrustServiceImpl_AddRating(t *testing.T) {
	testCases := []struct {
		name        string
		rating      int
		setupMocks  func(transactor *TransactorMock, stats *StatsRepositoryMock, tx interface{})
		expectedErr error
		commit      bool
	}{
		{name: "zero", rating: 0, expectedErr: apperrors.ErrInvalidRating},
		{name: "six", rating: 6, expectedErr: apperrors.ErrInvalidRating},
		{
			name:   "five stars",
			rating: 5,
			setupMocks: func(transactor *TransactorMock, stats *StatsRepositoryMock, tx interface{}) {
				current := domain.DefaultUserStats("u1")
				current.TotalRating = 4
				current.RatingCount = 1
				current.Version = 2

				transactor.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				stats.On("GetForUpdate", mock.Anything, tx, "u1").Return(&current, nil).Once()
				stats.On("Save", mock.Anything, tx, mock.MatchedBy(func(s *domain.UserStats) bool {
					return s.TotalRating == 9 && s.RatingCount == 2 && s.Version == 2
				})).Return(nil).Once()
			},
			commit: true,
		},
		{
			name:   "save conflict",
			rating: 3,
			setupMocks: func(transactor *TransactorMock, stats *StatsRepositoryMock, tx interface{}) {
				current := domain.DefaultUserStats("u1")

				transactor.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				stats.On("GetForUpdate", mock.Anything, tx, "u1").Return(&current, nil).Once()
				stats.On("Save", mock.Anything, tx, mock.Anything).Return(apperrors.ErrConflict).Once()
			},
			expectedErr: apperrors.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transactor := new(TransactorMock)
			stats := new(StatsRepositoryMock)
			_, mockedTx, smock := newMockDBAndTx(t)

			if tc.commit {
				smock.ExpectCommit()
			} else {
				smock.ExpectRollback()
			}

			if tc.setupMocks != nil {
				tc.setupMocks(transactor, stats, mockedTx)
			}

			err := NewTrustService(transactor, discardLogger(), stats).AddRating(context.Background(), "u1", tc.rating)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.NoError(t, smock.ExpectationsWereMet())
			}

			transactor.AssertExpectations(t)
			stats.AssertExpectations(t)
		})
	}
}

func TestTrustServiceImpl_CalculateTrustScore(t *testing.T) {
	transactor := new(TransactorMock)
	stats := new(StatsRepositoryMock)
	db, _, _ := newMockDBAndTx(t)

	defaults := domain.DefaultUserStats("u1")
	transactor.On("Executor").Return(db)
	stats.On("Get", mock.Anything, db, "u1").Return(&defaults, nil).Once()
	stats.On("Get", mock.Anything, db, "u2").Return(nil, errors.New("timeout")).Once()

	svc := NewTrustService(transactor, discardLogger(), stats)

	score, err := svc.CalculateTrustScore(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 49, score.Total)

	_, err = svc.CalculateTrustScore(context.Background(), "u2")
	assert.Error(t, err)
}
