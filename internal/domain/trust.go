package domain

import "fmt"

type Verifications struct {
	Email   bool `json:"email"`
	Phone   bool `json:"phone"`
	ID      bool `json:"id"`
	Address bool `json:"address"`
}

// Count returns the number of verified flags.
func (v Verifications) Count() int {
	n := 0
	for _, ok := range []bool{v.Email, v.Phone, v.ID, v.Address} {
		if ok {
			n++
		}
	}

	return n
}

// UserStats holds the inputs of the trust score.
type UserStats struct {
	UserID             string        `json:"user_id"`
	CompletedExchanges int           `json:"completed_exchanges"`
	TotalRating        int           `json:"total_rating"`
	RatingCount        int           `json:"rating_count"`
	Disputes           int           `json:"disputes"`
	Endorsements       int           `json:"endorsements"`
	RuleViolations     int           `json:"rule_violations"`
	Verifications      Verifications `json:"verifications"`
	ResponseRate       float64       `json:"response_rate"`

	Version int64 `json:"-"`
}

// DefaultUserStats returns the stats of a user nobody has interacted with yet.
func DefaultUserStats(userID string) UserStats {
	return UserStats{
		UserID:        userID,
		Verifications: Verifications{Email: true},
		ResponseRate:  1.0,
	}
}

func (s *UserStats) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user stats have no user id")
	}

	return nil
}

// TrustScoreBreakdown is derived from UserStats and never stored.
type TrustScoreBreakdown struct {
	UserID       string `json:"user_id"`
	Verification int    `json:"verification"`
	Endorsement  int    `json:"endorsement"`
	Reputation   int    `json:"reputation"`
	Dispute      int    `json:"dispute"`
	Behavior     int    `json:"behavior"`
	Total        int    `json:"total"`
}
