package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/auth"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository/memory"
	"github.com/YusovID/barter-service/internal/repository/records"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type marketplace struct {
	store         *memory.Store
	auth          *AuthServiceImpl
	barter        *BarterServiceImpl
	trust         *TrustServiceImpl
	notifications *NotificationServiceImpl
	listings      *ListingServiceImpl
	communities   *CommunityServiceImpl
	profiles      *ProfileServiceImpl
	listingRepo   *records.ListingRepository
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()

	log := discardLogger()
	store := memory.New()

	users := records.NewUserRepository(store, log)
	stats := records.NewStatsRepository(store)
	listingRepo := records.NewListingRepository(store, log)
	communityRepo := records.NewCommunityRepository(store, log)
	notificationRepo := records.NewNotificationRepository(store)
	barterRepo := records.NewBarterRepository(store, log)

	notifications := NewNotificationService(store, log, notificationRepo)

	authSvc := NewAuthService(store, log, users, stats, auth.NewJWTService("test-secret", time.Hour))
	authSvc.cost = bcrypt.MinCost

	return &marketplace{
		store:         store,
		auth:          authSvc,
		barter:        NewBarterService(store, log, barterRepo, listingRepo, users, stats, notifications),
		trust:         NewTrustService(store, log, stats),
		notifications: notifications,
		listings:      NewListingService(store, log, listingRepo, users, communityRepo),
		communities:   NewCommunityService(store, log, communityRepo, users),
		profiles:      NewProfileService(store, log, users, stats),
		listingRepo:   listingRepo,
	}
}

// seed creates owner O, requester Q, a shared community and O's listing L.
func (m *marketplace) seed(t *testing.T) (owner, requester *domain.User, listing *domain.Listing) {
	t.Helper()

	ctx := context.Background()

	owner, _, err := m.auth.Signup(ctx, "olive@example.com", "password-o", "Olive")
	require.NoError(t, err)

	requester, _, err = m.auth.Signup(ctx, "quinn@example.com", "password-q", "Quinn")
	require.NoError(t, err)

	community, err := m.communities.CreateCommunity(ctx, owner.ID, domain.CommunityInput{Name: "Maple Street"})
	require.NoError(t, err)

	_, err = m.communities.JoinCommunity(ctx, requester.ID, community.InviteCode)
	require.NoError(t, err)

	listing, err = m.listings.CreateListing(ctx, owner.ID, domain.ListingInput{
		Title:          "Lawn mower",
		Description:    "Petrol, 2 years old",
		Category:       domain.ListingCategoryProduct,
		EstimatedValue: decimal.NewFromInt(120),
		CommunityID:    community.ID,
	})
	require.NoError(t, err)

	return owner, requester, listing
}

func (m *marketplace) exchanges(t *testing.T, userID string) int {
	t.Helper()

	stats, err := m.trust.GetStats(context.Background(), userID)
	require.NoError(t, err)

	return stats.CompletedExchanges
}

func notificationTypes(t *testing.T, m *marketplace, userID string) []domain.NotificationType {
	t.Helper()

	ns, err := m.notifications.GetMyNotifications(context.Background(), userID)
	require.NoError(t, err)

	types := make([]domain.NotificationType, len(ns))
	for i, n := range ns {
		types[i] = n.Type
	}

	return types
}

func TestScenario_FullExchange(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "2 hours gardening")
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusPending, req.Status)
	assert.Equal(t, owner.ID, req.OwnerID)
	assert.Equal(t, "Olive", req.OwnerName)

	req, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusOwnerAccepted, req.Status)
	assert.Contains(t, notificationTypes(t, m, requester.ID), domain.NotificationBarterOwnerAccepted)

	req, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusBothAccepted, req.Status)
	assert.Len(t, req.OwnerConfirmationCode, 6)
	assert.Len(t, req.RequesterConfirmationCode, 6)
	assert.NotEqual(t, req.OwnerConfirmationCode, req.RequesterConfirmationCode)

	l, err := m.listings.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.False(t, l.IsActive)

	req, err = m.barter.CompleteBarter(ctx, req.ID, owner.ID, req.OwnerConfirmationCode)
	require.NoError(t, err)
	assert.True(t, req.OwnerCompleted)
	assert.Equal(t, domain.BarterStatusBothAccepted, req.Status)
	assert.Equal(t, 0, m.exchanges(t, owner.ID))

	req, err = m.barter.CompleteBarter(ctx, req.ID, requester.ID, req.RequesterConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusCompleted, req.Status)
	require.NotNil(t, req.CompletedAt)
	assert.Equal(t, 1, m.exchanges(t, owner.ID))
	assert.Equal(t, 1, m.exchanges(t, requester.ID))

	assert.Equal(t, []domain.NotificationType{
		domain.NotificationBarterCompleted,
		domain.NotificationBarterBothAccepted,
		domain.NotificationBarterRequest,
	}, notificationTypes(t, m, owner.ID))

	stored, err := m.barter.GetRequest(ctx, req.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, req.OwnerConfirmationCode, stored.OwnerConfirmationCode)
	assert.Equal(t, domain.BarterStatusCompleted, stored.Status)
}

func TestScenario_RejectedIsTerminal(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "a dozen eggs")
	require.NoError(t, err)

	req, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusRejected, req.Status)
	assert.Contains(t, notificationTypes(t, m, requester.ID), domain.NotificationBarterRejected)

	_, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = m.barter.CompleteBarter(ctx, req.ID, owner.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrNotReady)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	l, err := m.listings.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, l.IsActive)

	again, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "two dozen eggs")
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestScenario_WrongCodeLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "bike repair")
	require.NoError(t, err)

	_, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	require.NoError(t, err)

	req, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	require.NoError(t, err)

	_, err = m.barter.CompleteBarter(ctx, req.ID, requester.ID, req.OwnerConfirmationCode)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCode)

	after, err := m.barter.GetRequest(ctx, req.ID, requester.ID)
	require.NoError(t, err)
	assert.False(t, after.RequesterCompleted)
	assert.False(t, after.OwnerCompleted)
	assert.Equal(t, domain.BarterStatusBothAccepted, after.Status)
	assert.Equal(t, req.UpdatedAt, after.UpdatedAt)
}

func TestScenario_CodesAreFixedOnceIssued(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "piano lesson")
	require.NoError(t, err)

	_, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	require.NoError(t, err)

	req, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	require.NoError(t, err)

	for _, actor := range []string{owner.ID, requester.ID} {
		_, err = m.barter.RespondToRequest(ctx, req.ID, actor, true)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	}

	after, err := m.barter.GetRequest(ctx, req.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, req.OwnerConfirmationCode, after.OwnerConfirmationCode)
	assert.Equal(t, req.RequesterConfirmationCode, after.RequesterConfirmationCode)
}

func TestScenario_CompletionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "carpentry")
	require.NoError(t, err)

	_, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	require.NoError(t, err)

	req, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			_, _ = m.barter.CompleteBarter(ctx, req.ID, owner.ID, req.OwnerConfirmationCode)
		}()

		go func() {
			defer wg.Done()
			_, _ = m.barter.CompleteBarter(ctx, req.ID, requester.ID, req.RequesterConfirmationCode)
		}()
	}

	wg.Wait()

	final, err := m.barter.GetRequest(ctx, req.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BarterStatusCompleted, final.Status)
	assert.Equal(t, 1, m.exchanges(t, owner.ID))
	assert.Equal(t, 1, m.exchanges(t, requester.ID))

	_, err = m.barter.CompleteBarter(ctx, req.ID, requester.ID, req.RequesterConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, 1, m.exchanges(t, requester.ID))
}

func TestScenario_DuplicateOpenRequest(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	_, requester, listing := m.seed(t)

	_, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "first offer")
	require.NoError(t, err)

	_, err = m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "second offer")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	mine, err := m.barter.GetMyRequests(ctx, requester.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestScenario_Chat(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, requester, listing := m.seed(t)

	req, err := m.barter.CreateBarterRequest(ctx, requester.ID, listing.ID, "tutoring")
	require.NoError(t, err)

	_, err = m.barter.SendChatMessage(ctx, req.ID, requester.ID, "hello?")
	assert.ErrorIs(t, err, apperrors.ErrChatNotAvailable)

	_, err = m.barter.RespondToRequest(ctx, req.ID, owner.ID, true)
	require.NoError(t, err)

	_, err = m.barter.RespondToRequest(ctx, req.ID, requester.ID, true)
	require.NoError(t, err)

	_, err = m.barter.SendChatMessage(ctx, req.ID, requester.ID, "Saturday at 10?")
	require.NoError(t, err)

	req, err = m.barter.SendChatMessage(ctx, req.ID, owner.ID, "Works for me")
	require.NoError(t, err)

	require.Len(t, req.ChatMessages, 2)
	assert.Equal(t, "Quinn", req.ChatMessages[0].SenderName)
	assert.Equal(t, "Olive", req.ChatMessages[1].SenderName)
	assert.Contains(t, notificationTypes(t, m, owner.ID), domain.NotificationChatMessage)

	outsider, _, err := m.auth.Signup(ctx, "mallory@example.com", "password-m", "Mallory")
	require.NoError(t, err)

	_, err = m.barter.SendChatMessage(ctx, req.ID, outsider.ID, "me too")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestScenario_ProfileCompletionRaisesTrust(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	owner, _, _ := m.seed(t)

	before, err := m.trust.CalculateTrustScore(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, before.Verification)

	user, err := m.profiles.CompleteProfile(ctx, owner.ID, domain.ProfileInput{
		FullName: "Olive Owner",
		Phone:    "555-0100",
		Address:  "1 Maple Street",
		City:     "Springfield",
	})
	require.NoError(t, err)
	assert.True(t, user.IsProfileComplete)

	after, err := m.trust.CalculateTrustScore(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, after.Verification)
	assert.Greater(t, after.Total, before.Total)
}
