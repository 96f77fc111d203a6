package http

import (
	"context"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Signup(ctx context.Context, email, password, name string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}

	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}

	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *AuthServiceMock) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

type ProfileServiceMock struct {
	mock.Mock
}

func (m *ProfileServiceMock) CompleteProfile(ctx context.Context, userID string, in domain.ProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

type BarterServiceMock struct {
	mock.Mock
}

func (m *BarterServiceMock) barter(args mock.Arguments) (*domain.BarterRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BarterRequest), args.Error(1)
}

func (m *BarterServiceMock) barters(args mock.Arguments) ([]domain.BarterRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.BarterRequest), args.Error(1)
}

func (m *BarterServiceMock) CreateBarterRequest(ctx context.Context, requesterID, listingID, offerDescription string) (*domain.BarterRequest, error) {
	return m.barter(m.Called(ctx, requesterID, listingID, offerDescription))
}

func (m *BarterServiceMock) RespondToRequest(ctx context.Context, requestID, actingUserID string, accept bool) (*domain.BarterRequest, error) {
	return m.barter(m.Called(ctx, requestID, actingUserID, accept))
}

func (m *BarterServiceMock) SendChatMessage(ctx context.Context, requestID, senderID, content string) (*domain.BarterRequest, error) {
	return m.barter(m.Called(ctx, requestID, senderID, content))
}

func (m *BarterServiceMock) CompleteBarter(ctx context.Context, requestID, actingUserID, code string) (*domain.BarterRequest, error) {
	return m.barter(m.Called(ctx, requestID, actingUserID, code))
}

func (m *BarterServiceMock) GetMyRequests(ctx context.Context, userID string) ([]domain.BarterRequest, error) {
	return m.barters(m.Called(ctx, userID))
}

func (m *BarterServiceMock) GetRequestsForMyListings(ctx context.Context, userID string) ([]domain.BarterRequest, error) {
	return m.barters(m.Called(ctx, userID))
}

func (m *BarterServiceMock) GetRequest(ctx context.Context, requestID, actingUserID string) (*domain.BarterRequest, error) {
	return m.barter(m.Called(ctx, requestID, actingUserID))
}

type TrustServiceMock struct {
	mock.Mock
}

func (m *TrustServiceMock) CalculateTrustScore(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.TrustScoreBreakdown), args.Error(1)
}

func (m *TrustServiceMock) GetStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserStats), args.Error(1)
}

func (m *TrustServiceMock) AddRating(ctx context.Context, userID string, rating int) error {
	return m.Called(ctx, userID, rating).Error(0)
}

func (m *TrustServiceMock) AddEndorsement(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *TrustServiceMock) RecordDispute(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *TrustServiceMock) RecordRuleViolation(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *TrustServiceMock) SetResponseRate(ctx context.Context, userID string, rate float64) error {
	return m.Called(ctx, userID, rate).Error(0)
}

func (m *TrustServiceMock) SetVerification(ctx context.Context, userID string, verify func(*domain.Verifications)) error {
	return m.Called(ctx, userID, verify).Error(0)
}

type NotificationServiceMock struct {
	mock.Mock
}

func (m *NotificationServiceMock) Notify(ctx context.Context, userID string, n domain.NotificationDraft) error {
	return m.Called(ctx, userID, n).Error(0)
}

func (m *NotificationServiceMock) GetMyNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationServiceMock) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *NotificationServiceMock) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *NotificationServiceMock) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type ListingServiceMock struct {
	mock.Mock
}

func (m *ListingServiceMock) CreateListing(ctx context.Context, userID string, in domain.ListingInput) (*domain.Listing, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingServiceMock) UpdateListing(ctx context.Context, userID, listingID string, in domain.ListingInput) (*domain.Listing, error) {
	args := m.Called(ctx, userID, listingID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingServiceMock) DeleteListing(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func (m *ListingServiceMock) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingServiceMock) GetCommunityListings(ctx context.Context, userID, communityID string, limit int) ([]domain.Listing, error) {
	args := m.Called(ctx, userID, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Listing), args.Error(1)
}

type CommunityServiceMock struct {
	mock.Mock
}

func (m *CommunityServiceMock) CreateCommunity(ctx context.Context, userID string, in domain.CommunityInput) (*domain.Community, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Community), args.Error(1)
}

func (m *CommunityServiceMock) JoinCommunity(ctx context.Context, userID, code string) (*domain.Community, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Community), args.Error(1)
}

func (m *CommunityServiceMock) GetUserCommunities(ctx context.Context, userID string) ([]domain.Community, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Community), args.Error(1)
}

func (m *CommunityServiceMock) GetMembers(ctx context.Context, userID, communityID string) ([]domain.CommunityMember, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CommunityMember), args.Error(1)
}

func (m *CommunityServiceMock) SendMessage(ctx context.Context, communityID, userID, content string) (*domain.CommunityMessage, error) {
	args := m.Called(ctx, communityID, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CommunityMessage), args.Error(1)
}

func (m *CommunityServiceMock) GetMessages(ctx context.Context, userID, communityID string) ([]domain.CommunityMessage, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CommunityMessage), args.Error(1)
}

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
