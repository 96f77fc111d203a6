package http

import (
	"time"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/shopspring/decimal"
)

type userResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	FullName          string    `json:"full_name,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	City              string    `json:"city,omitempty"`
	State             string    `json:"state,omitempty"`
	ZipCode           string    `json:"zip_code,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	IsProfileComplete bool      `json:"is_profile_complete"`
	CreatedAt         time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		FullName:          u.FullName,
		Phone:             u.Phone,
		Address:           u.Address,
		City:              u.City,
		State:             u.State,
		ZipCode:           u.ZipCode,
		Bio:               u.Bio,
		IsProfileComplete: u.IsProfileComplete,
		CreatedAt:         u.CreatedAt,
	}
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type barterResponse struct {
	ID               string                 `json:"id"`
	ListingID        string                 `json:"listing_id"`
	RequesterID      string                 `json:"requester_id"`
	RequesterName    string                 `json:"requester_name"`
	OwnerID          string                 `json:"owner_id"`
	OwnerName        string                 `json:"owner_name"`
	Listing          domain.ListingSnapshot `json:"listing"`
	OfferDescription string                 `json:"offer_description"`
	Status           domain.BarterStatus    `json:"status"`

	OwnerConfirmationCode     string `json:"owner_confirmation_code,omitempty"`
	RequesterConfirmationCode string `json:"requester_confirmation_code,omitempty"`
	OwnerCompleted            bool   `json:"owner_completed"`
	RequesterCompleted        bool   `json:"requester_completed"`

	ChatMessages []domain.ChatMessage `json:"chat_messages"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// toBarterResponse shows each confirmation code only to the party holding it.
func toBarterResponse(b *domain.BarterRequest, viewerID string) barterResponse {
	resp := barterResponse{
		ID:                 b.ID,
		ListingID:          b.ListingID,
		RequesterID:        b.RequesterID,
		RequesterName:      b.RequesterName,
		OwnerID:            b.OwnerID,
		OwnerName:          b.OwnerName,
		Listing:            b.Listing,
		OfferDescription:   b.OfferDescription,
		Status:             b.Status,
		OwnerCompleted:     b.OwnerCompleted,
		RequesterCompleted: b.RequesterCompleted,
		ChatMessages:       b.ChatMessages,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CompletedAt:        b.CompletedAt,
	}

	if resp.ChatMessages == nil {
		resp.ChatMessages = []domain.ChatMessage{}
	}

	switch b.PartyOf(viewerID) {
	case domain.PartyOwner:
		resp.OwnerConfirmationCode = b.OwnerConfirmationCode
	case domain.PartyRequester:
		resp.RequesterConfirmationCode = b.RequesterConfirmationCode
	}

	return resp
}

func toBarterResponses(bs []domain.BarterRequest, viewerID string) []barterResponse {
	out := make([]barterResponse, len(bs))
	for i := range bs {
		out[i] = toBarterResponse(&bs[i], viewerID)
	}

	return out
}

type listingResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Category       domain.ListingCategory `json:"category"`
	EstimatedValue decimal.Decimal        `json:"estimated_value"`
	Availability   string                 `json:"availability"`
	Images         []string               `json:"images"`
	UserID         string                 `json:"user_id"`
	UserName       string                 `json:"user_name"`
	CommunityID    string                 `json:"community_id"`
	IsActive       bool                   `json:"is_active"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}

	return listingResponse{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Category:       l.Category,
		EstimatedValue: l.EstimatedValue,
		Availability:   l.Availability,
		Images:         images,
		UserID:         l.UserID,
		UserName:       l.UserName,
		CommunityID:    l.CommunityID,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toListingResponses(ls []domain.Listing) []listingResponse {
	out := make([]listingResponse, len(ls))
	for i := range ls {
		out[i] = toListingResponse(&ls[i])
	}

	return out
}
