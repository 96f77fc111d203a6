package http

import "encoding/json"

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type profileRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	City     string `json:"city" validate:"omitempty,max=100"`
	State    string `json:"state" validate:"omitempty,max=100"`
	ZipCode  string `json:"zip_code" validate:"omitempty,max=20"`
	Bio      string `json:"bio" validate:"omitempty,max=1000"`
}

type createCommunityRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Location    string `json:"location" validate:"omitempty,max=200"`
}

type joinCommunityRequest struct {
	InviteCode string `json:"invite_code" validate:"required,invite_code"`
}

type listingRequest struct {
	Title          string      `json:"title" validate:"required,min=3,max=120"`
	Description    string      `json:"description" validate:"omitempty,max=2000"`
	Category       string      `json:"category" validate:"required,oneof=product service"`
	EstimatedValue json.Number `json:"estimated_value" validate:"omitempty,decimal_amount"`
	Availability   string      `json:"availability" validate:"omitempty,max=200"`
	Images         []string    `json:"images" validate:"omitempty,max=10,dive,url"`
}

type communityMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type createListingRequest struct {
	listingRequest
	CommunityID string `json:"community_id" validate:"required,custom_id,max=100"`
}

type createBarterRequest struct {
	ListingID        string `json:"listing_id" validate:"required,custom_id,max=100"`
	OfferDescription string `json:"offer_description" validate:"required,min=3,max=1000"`
}

type respondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type chatMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type completeRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type ratingRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}
