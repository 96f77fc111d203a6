package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BarterStatus string

const (
	BarterStatusPending       BarterStatus = "pending"
	BarterStatusOwnerAccepted BarterStatus = "owner_accepted"
	BarterStatusRejected      BarterStatus = "rejected"
	BarterStatusBothAccepted  BarterStatus = "both_accepted"
	BarterStatusCompleted     BarterStatus = "completed"
)

func (s BarterStatus) Valid() bool {
	switch s {
	case BarterStatusPending, BarterStatusOwnerAccepted, BarterStatusRejected,
		BarterStatusBothAccepted, BarterStatusCompleted:
		return true
	}

	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s BarterStatus) IsTerminal() bool {
	return s == BarterStatusRejected || s == BarterStatusCompleted
}

// ChatOpen reports whether the parties may exchange chat messages in s.
func (s BarterStatus) ChatOpen() bool {
	return s == BarterStatusBothAccepted || s == BarterStatusCompleted
}

// Party identifies the role a user plays in a barter request.
type Party int

const (
	PartyNone Party = iota
	PartyOwner
	PartyRequester
)

func (p Party) String() string {
	switch p {
	case PartyOwner:
		return "owner"
	case PartyRequester:
		return "requester"
	}

	return "none"
}

// ListingSnapshot is a copy of the listing taken when the request was created.
type ListingSnapshot struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       ListingCategory `json:"category"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

type BarterRequest struct {
	ID            string          `json:"id"`
	ListingID     string          `json:"listing_id"`
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	OwnerID       string          `json:"owner_id"`
	OwnerName     string          `json:"owner_name"`
	Listing       ListingSnapshot `json:"listing"`

	OfferDescription string       `json:"offer_description"`
	Status           BarterStatus `json:"status"`

	OwnerConfirmationCode     string `json:"owner_confirmation_code,omitempty"`
	RequesterConfirmationCode string `json:"requester_confirmation_code,omitempty"`
	OwnerCompleted            bool   `json:"owner_completed"`
	RequesterCompleted        bool   `json:"requester_completed"`

	ChatMessages []ChatMessage `json:"chat_messages"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Version is the store version the request was read at.
	Version int64 `json:"-"`
}

// PartyOf returns the role userID plays in the request.
func (b *BarterRequest) PartyOf(userID string) Party {
	switch {
	case userID == "":
		return PartyNone
	case userID == b.OwnerID:
		return PartyOwner
	case userID == b.RequesterID:
		return PartyRequester
	}

	return PartyNone
}

// Counterparty returns the id of the other party of the request.
func (b *BarterRequest) Counterparty(userID string) string {
	if userID == b.OwnerID {
		return b.RequesterID
	}

	return b.OwnerID
}

func (b *BarterRequest) Validate() error {
	if b.ID == "" || b.ListingID == "" || b.OwnerID == "" || b.RequesterID == "" {
		return fmt.Errorf("barter request is missing identity fields")
	}

	if !b.Status.Valid() {
		return fmt.Errorf("unknown barter status %q", b.Status)
	}

	if b.Status == BarterStatusBothAccepted || b.Status == BarterStatusCompleted {
		if b.OwnerConfirmationCode == "" || b.RequesterConfirmationCode == "" {
			return fmt.Errorf("barter request in status %q has no confirmation codes", b.Status)
		}
	}

	return nil
}
