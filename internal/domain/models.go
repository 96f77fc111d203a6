package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a raw entry of the key-value store.
type Record struct {
	Namespace string    `db:"namespace"`
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type User struct {
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
	PasswordHash      string    `json:"password_hash"`
	CreatedAt         time.Time `json:"created_at"`

	Version int64 `json:"-"`
}

func (u *User) Validate() error {
	if u.ID == "" || u.Email == "" {
		return fmt.Errorf("user is missing id or email")
	}

	return nil
}

type ListingCategory string

const (
	ListingCategoryProduct ListingCategory = "product"
	ListingCategoryService ListingCategory = "service"
)

func (c ListingCategory) Valid() bool {
	return c == ListingCategoryProduct || c == ListingCategoryService
}

type Listing struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       ListingCategory `json:"category"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Availability   string          `json:"availability"`
	Images         []string        `json:"images"`
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name"`
	CommunityID    string          `json:"community_id"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Version int64 `json:"-"`
}

func (l *Listing) Validate() error {
	if l.ID == "" || l.UserID == "" {
		return fmt.Errorf("listing is missing id or owner")
	}

	if !l.Category.Valid() {
		return fmt.Errorf("unknown listing category %q", l.Category)
	}

	return nil
}

// Snapshot copies the fields a barter request keeps about the listing.
func (l *Listing) Snapshot() ListingSnapshot {
	return ListingSnapshot{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Category:       l.Category,
		EstimatedValue: l.EstimatedValue,
	}
}

type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   string    `json:"created_by"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`

	Version int64 `json:"-"`
}

func (c *Community) Validate() error {
	if c.ID == "" || c.InviteCode == "" {
		return fmt.Errorf("community is missing id or invite code")
	}

	return nil
}

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type CommunityMember struct {
	CommunityID string     `json:"community_id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Role        MemberRole `json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`
}

func (m *CommunityMember) Validate() error {
	if m.CommunityID == "" || m.UserID == "" {
		return fmt.Errorf("community member is missing community or user id")
	}

	return nil
}

// CommunityMessage is a post on a community's message board.
type CommunityMessage struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *CommunityMessage) Validate() error {
	if m.ID == "" || m.CommunityID == "" || m.UserID == "" {
		return fmt.Errorf("community message is missing id, community or author")
	}

	return nil
}

type NotificationType string

const (
	NotificationBarterRequest       NotificationType = "barter_request"
	NotificationBarterOwnerAccepted NotificationType = "barter_owner_accepted"
	NotificationBarterRejected      NotificationType = "barter_rejected"
	NotificationBarterBothAccepted  NotificationType = "barter_both_accepted"
	NotificationBarterCompleted     NotificationType = "barter_completed"
	NotificationChatMessage         NotificationType = "chat_message"
)

// NotificationDraft is what callers hand to the emitter; it gets an id and timestamp on delivery.
type NotificationDraft struct {
	Title     string
	Message   string
	Type      NotificationType
	RelatedID string
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	RelatedID string           `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	Version int64 `json:"-"`
}

func (n *Notification) Validate() error {
	if n.ID == "" || n.UserID == "" {
		return fmt.Errorf("notification is missing id or user id")
	}

	return nil
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FullName string
	Phone    string
	Address  string
	City     string
	State    string
	ZipCode  string
	Bio      string
}

// ListingInput carries the fields a user sets when creating or editing a listing.
type ListingInput struct {
	Title          string
	Description    string
	Category       ListingCategory
	EstimatedValue decimal.Decimal
	Availability   string
	Images         []string
	CommunityID    string
}

// CommunityInput carries the fields of a new community.
type CommunityInput struct {
	Name        string
	Description string
	Location    string
}
