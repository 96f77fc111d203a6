package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/YusovID/barter-service/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const unknownOwnerName = "Unknown"

type BarterService interface {
	CreateBarterRequest(ctx context.Context, requesterID, listingID, offerDescription string) (*domain.BarterRequest, error)
	RespondToRequest(ctx context.Context, requestID, actingUserID string, accept bool) (*domain.BarterRequest, error)
	SendChatMessage(ctx context.Context, requestID, senderID, content string) (*domain.BarterRequest, error)
	CompleteBarter(ctx context.Context, requestID, actingUserID, code string) (*domain.BarterRequest, error)
	GetMyRequests(ctx context.Context, userID string) ([]domain.BarterRequest, error)
	GetRequestsForMyListings(ctx context.Context, userID string) ([]domain.BarterRequest, error)
	GetRequest(ctx context.Context, requestID, actingUserID string) (*domain.BarterRequest, error)
}

// Notifier delivers a notification to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID string, n domain.NotificationDraft) error
}

type BarterServiceImpl struct {
	BaseService
	barters  repository.BarterRepository
	listings repository.ListingRepository
	users    repository.UserRepository
	stats    repository.StatsRepository
	notifier Notifier
	tracer   trace.Tracer

	now   func() time.Time
	newID func() string
	codes func() (string, error)
}

func NewBarterService(
	db Transactor,
	log *slog.Logger,
	barters repository.BarterRepository,
	listings repository.ListingRepository,
	users repository.UserRepository,
	stats repository.StatsRepository,
	notifier Notifier,
) *BarterServiceImpl {
	return &BarterServiceImpl{
		BaseService: NewBaseService(db, log),
		barters:     barters,
		listings:    listings,
		users:       users,
		stats:       stats,
		notifier:    notifier,
		tracer:      otel.Tracer("barter-service/internal/service/barter"),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		codes:       func() (string, error) { return generateCode(confirmationCodeLength) },
	}
}

// pendingNotification is emitted once the transaction that produced it has committed.
type pendingNotification struct {
	userID string
	draft  domain.NotificationDraft
}

func (s *BarterServiceImpl) CreateBarterRequest(ctx context.Context, requesterID, listingID, offerDescription string) (*domain.BarterRequest, error) {
	const op = "internal.service.barter.CreateBarterRequest"
	log := s.log.With(slog.String("op", op), slog.String("requester_id", requesterID), slog.String("listing_id", listingID))

	ctx, span := s.tracer.Start(ctx, "BarterService.CreateBarterRequest", trace.WithAttributes(
		attribute.String("barter.listing_id", listingID),
	))
	defer span.End()

	if requesterID == "" {
		return nil, spanError(span, apperrors.ErrNotAuthenticated)
	}

	ext := s.reader()

	requester, err := s.users.GetByID(ctx, ext, requesterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, spanError(span, fmt.Errorf("%s: %w", op, apperrors.ErrNotAuthenticated))
		}

		return nil, spanError(span, fmt.Errorf("%s: failed to get requester: %w", op, err))
	}

	listing, err := s.listings.GetByID(ctx, ext, listingID)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("%s: failed to get listing: %w", op, err))
	}

	if listing.UserID == requesterID {
		return nil, spanError(span, apperrors.ErrSelfBarter)
	}

	if !listing.IsActive {
		return nil, spanError(span, fmt.Errorf("%s: listing '%s': %w", op, listingID, apperrors.ErrListingInactive))
	}

	ownerName := unknownOwnerName

	owner, err := s.users.GetByID(ctx, ext, listing.UserID)
	switch {
	case err == nil:
		ownerName = owner.Name
	case errors.Is(err, apperrors.ErrNotFound):
		log.Warn("listing owner not found, using placeholder name", slog.String("owner_id", listing.UserID))
	default:
		return nil, spanError(span, fmt.Errorf("%s: failed to get owner: %w", op, err))
	}

	now := s.now()
	req := &domain.BarterRequest{
		ID:               s.newID(),
		ListingID:        listing.ID,
		RequesterID:      requester.ID,
		RequesterName:    requester.Name,
		OwnerID:          listing.UserID,
		OwnerName:        ownerName,
		Listing:          listing.Snapshot(),
		OfferDescription: offerDescription,
		Status:           domain.BarterStatusPending,
		ChatMessages:     []domain.ChatMessage{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.transaction(ctx, op, func(tx repository.Tx) error {
		// The listing row lock serializes creates per listing and orders them against deactivation.
		locked, err := s.listings.GetByIDForUpdate(ctx, tx, listing.ID)
		if err != nil {
			return fmt.Errorf("%s: failed to get listing with lock: %w", op, err)
		}

		if locked.UserID == requesterID {
			return apperrors.ErrSelfBarter
		}

		if !locked.IsActive {
			return fmt.Errorf("%s: listing '%s': %w", op, listingID, apperrors.ErrListingInactive)
		}

		req.OwnerID = locked.UserID
		req.Listing = locked.Snapshot()

		existing, err := s.barters.ListByListing(ctx, tx, listing.ID)
		if err != nil {
			return fmt.Errorf("%s: failed to list requests for listing: %w", op, err)
		}

		for _, r := range existing {
			if r.RequesterID == requesterID && !r.Status.IsTerminal() {
				return &apperrors.BarterAlreadyExistsError{ListingID: listing.ID}
			}
		}

		if err := s.barters.Create(ctx, tx, req); err != nil {
			return fmt.Errorf("%s: failed to create request: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	metrics.BarterRequestsCreatedTotal.Inc()
	log.Info("barter request created", slog.String("request_id", req.ID))

	s.emit(ctx, log, []pendingNotification{{
		userID: req.OwnerID,
		draft: domain.NotificationDraft{
			Title:     "New Barter Request",
			Message:   fmt.Sprintf("%s wants to barter for your %q", requester.Name, listing.Title),
			Type:      domain.NotificationBarterRequest,
			RelatedID: req.ID,
		},
	}})

	return req, nil
}

func (s *BarterServiceImpl) RespondToRequest(ctx context.Context, requestID, actingUserID string, accept bool) (*domain.BarterRequest, error) {
	const op = "internal.service.barter.RespondToRequest"
	log := s.log.With(slog.String("op", op), slog.String("request_id", requestID), slog.String("user_id", actingUserID))

	ctx, span := s.tracer.Start(ctx, "BarterService.RespondToRequest", trace.WithAttributes(
		attribute.String("barter.request_id", requestID),
		attribute.Bool("barter.accept", accept),
	))
	defer span.End()

	if actingUserID == "" {
		return nil, spanError(span, apperrors.ErrNotAuthenticated)
	}

	var (
		req     *domain.BarterRequest
		from    domain.BarterStatus
		pending []pendingNotification
	)

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		req, err = s.barters.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get request with lock: %w", op, err)
		}

		party := req.PartyOf(actingUserID)
		if party == domain.PartyNone {
			return apperrors.ErrUnauthorized
		}

		from = req.Status

		pending, err = s.applyResponse(req, party, accept)
		if err != nil {
			return err
		}

		if req.Status == domain.BarterStatusBothAccepted {
			if err := s.listings.Deactivate(ctx, tx, req.ListingID); err != nil {
				return fmt.Errorf("%s: failed to deactivate listing: %w", op, err)
			}
		}

		if err := s.barters.Update(ctx, tx, req); err != nil {
			return fmt.Errorf("%s: failed to update request: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	metrics.RecordTransition(string(from), string(req.Status))
	log.Info("barter request transitioned", slog.String("from", string(from)), slog.String("to", string(req.Status)))

	s.emit(ctx, log, pending)

	return req, nil
}

// applyResponse moves req along the transition table and returns the notifications the move produces.
func (s *BarterServiceImpl) applyResponse(req *domain.BarterRequest, party domain.Party, accept bool) ([]pendingNotification, error) {
	title := req.Listing.Title

	switch {
	case req.Status == domain.BarterStatusPending && party == domain.PartyOwner:
		if !accept {
			req.Status = domain.BarterStatusRejected
			req.UpdatedAt = s.now()

			return []pendingNotification{{
				userID: req.RequesterID,
				draft: domain.NotificationDraft{
					Title:     "Barter Request Declined",
					Message:   fmt.Sprintf("%s declined your barter request for %q", req.OwnerName, title),
					Type:      domain.NotificationBarterRejected,
					RelatedID: req.ID,
				},
			}}, nil
		}

		req.Status = domain.BarterStatusOwnerAccepted
		req.UpdatedAt = s.now()

		return []pendingNotification{{
			userID: req.RequesterID,
			draft: domain.NotificationDraft{
				Title:     "Barter Request Accepted!",
				Message:   fmt.Sprintf("%s accepted your barter request for %q. Please confirm to proceed!", req.OwnerName, title),
				Type:      domain.NotificationBarterOwnerAccepted,
				RelatedID: req.ID,
			},
		}}, nil

	case req.Status == domain.BarterStatusOwnerAccepted && party == domain.PartyRequester:
		if !accept {
			req.Status = domain.BarterStatusRejected
			req.UpdatedAt = s.now()

			return []pendingNotification{{
				userID: req.OwnerID,
				draft: domain.NotificationDraft{
					Title:     "Barter Request Declined",
					Message:   fmt.Sprintf("%s declined to confirm the barter for %q", req.RequesterName, title),
					Type:      domain.NotificationBarterRejected,
					RelatedID: req.ID,
				},
			}}, nil
		}

		ownerCode, requesterCode, err := s.issueCodes()
		if err != nil {
			return nil, err
		}

		req.Status = domain.BarterStatusBothAccepted
		req.OwnerConfirmationCode = ownerCode
		req.RequesterConfirmationCode = requesterCode
		req.UpdatedAt = s.now()

		return []pendingNotification{
			{
				userID: req.OwnerID,
				draft: domain.NotificationDraft{
					Title:     "Barter Confirmed - Chat Available!",
					Message:   fmt.Sprintf("%s confirmed the barter for %q. You can now chat privately to arrange the exchange!", req.RequesterName, title),
					Type:      domain.NotificationBarterBothAccepted,
					RelatedID: req.ID,
				},
			},
			{
				userID: req.RequesterID,
				draft: domain.NotificationDraft{
					Title:     "Barter Confirmed - Chat Available!",
					Message:   fmt.Sprintf("You confirmed the barter for %q. You can now chat privately to arrange the exchange!", title),
					Type:      domain.NotificationBarterBothAccepted,
					RelatedID: req.ID,
				},
			},
		}, nil
	}

	action := "reject"
	if accept {
		action = "accept"
	}

	return nil, &apperrors.TransitionError{Status: string(req.Status), Party: party.String(), Action: action}
}

// issueCodes returns two distinct confirmation codes.
func (s *BarterServiceImpl) issueCodes() (string, string, error) {
	ownerCode, err := s.codes()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}

	for {
		requesterCode, err := s.codes()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}

		if requesterCode != ownerCode {
			return ownerCode, requesterCode, nil
		}
	}
}

func (s *BarterServiceImpl) SendChatMessage(ctx context.Context, requestID, senderID, content string) (*domain.BarterRequest, error) {
	const op = "internal.service.barter.SendChatMessage"
	log := s.log.With(slog.String("op", op), slog.String("request_id", requestID), slog.String("sender_id", senderID))

	ctx, span := s.tracer.Start(ctx, "BarterService.SendChatMessage", trace.WithAttributes(
		attribute.String("barter.request_id", requestID),
	))
	defer span.End()

	if senderID == "" {
		return nil, spanError(span, apperrors.ErrNotAuthenticated)
	}

	var (
		req *domain.BarterRequest
		msg domain.ChatMessage
	)

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		req, err = s.barters.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get request with lock: %w", op, err)
		}

		senderName := req.RequesterName

		switch req.PartyOf(senderID) {
		case domain.PartyOwner:
			senderName = req.OwnerName
		case domain.PartyNone:
			return apperrors.ErrUnauthorized
		}

		if !req.Status.ChatOpen() {
			return apperrors.ErrChatNotAvailable
		}

		now := s.now()
		msg = domain.ChatMessage{
			ID:         s.newID(),
			SenderID:   senderID,
			SenderName: senderName,
			Content:    content,
			Timestamp:  now,
		}

		req.ChatMessages = append(req.ChatMessages, msg)
		req.UpdatedAt = now

		if err := s.barters.Update(ctx, tx, req); err != nil {
			return fmt.Errorf("%s: failed to update request: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	log.Debug("chat message appended", slog.String("message_id", msg.ID))

	s.emit(ctx, log, []pendingNotification{{
		userID: req.Counterparty(senderID),
		draft: domain.NotificationDraft{
			Title:     "New Message",
			Message:   fmt.Sprintf("%s sent you a message about %q", msg.SenderName, req.Listing.Title),
			Type:      domain.NotificationChatMessage,
			RelatedID: req.ID,
		},
	}})

	return req, nil
}

func (s *BarterServiceImpl) CompleteBarter(ctx context.Context, requestID, actingUserID, code string) (*domain.BarterRequest, error) {
	const op = "internal.service.barter.CompleteBarter"
	log := s.log.With(slog.String("op", op), slog.String("request_id", requestID), slog.String("user_id", actingUserID))

	ctx, span := s.tracer.Start(ctx, "BarterService.CompleteBarter", trace.WithAttributes(
		attribute.String("barter.request_id", requestID),
	))
	defer span.End()

	if actingUserID == "" {
		return nil, spanError(span, apperrors.ErrNotAuthenticated)
	}

	var (
		req       *domain.BarterRequest
		noop      bool
		completed bool
	)

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		req, err = s.barters.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return fmt.Errorf("%s: failed to get request with lock: %w", op, err)
		}

		party := req.PartyOf(actingUserID)
		if party == domain.PartyNone {
			return apperrors.ErrUnauthorized
		}

		if req.Status != domain.BarterStatusBothAccepted && req.Status != domain.BarterStatusCompleted {
			return &apperrors.NotReadyError{Status: string(req.Status)}
		}

		expected, done := req.OwnerConfirmationCode, req.OwnerCompleted
		if party == domain.PartyRequester {
			expected, done = req.RequesterConfirmationCode, req.RequesterCompleted
		}

		if code != expected {
			metrics.ConfirmationFailuresTotal.Inc()
			return apperrors.ErrInvalidCode
		}

		if done {
			noop = true
			return nil
		}

		if party == domain.PartyOwner {
			req.OwnerCompleted = true
		} else {
			req.RequesterCompleted = true
		}

		now := s.now()
		req.UpdatedAt = now

		if req.OwnerCompleted && req.RequesterCompleted {
			req.Status = domain.BarterStatusCompleted
			req.CompletedAt = &now
			completed = true

			if err := s.listings.Deactivate(ctx, tx, req.ListingID); err != nil {
				return fmt.Errorf("%s: failed to deactivate listing: %w", op, err)
			}

			for _, userID := range []string{req.OwnerID, req.RequesterID} {
				if err := s.incrementExchanges(ctx, tx, userID); err != nil {
					return fmt.Errorf("%s: %w", op, err)
				}
			}
		}

		if err := s.barters.Update(ctx, tx, req); err != nil {
			return fmt.Errorf("%s: failed to update request: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	if noop {
		log.Info("party already confirmed, nothing to do")
		return req, nil
	}

	if !completed {
		log.Info("party confirmed the exchange", slog.Bool("owner_completed", req.OwnerCompleted), slog.Bool("requester_completed", req.RequesterCompleted))
		return req, nil
	}

	metrics.RecordTransition(string(domain.BarterStatusBothAccepted), string(domain.BarterStatusCompleted))
	metrics.RecordTrustEvent("completed_exchange")
	log.Info("barter completed")

	pending := make([]pendingNotification, 0, 2)
	for _, userID := range []string{req.OwnerID, req.RequesterID} {
		pending = append(pending, pendingNotification{
			userID: userID,
			draft: domain.NotificationDraft{
				Title:     "Barter Completed",
				Message:   fmt.Sprintf("The barter for %q is complete. Thanks for trading!", req.Listing.Title),
				Type:      domain.NotificationBarterCompleted,
				RelatedID: req.ID,
			},
		})
	}

	s.emit(ctx, log, pending)

	return req, nil
}

func (s *BarterServiceImpl) incrementExchanges(ctx context.Context, tx repository.Tx, userID string) error {
	stats, err := s.stats.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("failed to get stats of '%s': %w", userID, err)
	}

	stats.CompletedExchanges++

	if err := s.stats.Save(ctx, tx, stats); err != nil {
		return fmt.Errorf("failed to save stats of '%s': %w", userID, err)
	}

	return nil
}

func (s *BarterServiceImpl) GetMyRequests(ctx context.Context, userID string) ([]domain.BarterRequest, error) {
	const op = "internal.service.barter.GetMyRequests"

	reqs, err := s.barters.ListByRequester(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list requests: %w", op, err)
	}

	return reqs, nil
}

func (s *BarterServiceImpl) GetRequestsForMyListings(ctx context.Context, userID string) ([]domain.BarterRequest, error) {
	const op = "internal.service.barter.GetRequestsForMyListings"

	reqs, err := s.barters.ListByOwner(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list requests: %w", op, err)
	}

	return reqs, nil
}

// GetRequest returns the request only to one of its parties.
func (s *BarterServiceImpl) GetRequest(ctx context.Context, requestID, actingUserID string) (*domain.BarterRequest, error) {
	const op = "internal.service.barter.GetRequest"

	req, err := s.barters.GetByID(ctx, s.reader(), requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.PartyOf(actingUserID) == domain.PartyNone {
		return nil, apperrors.ErrUnauthorized
	}

	return req, nil
}

// emit delivers notifications after the transition has been committed. Failures are logged and dropped.
func (s *BarterServiceImpl) emit(ctx context.Context, log *slog.Logger, pending []pendingNotification) {
	for _, p := range pending {
		if err := s.notifier.Notify(ctx, p.userID, p.draft); err != nil {
			metrics.RecordNotificationFailure(string(p.draft.Type))
			log.Error("failed to emit notification",
				slog.String("recipient_id", p.userID),
				slog.String("type", string(p.draft.Type)),
				sl.Err(err),
			)
		}
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())

	return err
}
