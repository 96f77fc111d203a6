// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/service"
	"github.com/YusovID/barter-service/internal/validation"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/YusovID/barter-service/swagger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// TokenParser resolves a bearer token to the user id it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Services groups the service layer the handlers call into.
type Services struct {
	Auth         service.AuthService
	Profile      service.ProfileService
	Barter       service.BarterService
	Trust        service.TrustService
	Notification service.NotificationService
	Listing      service.ListingService
	Community    service.CommunityService
}

type Options struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
}

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log    *slog.Logger
	svc    Services
	tokens TokenParser
	opts   Options
}

// NewServer creates a new instance of the HTTP server.
func NewServer(log *slog.Logger, svc Services, tokens TokenParser, opts Options) *Server {
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 100
	}

	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}

	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	return &Server{
		log:    log,
		svc:    svc,
		tokens: tokens,
		opts:   opts,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(middleware.RealIP)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", s.health)
	mux.Handle("/metrics", promhttp.Handler())

	swaggerHandler, err := swagger.GetHandler()
	if err != nil {
		s.log.Error("failed to get swagger handler", sl.Err(err))
	} else {
		mux.Mount("/swagger", http.StripPrefix("/swagger", swaggerHandler))
	}

	mux.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			s.opts.RateLimitRequests,
			s.opts.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				s.respondAPIError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			}),
		))

		r.Post("/auth/signup", s.signup)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/me", s.me)
			r.Put("/me/profile", s.completeProfile)

			r.Route("/communities", func(r chi.Router) {
				r.Post("/", s.createCommunity)
				r.Get("/", s.myCommunities)
				r.Post("/join", s.joinCommunity)
				r.Get("/{id}/members", s.communityMembers)
				r.Get("/{id}/listings", s.communityListings)
				r.Get("/{id}/messages", s.communityMessages)
				r.Post("/{id}/messages", s.postCommunityMessage)
			})

			r.Route("/listings", func(r chi.Router) {
				r.Post("/", s.createListing)
				r.Get("/{id}", s.getListing)
				r.Put("/{id}", s.updateListing)
				r.Delete("/{id}", s.deleteListing)
			})

			r.Route("/barters", func(r chi.Router) {
				r.Post("/", s.createBarter)
				r.Get("/mine", s.myBarters)
				r.Get("/incoming", s.incomingBarters)
				r.Get("/{id}", s.getBarter)
				r.Post("/{id}/respond", s.respondToBarter)
				r.Post("/{id}/messages", s.sendChatMessage)
				r.Post("/{id}/complete", s.completeBarter)
			})

			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/trust-score", s.trustScore)
				r.Post("/ratings", s.rateUser)
				r.Post("/endorsements", s.endorseUser)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.notifications)
				r.Get("/unread-count", s.unreadCount)
				r.Post("/read-all", s.markAllRead)
				r.Post("/{id}/read", s.markRead)
			})
		})
	})

	return mux
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondAPIError sends a structured error with a stable machine-readable code.
func (s *Server) respondAPIError(w http.ResponseWriter, code int, apiCode, message string) {
	s.respond(w, code, map[string]errorBody{"error": {Code: apiCode, Message: message}})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := s.decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{apperrors.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{apperrors.ErrNotMember, http.StatusForbidden, "NOT_MEMBER"},
	{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{apperrors.ErrNotReady, http.StatusConflict, "NOT_READY"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{apperrors.ErrInvalidCode, http.StatusUnprocessableEntity, "INVALID_CODE"},
	{apperrors.ErrChatNotAvailable, http.StatusConflict, "CHAT_NOT_AVAILABLE"},
	{apperrors.ErrListingInactive, http.StatusConflict, "LISTING_INACTIVE"},
	{apperrors.ErrSelfBarter, http.StatusBadRequest, "SELF_BARTER"},
	{apperrors.ErrSelfRating, http.StatusBadRequest, "SELF_RATING"},
	{apperrors.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{apperrors.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER"},
	{apperrors.ErrConflict, http.StatusConflict, "CONFLICT"},
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	var (
		validationErr   *validation.ValidationError
		userExistsErr   *apperrors.UserAlreadyExistsError
		barterExistsErr *apperrors.BarterAlreadyExistsError
		transitionErr   *apperrors.TransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn("request failed validation", sl.Err(err))
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())

		return
	case errors.Is(err, apperrors.ErrInvalidRequest):
		log.Warn("malformed request", sl.Err(err))
		s.respondError(w, http.StatusBadRequest, "invalid request body")

		return
	case errors.As(err, &userExistsErr):
		log.Warn("service error occurred", sl.Err(err))
		s.respondAPIError(w, http.StatusConflict, "USER_EXISTS", "user with this email already exists")

		return
	case errors.As(err, &barterExistsErr):
		log.Warn("service error occurred", sl.Err(err))
		s.respondAPIError(w, http.StatusConflict, "BARTER_EXISTS", barterExistsErr.Error())

		return
	case errors.As(err, &transitionErr):
		log.Warn("service error occurred", sl.Err(err))
		s.respondAPIError(w, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error())

		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			log.Warn("service error occurred", sl.Err(err))
			s.respondAPIError(w, m.status, m.code, m.target.Error())

			return
		}
	}

	log.Error("service error occurred", sl.Err(err))
	s.respondError(w, http.StatusInternalServerError, "internal server error")
}
