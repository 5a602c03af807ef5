package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/repositories/casdoor"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/validator"
)

type authService struct {
	identity  IdentityClient
	sessions  *session.Store
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(identity IdentityClient, sessions *session.Store, repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		identity:  identity,
		sessions:  sessions,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Login exchanges the OAuth code for a token with the identity provider,
// converts the claims into a principal with a normalized role and replaces any
// prior session for that principal wholesale.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	token, err := s.identity.GetOAuthToken(req.Code, req.State)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLoginState, err)
	}

	claims, err := s.identity.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}

	user := casdoor.ConvertCasdoorUser(&claims.User)
	if user == nil || user.ID == "" {
		return nil, ErrUserNotFound
	}

	if err := s.sessions.Login(ctx, user.ID, user, token.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, &events.Event{
		Type:      events.UserLoggedIn,
		ActorID:   user.ID,
		ActorRole: string(user.Role),
	})

	redirect := req.From
	if redirect == "" {
		redirect = authz.DefaultPath(user.Role)
	}

	return &SessionResponse{
		User:            user,
		Token:           token.AccessToken,
		IsAuthenticated: true,
		RedirectTo:      redirect,
	}, nil
}

// Logout erases the durable session. Logging out twice is fine.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Logout(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Info("User logged out", "user_id", userID)
	s.publish(ctx, &events.Event{
		Type:    events.UserLoggedOut,
		ActorID: userID,
	})
	return nil
}

func (s *authService) GetSession(ctx context.Context, userID string) (*SessionResponse, error) {
	rec, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	resp := &SessionResponse{
		User:            rec.User,
		IsAuthenticated: rec.IsAuthenticated,
	}
	if rec.IsAuthenticated {
		resp.RedirectTo = authz.DefaultPath(rec.User.Role)
	} else {
		resp.RedirectTo = authz.LoginPath
	}
	return resp, nil
}

// UpdateProfile patches the stored principal. The bearer token and the
// authentication flag survive the update untouched.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*SessionResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	patch := models.UserUpdate{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AvatarURL:     req.AvatarURL,
		InstitutionID: req.InstitutionID,
		SchoolGradeID: req.SchoolGradeID,
	}
	if err := s.sessions.UpdateUser(ctx, userID, patch); err != nil {
		return nil, fmt.Errorf("failed to update session principal: %w", err)
	}

	// Identity reads go through a cache; drop the stale entry.
	if err := s.repo.User().InvalidateCache(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate user cache", "user_id", userID, "error", err)
	}

	rec, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	if rec.User != nil {
		s.publish(ctx, &events.Event{
			Type:      events.ProfileUpdated,
			ActorID:   userID,
			ActorRole: string(rec.User.Role),
		})
	}

	return &SessionResponse{
		User:            rec.User,
		IsAuthenticated: rec.IsAuthenticated,
	}, nil
}

// publish is fire-and-forget: audit events never fail the user action.
func (s *authService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
