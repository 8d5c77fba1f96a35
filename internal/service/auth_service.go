package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/danielvr/mydays/internal/auth"
	"github.com/danielvr/mydays/internal/middleware"
	"github.com/danielvr/mydays/internal/models"
	"github.com/danielvr/mydays/internal/rpc"
	"github.com/danielvr/mydays/internal/storage"
)

// AuthService implements the mydays.v1.AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

var _ rpc.AuthHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

func wireUser(user *models.User) rpc.User {
	return rpc.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Timezone:    user.Timezone,
		GroupID:     user.GroupID,
		GroupName:   user.GroupName,
		CreatedAt:   user.CreatedAt,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[rpc.RegisterRequest]) (*connect.Response[rpc.AuthResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.DisplayName == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		if err == auth.ErrEmailExists {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		if err == auth.ErrWeakPassword {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// Profile extras are best-effort; the account is already created.
	if req.Msg.Timezone != "" {
		if err := s.store.UpdateTimezone(ctx, user.ID, req.Msg.Timezone); err != nil {
			s.logger.Warn("Failed to store timezone", "user_id", user.ID, "error", err)
		} else {
			user.Timezone = req.Msg.Timezone
		}
	}
	if req.Msg.PhotoURL != "" {
		if err := s.store.UpdatePhotoURL(ctx, user.ID, req.Msg.PhotoURL); err != nil {
			s.logger.Warn("Failed to store photo URL", "user_id", user.ID, "error", err)
		} else {
			user.PhotoURL = req.Msg.PhotoURL
		}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&rpc.AuthResponse{
		User:  wireUser(user),
		Token: token,
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[rpc.LoginRequest]) (*connect.Response[rpc.AuthResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	// Refresh the stored timezone on every login; the user may have
	// travelled since the last one.
	if req.Msg.Timezone != "" && req.Msg.Timezone != user.Timezone {
		if err := s.store.UpdateTimezone(ctx, user.ID, req.Msg.Timezone); err != nil {
			s.logger.Warn("Failed to refresh timezone", "user_id", user.ID, "error", err)
		} else {
			user.Timezone = req.Msg.Timezone
		}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&rpc.AuthResponse{
		User:  wireUser(user),
		Token: token,
	}), nil
}

// GetCurrentUser returns the currently authenticated user's profile,
// including the group pointer the membership reconciler observes.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[rpc.GetCurrentUserRequest]) (*connect.Response[rpc.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&rpc.GetCurrentUserResponse{
		User: wireUser(user),
	}), nil
}

// UpdatePushToken stores (or clears) the caller's push registration token.
func (s *AuthService) UpdatePushToken(ctx context.Context, req *connect.Request[rpc.UpdatePushTokenRequest]) (*connect.Response[rpc.UpdatePushTokenResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if err := s.store.UpdatePushToken(ctx, userID, req.Msg.Token); err != nil {
		s.logger.Error("UpdatePushToken failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Push token updated", "user_id", userID, "cleared", req.Msg.Token == "")
	return connect.NewResponse(&rpc.UpdatePushTokenResponse{}), nil
}
