package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// AuthService implements registration, login and self-service profile edits.
type AuthService struct {
	users     ports.UserRepository
	tags      ports.TagRepository
	notify    ports.NotificationEnqueuer
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tags ports.TagRepository,
	notify ports.NotificationEnqueuer,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		tags:      tags,
		notify:    notify,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// RegisterClient signs up a new client account.
func (s *AuthService) RegisterClient(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleClient)
}

// RegisterTherapist signs up a new therapist account. Therapists start
// unapproved and must pass admin moderation before appearing in discovery.
func (s *AuthService) RegisterTherapist(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleTherapist)
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	if in.PrimaryPhone != "" {
		if _, err := s.users.FindByPhone(ctx, in.PrimaryPhone); err == nil {
			return nil, domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("register: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var tagIDs []string
	if role == domain.RoleTherapist {
		tagIDs, err = s.resolveTags(ctx, in.TagNames)
		if err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
	}

	now := time.Now().UTC()
	user := &domain.User{
		Role:           role,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Gender:         in.Gender,
		PrimaryPhone:   in.PrimaryPhone,
		Verified:       domain.VerifiedPending,
		FriendRequests: []string{},
		ExperiencedIn:  tagIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")

	s.notify.Enqueue(ports.Notification{
		To:      created.Email,
		Name:    created.FullName(),
		Subject: "Welcome to the platform!",
		Body:    "Hi " + created.FullName() + ", your account has been created. Log in to complete your profile.",
	})

	return created, nil
}

// Login authenticates by email and password and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if user.BlockedByAdmin {
		return "", nil, domain.ErrForbidden
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if _, err := s.users.Update(ctx, user.ID, ports.UserUpdate{LastLogin: &now}); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLogin = now

	return token, user, nil
}

// Me returns the caller's own record.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies a partial self-service edit. Therapist tag names are
// resolved via get-or-create on a case-insensitive prefix.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, role domain.Role, in ports.ProfileUpdateInput) (*domain.User, error) {
	upd := ports.UserUpdate{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Gender:            in.Gender,
		PrimaryPhone:      in.PrimaryPhone,
		PhotoURL:          in.PhotoURL,
		Description:       in.Description,
		YearsOfExperience: in.YearsOfExperience,
	}

	if in.TagNames != nil {
		if role != domain.RoleTherapist {
			return nil, domain.ErrInvalidRole
		}
		tagIDs, err := s.resolveTags(ctx, *in.TagNames)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		upd.ExperiencedIn = &tagIDs
	}

	return s.users.Update(ctx, userID, upd)
}

// ChangePassword verifies the current password before setting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" {
		return domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	_, err = s.users.Update(ctx, userID, ports.UserUpdate{PasswordHash: &h})
	return err
}

// resolveTags maps tag names to ids, creating tags that do not yet exist.
func (s *AuthService) resolveTags(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := s.tags.FindByPrefix(ctx, name)
		if errors.Is(err, domain.ErrTagNotFound) {
			tag, err = s.tags.Create(ctx, name)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"role":  string(user.Role),
		"email": user.Email,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
