package service

import (
	"context"
	"errors"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidProfile       = errors.New("profile validation failed")
	ErrInvalidActivityLevel = errors.New("unknown activity level")
	ErrInvalidHealthGoal    = errors.New("health goal must be lose, maintain or gain")
)

// --- Service Interface ---
type UserService interface {
	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	// UpdateProfile validates and stores the profile; when the profile is
	// complete it also derives and stores the daily calorie target.
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, profile domain.Profile) (*domain.User, error)

	// Admin back-office
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error
}

// userService implements the UserService interface.
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUser retrieves a user account.
func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile validates and persists the user's profile. Partial profiles
// are allowed (users fill fields in over several visits); the completeness
// gate only applies at plan generation.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, profile domain.Profile) (*domain.User, error) {
	if profile.Age < 0 || profile.HeightCm < 0 || profile.CurrentWeightKg < 0 || profile.TargetWeightKg < 0 {
		return nil, ErrInvalidProfile
	}
	if profile.ActivityLevel != "" && !domain.ValidActivityLevel(profile.ActivityLevel) {
		return nil, ErrInvalidActivityLevel
	}
	switch profile.HealthGoal {
	case "", domain.GoalLose, domain.GoalMaintain, domain.GoalGain:
	default:
		return nil, ErrInvalidHealthGoal
	}

	if target, ok := profile.DeriveCalorieTarget(); ok {
		profile.DailyCalorieTarget = target
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// ListUsers returns every account, password hashes cleared.
func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// DeleteUser removes an account. Admin surface; the caller's role is
// checked at the API layer.
func (s *userService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	err := s.userRepo.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
