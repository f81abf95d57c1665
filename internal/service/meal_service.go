package service

import (
	"context"
	"errors"
	"fmt"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"
	"dietly/diet-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMealNotFound = errors.New("meal not found")
)

// --- Service Interface ---
type MealService interface {
	// Browse surface (any authenticated user)
	GetMealByID(ctx context.Context, mealID primitive.ObjectID) (*domain.Meal, error)
	ListMeals(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error)
	// GetMealImageURL returns a presigned download URL for the meal's image,
	// or "" when the meal has none.
	GetMealImageURL(ctx context.Context, mealID primitive.ObjectID) (string, error)

	// Admin catalog management
	CreateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error)
	UpdateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error)
	DeleteMeal(ctx context.Context, mealID primitive.ObjectID) error
	// RequestImageUpload generates a new object key for the meal's image,
	// stores it on the meal and returns a presigned PUT URL for the client
	// to upload directly to object storage.
	RequestImageUpload(ctx context.Context, mealID primitive.ObjectID, contentType string) (uploadURL string, err error)
}

// mealService implements the MealService interface.
type mealService struct {
	mealRepo    repository.MealRepository
	fileStorage storage.FileStorage
}

// NewMealService creates a new instance of mealService.
func NewMealService(mealRepo repository.MealRepository, fileStorage storage.FileStorage) MealService {
	return &mealService{
		mealRepo:    mealRepo,
		fileStorage: fileStorage,
	}
}

// GetMealByID retrieves a single catalog meal.
func (s *mealService) GetMealByID(ctx context.Context, mealID primitive.ObjectID) (*domain.Meal, error) {
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

// ListMeals returns the catalog, optionally filtered.
func (s *mealService) ListMeals(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	if filter.MealType != "" && !domain.ValidMealType(filter.MealType) {
		return nil, domain.ErrMealTypeInvalid
	}
	return s.mealRepo.List(ctx, filter)
}

func (s *mealService) GetMealImageURL(ctx context.Context, mealID primitive.ObjectID) (string, error) {
	meal, err := s.GetMealByID(ctx, mealID)
	if err != nil {
		return "", err
	}
	if meal.ImageKey == "" {
		return "", nil
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, meal.ImageKey, storage.DefaultPresignedURLExpiry)
}

// CreateMeal adds a meal to the catalog.
func (s *mealService) CreateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error) {
	if err := meal.Validate(); err != nil {
		return nil, err
	}
	mealID, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		return nil, err
	}
	return s.mealRepo.GetByID(ctx, mealID)
}

// UpdateMeal replaces an existing meal's editable fields.
func (s *mealService) UpdateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error) {
	if err := meal.Validate(); err != nil {
		return nil, err
	}
	// Keep the stored image key unless the caller sets a new one.
	existing, err := s.GetMealByID(ctx, meal.ID)
	if err != nil {
		return nil, err
	}
	if meal.ImageKey == "" {
		meal.ImageKey = existing.ImageKey
	}
	if err := s.mealRepo.Update(ctx, meal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return s.mealRepo.GetByID(ctx, meal.ID)
}

// DeleteMeal removes a meal from the catalog. Existing plan entries keep
// their nutrition snapshot, so deletion does not corrupt generated plans.
func (s *mealService) DeleteMeal(ctx context.Context, mealID primitive.ObjectID) error {
	meal, err := s.GetMealByID(ctx, mealID)
	if err != nil {
		return err
	}
	if err := s.mealRepo.Delete(ctx, mealID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	if meal.ImageKey != "" {
		// Best effort; an orphaned object is not worth failing the delete.
		_ = s.fileStorage.DeleteObject(ctx, meal.ImageKey)
	}
	return nil
}

// RequestImageUpload issues a presigned PUT URL for the meal's image and
// records the generated object key on the meal.
func (s *mealService) RequestImageUpload(ctx context.Context, mealID primitive.ObjectID, contentType string) (string, error) {
	meal, err := s.GetMealByID(ctx, mealID)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("meals/%s/%s", mealID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", err
	}

	oldKey := meal.ImageKey
	meal.ImageKey = objectKey
	if err := s.mealRepo.Update(ctx, meal); err != nil {
		return "", err
	}
	if oldKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, oldKey)
	}
	return uploadURL, nil
}
