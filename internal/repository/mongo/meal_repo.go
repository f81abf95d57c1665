package mongo

import (
	"context"
	"errors"
	"time"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mealCollectionName = "meals"

// mongoMealRepository implements repository.MealRepository
type mongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates a new Meal repository.
func NewMongoMealRepository(db *mongo.Database) repository.MealRepository {
	return &mongoMealRepository{
		collection: db.Collection(mealCollectionName),
	}
}

// Create inserts a new catalog meal.
func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if err := meal.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	meal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single meal by its ID.
func (r *mongoMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	var meal domain.Meal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &meal, nil
}

// List returns catalog meals matching the filter, name-sorted.
func (r *mongoMealRepository) List(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	query := bson.M{}
	if filter.MealType != "" {
		query["mealType"] = filter.MealType
	}
	if filter.DietaryTag != "" {
		query["dietaryTags"] = filter.DietaryTag
	}
	if len(filter.ExcludeAllergens) > 0 {
		query["allergens"] = bson.M{"$nin": filter.ExcludeAllergens}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meals []domain.Meal
	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// Update replaces the editable fields of a meal. Last writer wins; catalog
// edits carry no optimistic-lock requirement.
func (r *mongoMealRepository) Update(ctx context.Context, meal *domain.Meal) error {
	if meal.ID == primitive.NilObjectID {
		return errors.New("meal ID is required for update")
	}
	if err := meal.Validate(); err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":         meal.Name,
			"mealType":     meal.MealType,
			"description":  meal.Description,
			"servings":     meal.Servings,
			"difficulty":   meal.Difficulty,
			"nutrition":    meal.Nutrition,
			"ingredients":  meal.Ingredients,
			"instructions": meal.Instructions,
			"dietaryTags":  meal.DietaryTags,
			"allergens":    meal.Allergens,
			"imageKey":     meal.ImageKey,
			"updatedAt":    time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": meal.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a meal from the catalog.
func (r *mongoMealRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMealIndexes creates necessary indexes. Call during startup.
func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: candidate pools per meal type
			Keys:    bson.D{{Key: "mealType", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "dietaryTags", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "allergens", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
