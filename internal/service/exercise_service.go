package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"
	"alcyxob/fitness-scheduler/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("exercise validation failed")
	ErrNoVideo          = errors.New("exercise has no demonstration video")
)

// ExerciseService manages the household exercise library.
type ExerciseService interface {
	CreateExercise(ctx context.Context, input ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetAllExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error

	// RequestVideoUploadURL reserves an object key for the exercise's
	// demonstration video and returns a presigned PUT URL for the client to
	// upload it directly.
	RequestVideoUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (string, error)
	// GetVideoDownloadURL returns a presigned GET URL for the exercise's
	// demonstration video.
	GetVideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// ExerciseInput carries the writable fields of an exercise.
type ExerciseInput struct {
	Name              string
	Category          domain.Category
	Subcategory       string
	DurationMin       int
	Intensity         domain.Intensity
	Equipment         []string
	Contraindications []string
	Modifications     string
	SafetyNotes       string
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

var validCategories = map[domain.Category]struct{}{
	domain.CategoryCardio:      {},
	domain.CategoryStrength:    {},
	domain.CategoryFlexibility: {},
	domain.CategorySport:       {},
}

func (s *exerciseService) validate(input ExerciseInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if _, ok := validCategories[input.Category]; !ok {
		return fmt.Errorf("%w: unknown category %q", ErrValidationFailed, input.Category)
	}
	if input.DurationMin <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidationFailed)
	}
	return nil
}

// CreateExercise handles the creation of a new library exercise.
// Contraindication labels are stored trimmed and lower-cased so the query-
// time Layer-1 filter compares like with like.
func (s *exerciseService) CreateExercise(ctx context.Context, input ExerciseInput) (*domain.Exercise, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:              input.Name,
		Category:          input.Category,
		Subcategory:       input.Subcategory,
		DurationMin:       input.DurationMin,
		Intensity:         input.Intensity,
		Equipment:         input.Equipment,
		Contraindications: cleanLabels(input.Contraindications),
		Modifications:     input.Modifications,
		SafetyNotes:       input.SafetyNotes,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetAllExercises retrieves the full library. Admin listing only: member-
// facing reads go through the schedule service's safe catalog.
func (s *exerciseService) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetAll(ctx)
}

// UpdateExercise handles updating an existing exercise.
func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	existing.Name = input.Name
	existing.Category = input.Category
	existing.Subcategory = input.Subcategory
	existing.DurationMin = input.DurationMin
	existing.Intensity = input.Intensity
	existing.Equipment = input.Equipment
	existing.Contraindications = cleanLabels(input.Contraindications)
	existing.Modifications = input.Modifications
	existing.SafetyNotes = input.SafetyNotes

	if err = s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise removes an exercise and its demonstration video, if any.
// Existing schedules are unaffected: day slots hold snapshots, not references.
func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if err = s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if exercise.VideoObjectKey != "" {
		// Best effort; the library row is already gone.
		_ = s.fileStorage.DeleteObject(ctx, exercise.VideoObjectKey)
	}
	return nil
}

// RequestVideoUploadURL reserves an object key and returns a presigned PUT URL.
func (s *exerciseService) RequestVideoUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}

	objectKey := fmt.Sprintf("exercises/%s/demo", uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", err
	}

	exercise.VideoObjectKey = objectKey
	if err = s.exerciseRepo.Update(ctx, exercise); err != nil {
		return "", err
	}
	return uploadURL, nil
}

// GetVideoDownloadURL returns a presigned GET URL for the demonstration video.
func (s *exerciseService) GetVideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if exercise.VideoObjectKey == "" {
		return "", ErrNoVideo
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}

// cleanLabels trims, lower-cases and deduplicates constraint labels,
// preserving first-occurrence order. Empty entries are dropped.
func cleanLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var cleaned []string
	for _, label := range labels {
		trimmed := strings.ToLower(strings.TrimSpace(label))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
