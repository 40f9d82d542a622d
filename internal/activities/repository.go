package activities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrImageNotFound    = errors.New("activity image not found")
	ErrSlugTaken        = errors.New("activity slug already exists")
)

type Repository interface {
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	GetBySlug(ctx context.Context, slug string) (*Activity, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*Activity, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListQuery) ([]Activity, int64, error)

	AddImage(ctx context.Context, image *ActivityImage) error
	GetImage(ctx context.Context, activityID, imageID string) (*ActivityImage, error)
	DeleteImage(ctx context.Context, imageID string) error
	NextImagePosition(ctx context.Context, activityID string) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, activity *Activity) error {
	err := r.db.WithContext(ctx).Omit("Images").Create(activity).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Activity, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Activity, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *repository) first(ctx context.Context, cond string, arg interface{}) (*Activity, error) {
	var activity Activity
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(cond, arg).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Activity{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]interface{}) (*Activity, error) {
	result := r.db.WithContext(ctx).Model(&Activity{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrActivityNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&ActivityImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete activity images: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&Activity{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete activity: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrActivityNotFound
		}
		return nil
	})
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Activity, int64, error) {
	var activities []Activity
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Activity{})

	if !query.IncludeInactive {
		db = db.Where("is_active = ?", true)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Search != "" {
		term := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?", term, term, term)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}

	return activities, totalCount, nil
}

func (r *repository) AddImage(ctx context.Context, image *ActivityImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *repository) GetImage(ctx context.Context, activityID, imageID string) (*ActivityImage, error) {
	var image ActivityImage
	err := r.db.WithContext(ctx).Where("id = ? AND activity_id = ?", imageID, activityID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

func (r *repository) DeleteImage(ctx context.Context, imageID string) error {
	return r.db.WithContext(ctx).Where("id = ?", imageID).Delete(&ActivityImage{}).Error
}

func (r *repository) NextImagePosition(ctx context.Context, activityID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&ActivityImage{}).
		Where("activity_id = ?", activityID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
