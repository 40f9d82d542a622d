package activities

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tourly/internal/shared/constants"
	"tourly/pkg/cache"
	"tourly/pkg/logger"
	"tourly/pkg/media"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

var ErrImageStoreUnavailable = errors.New("image storage is not configured")

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetImageStore(store ImageStore)

	CreateActivity(ctx context.Context, req CreateActivityRequest) (*Activity, error)
	GetActivity(ctx context.Context, idOrSlug string) (*Activity, error)
	UpdateActivity(ctx context.Context, id string, req UpdateActivityRequest) (*Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	ListActivities(ctx context.Context, query ListQuery) (*PaginatedActivities, error)

	AddImage(ctx context.Context, activityID string, upload ImageUpload) (*ActivityImage, error)
	DeleteImage(ctx context.Context, activityID, imageID string) error
}

// ImageStore is satisfied by media.FallbackUploader
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*media.Object, error)
	DeleteFrom(ctx context.Context, provider, key string) error
}

type service struct {
	repo            Repository
	cacheService    cache.Service
	images          ImageStore
	defaultCurrency string
	log             *logger.Logger
}

func NewService(repo Repository, defaultCurrency string, log *logger.Logger) Service {
	return &service{
		repo:            repo,
		cacheService:    cache.Noop{},
		defaultCurrency: defaultCurrency,
		log:             log.WithComponent("activities"),
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	if cacheService != nil {
		s.cacheService = cacheService
	}
}

func (s *service) SetImageStore(store ImageStore) {
	s.images = store
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ACTIVITIES); err != nil {
		s.log.ErrorWithContext(ctx, "failed to invalidate activity cache", err, nil)
	}
}

func (s *service) CreateActivity(ctx context.Context, req CreateActivityRequest) (*Activity, error) {
	slug, err := s.uniqueSlug(ctx, req.Slug, req.Title)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	activity := &Activity{
		ID:              NewActivityID(),
		Title:           strings.TrimSpace(req.Title),
		Slug:            slug,
		Description:     req.Description,
		Category:        req.Category,
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
		PriceAdult:      req.PriceAdult,
		PriceChild:      req.PriceChild,
		PriceSenior:     req.PriceSenior,
		Currency:        currency,
		MaxParticipants: req.MaxParticipants,
		IsActive:        req.IsActive == nil || *req.IsActive,
		Images:          []ActivityImage{},
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.invalidate(ctx)
	return activity, nil
}

// uniqueSlug prefers the requested slug; generated slugs get a short suffix on collision
func (s *service) uniqueSlug(ctx context.Context, requested, title string) (string, error) {
	if requested != "" {
		slug := Slugify(requested)
		if slug == "" {
			return "", fmt.Errorf("invalid slug %q", requested)
		}
		return slug, nil
	}

	slug := Slugify(title)
	if slug == "" {
		slug = "activity"
	}

	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		slug = slug + "-" + strings.ToLower(shortuuid.New()[:6])
	}
	return slug, nil
}

func (s *service) GetActivity(ctx context.Context, idOrSlug string) (*Activity, error) {
	var activity Activity
	err := s.cacheService.GetOrSet(ctx, constants.BuildActivityDetailKey(idOrSlug), constants.TTL_ACTIVITY_DETAIL,
		func() (interface{}, error) {
			if strings.HasPrefix(idOrSlug, IDPrefix) {
				return s.repo.GetByID(ctx, idOrSlug)
			}
			return s.repo.GetBySlug(ctx, idOrSlug)
		}, &activity)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (s *service) UpdateActivity(ctx context.Context, id string, req UpdateActivityRequest) (*Activity, error) {
	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.PriceAdult != nil {
		updates["price_adult"] = *req.PriceAdult
	}
	if req.PriceChild != nil {
		updates["price_child"] = *req.PriceChild
	}
	if req.PriceSenior != nil {
		updates["price_senior"] = *req.PriceSenior
	}
	if req.Currency != nil {
		updates["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.MaxParticipants != nil {
		updates["max_participants"] = *req.MaxParticipants
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	updates["updated_at"] = time.Now()

	activity, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.invalidate(ctx)
	return activity, nil
}

func (s *service) DeleteActivity(ctx context.Context, id string) error {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for _, img := range activity.Images {
		s.removeObject(ctx, img)
	}

	s.invalidate(ctx)
	return nil
}

func (s *service) ListActivities(ctx context.Context, query ListQuery) (*PaginatedActivities, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 12
	}
	if query.Limit > 100 {
		query.Limit = 100
	}

	fetch := func() (interface{}, error) {
		activities, total, err := s.repo.List(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list activities: %w", err)
		}
		return &PaginatedActivities{
			Activities: activities,
			TotalCount: total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
		}, nil
	}

	// Admin listings include drafts and are never cached
	if query.IncludeInactive {
		result, err := fetch()
		if err != nil {
			return nil, err
		}
		return result.(*PaginatedActivities), nil
	}

	var result PaginatedActivities
	key := constants.BuildActivityListKey(query.Page, query.Limit, query.Category, strings.ToLower(query.Search))
	if err := s.cacheService.GetOrSet(ctx, key, constants.TTL_ACTIVITY_LIST, fetch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) AddImage(ctx context.Context, activityID string, upload ImageUpload) (*ActivityImage, error) {
	if s.images == nil {
		return nil, ErrImageStoreUnavailable
	}

	if _, err := s.repo.GetByID(ctx, activityID); err != nil {
		return nil, err
	}

	position, err := s.repo.NextImagePosition(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute image position: %w", err)
	}

	key := media.ObjectKey("activities/"+activityID, upload.Filename)
	obj, err := s.images.Upload(ctx, key, upload.Data, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := &ActivityImage{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		URL:        obj.URL,
		Provider:   obj.Provider,
		ObjectKey:  obj.Key,
		AltText:    upload.AltText,
		Position:   position,
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		s.removeObject(ctx, *image)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	s.invalidate(ctx)
	return image, nil
}

func (s *service) DeleteImage(ctx context.Context, activityID, imageID string) error {
	image, err := s.repo.GetImage(ctx, activityID, imageID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteImage(ctx, image.ID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.removeObject(ctx, *image)
	s.invalidate(ctx)
	return nil
}

// removeObject is best effort; an orphaned object is logged, not surfaced
func (s *service) removeObject(ctx context.Context, image ActivityImage) {
	if s.images == nil || image.ObjectKey == "" {
		return
	}
	if err := s.images.DeleteFrom(ctx, image.Provider, image.ObjectKey); err != nil {
		s.log.ErrorWithContext(ctx, "failed to remove stored image", err, map[string]interface{}{
			"provider": image.Provider,
			"key":      image.ObjectKey,
		})
	}
}
