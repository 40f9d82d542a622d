package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourly/pkg/logger"
)

var ErrInvalidRole = errors.New("invalid role")

type Service interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context, filter ListFilter) (*ProfileListResponse, error)
	UpdateRole(ctx context.Context, id string, role string) (*Profile, error)
	SyncSubscription(ctx context.Context, update SubscriptionUpdate) error
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, log: log.WithComponent("profiles")}
}

func (s *service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProfiles(ctx context.Context, filter ListFilter) (*ProfileListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return &ProfileListResponse{
		Profiles:   items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *service) UpdateRole(ctx context.Context, id string, role string) (*Profile, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, id, Role(role)); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SyncSubscription records the processor's subscription state. A customer we
// have never seen is logged and skipped so the webhook is not redelivered forever.
func (s *service) SyncSubscription(ctx context.Context, update SubscriptionUpdate) error {
	if update.ProfileID == "" && update.StripeCustomerID == "" {
		s.log.WarnWithContext(ctx, "Subscription update without customer", map[string]interface{}{
			"subscription_id": update.SubscriptionID,
		})
		return nil
	}

	affected, err := s.repo.UpdateSubscription(ctx, update)
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", update.SubscriptionID, err)
	}

	if affected == 0 {
		s.log.WarnWithContext(ctx, "Subscription update matched no profile", map[string]interface{}{
			"profile_id":         update.ProfileID,
			"stripe_customer_id": update.StripeCustomerID,
			"subscription_id":    update.SubscriptionID,
		})
		return nil
	}

	s.log.InfoWithContext(ctx, "Subscription synced", map[string]interface{}{
		"profile_id":         update.ProfileID,
		"stripe_customer_id": update.StripeCustomerID,
		"status":             update.Status,
	})
	return nil
}
