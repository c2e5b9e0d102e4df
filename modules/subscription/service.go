package subscription

import (
	"context"
)

// Store is the persistence contract the service needs. Implemented by
// Repository.
type Store interface {
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)
}

// Service validates and persists standing subscriptions.
type Service struct {
	store Store
}

// NewService wires the subscription service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create normalizes keywords, validates the record and persists it.
func (s *Service) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.UserID == "" {
		return Subscription{}, ErrMissingUserID
	}
	if sub.Scope == "" {
		sub.Scope = ScopeAny
	}
	if !sub.Scope.Valid() {
		return Subscription{}, ErrInvalidScope
	}
	if sub.Where != nil {
		if err := sub.Where.Validate(); err != nil {
			return Subscription{}, err
		}
	}
	if sub.WhenStart != nil && sub.WhenEnd != nil && sub.WhenEnd.Before(*sub.WhenStart) {
		return Subscription{}, ErrInvalidWindow
	}

	// An otherwise empty subscription is an open one: it fires on every
	// message its scope filter admits.
	sub.Keywords = NormalizeKeywords(sub.Keywords)

	return s.store.Create(ctx, sub)
}

// List returns all subscriptions owned by userID.
func (s *Service) List(ctx context.Context, userID string) ([]Subscription, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.store.ListByUser(ctx, userID)
}
