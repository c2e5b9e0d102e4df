package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/modules/subscription"
)

type fakeStore struct {
	created []subscription.Subscription
	byUser  map[string][]subscription.Subscription
}

func (s *fakeStore) Create(_ context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	sub.ID = "generated"
	sub.CreatedAt = time.Now().UTC()
	s.created = append(s.created, sub)
	return sub, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID string) ([]subscription.Subscription, error) {
	return s.byUser[userID], nil
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("normalizes keywords and defaults scope", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		svc := subscription.NewService(store)

		created, err := svc.Create(ctx, subscription.Subscription{
			UserID:   "u1",
			Keywords: []string{" URGENT ", "", "Fire"},
		})
		require.NoError(t, err)

		assert.Equal(t, "generated", created.ID)
		assert.Equal(t, subscription.ScopeAny, created.Scope)
		assert.Equal(t, []string{"urgent", "fire"}, created.Keywords)
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(&fakeStore{})

		_, err := svc.Create(ctx, subscription.Subscription{Keywords: []string{"x"}})
		assert.ErrorIs(t, err, subscription.ErrMissingUserID)
	})

	t.Run("rejects unknown scope filter", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(&fakeStore{})

		_, err := svc.Create(ctx, subscription.Subscription{UserID: "u1", Scope: "global"})
		assert.ErrorIs(t, err, subscription.ErrInvalidScope)
	})

	t.Run("rejects inverted time window", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(&fakeStore{})

		start := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
		end := start.Add(-time.Hour)
		_, err := svc.Create(ctx, subscription.Subscription{
			UserID:    "u1",
			WhenStart: &start,
			WhenEnd:   &end,
		})
		assert.ErrorIs(t, err, subscription.ErrInvalidWindow)
	})

	t.Run("validates location bounds", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(&fakeStore{})

		_, err := svc.Create(ctx, subscription.Subscription{
			UserID: "u1",
			Where:  &chat.Location{Latitude: 91},
		})
		assert.ErrorIs(t, err, chat.ErrInvalidLatitude)
	})

	t.Run("accepts an open subscription", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		svc := subscription.NewService(store)

		created, err := svc.Create(ctx, subscription.Subscription{UserID: "u1"})
		require.NoError(t, err)
		assert.Empty(t, created.Keywords)
	})
}

func TestServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the owner's subscriptions", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{byUser: map[string][]subscription.Subscription{
			"u1": {{ID: "s1", UserID: "u1"}},
		}}
		svc := subscription.NewService(store)

		subs, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(&fakeStore{})

		_, err := svc.List(ctx, "")
		assert.ErrorIs(t, err, subscription.ErrMissingUserID)
	})
}
