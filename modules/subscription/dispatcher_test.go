package subscription_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/modules/subscription"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

type stubSource struct {
	subs []subscription.Subscription
	err  error
}

func (s *stubSource) Candidates(context.Context, chat.Message) ([]subscription.Subscription, error) {
	return s.subs, s.err
}

type chanRecipient struct{ ch chan any }

func newChanRecipient(buf int) *chanRecipient {
	return &chanRecipient{ch: make(chan any, buf)}
}

func (r *chanRecipient) Deliver(v any) error {
	select {
	case r.ch <- v:
		return nil
	default:
		return realtime.ErrRecipientSlow
	}
}

func drain(r *chanRecipient) []any {
	var out []any
	for {
		select {
		case v := <-r.ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestDispatcherDispatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("one delivery per matching subscription", func(t *testing.T) {
		t.Parallel()

		first := baseSubscription()
		first.ID = "s1"
		first.Keywords = []string{"urgent"}
		second := baseSubscription()
		second.ID = "s2"
		second.Scope = subscription.ScopeRoom
		unrelated := baseSubscription()
		unrelated.ID = "s3"
		unrelated.Keywords = []string{"payroll"}

		reg := realtime.NewRegistry()
		router := realtime.NewRouter(reg, nil)
		stream := newChanRecipient(8)
		reg.Join(realtime.UserKey("watcher"), "", stream)

		d := subscription.NewDispatcher(&stubSource{subs: []subscription.Subscription{first, second, unrelated}}, router, nil)

		msg := baseMessage()
		msg.Content = "urgent: pipe burst"
		d.Dispatch(ctx, msg)

		delivered := drain(stream)
		require.Len(t, delivered, 2)

		ids := make(map[string]bool)
		for _, v := range delivered {
			n, ok := v.(subscription.Notification)
			require.True(t, ok)
			assert.Equal(t, subscription.NotificationType, n.Type)
			assert.Equal(t, msg.ID, n.Message.ID)
			ids[n.Subscription.ID] = true
		}
		assert.Equal(t, map[string]bool{"s1": true, "s2": true}, ids)
	})

	t.Run("notifications target the subscription owner only", func(t *testing.T) {
		t.Parallel()

		sub := baseSubscription()
		reg := realtime.NewRegistry()
		router := realtime.NewRouter(reg, nil)
		owner := newChanRecipient(4)
		bystander := newChanRecipient(4)
		reg.Join(realtime.UserKey("watcher"), "", owner)
		reg.Join(realtime.UserKey("someone-else"), "", bystander)

		d := subscription.NewDispatcher(&stubSource{subs: []subscription.Subscription{sub}}, router, nil)
		d.Dispatch(ctx, baseMessage())

		assert.Len(t, drain(owner), 1)
		assert.Empty(t, drain(bystander))
	})

	t.Run("matches are logged with subscription and user ids", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		sub := baseSubscription()
		reg := realtime.NewRegistry()
		router := realtime.NewRouter(reg, nil)
		d := subscription.NewDispatcher(&stubSource{subs: []subscription.Subscription{sub}}, router, log)

		d.Dispatch(ctx, baseMessage())

		assert.Contains(t, buf.String(), `"subscription_id":"s1"`)
		assert.Contains(t, buf.String(), `"user_id":"watcher"`)
		assert.Contains(t, buf.String(), `"message_id":"m1"`)
	})

	t.Run("candidate lookup failure is swallowed", func(t *testing.T) {
		t.Parallel()

		reg := realtime.NewRegistry()
		router := realtime.NewRouter(reg, nil)
		d := subscription.NewDispatcher(&stubSource{err: errors.New("store down")}, router, nil)

		assert.NotPanics(t, func() { d.Dispatch(ctx, baseMessage()) })
	})

	t.Run("owner without live stream is a no-op", func(t *testing.T) {
		t.Parallel()

		reg := realtime.NewRegistry()
		router := realtime.NewRouter(reg, nil)
		d := subscription.NewDispatcher(&stubSource{subs: []subscription.Subscription{baseSubscription()}}, router, nil)

		assert.NotPanics(t, func() { d.Dispatch(ctx, baseMessage()) })
	})
}
