package realtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

// funcRecipient delegates delivery to a closure, for failure-path tests.
type funcRecipient struct {
	fn func(v any) error
}

func (r *funcRecipient) Deliver(v any) error { return r.fn(v) }

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

func TestRouterBroadcast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers to every member exactly once", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.RoomKey("lobby")
		a := newChanRecipient(4)
		b := newChanRecipient(4)
		reg.Join(key, "a", a)
		reg.Join(key, "b", b)

		rt.Broadcast(ctx, key, "hello")

		assert.Equal(t, []any{"hello"}, drain(a))
		assert.Equal(t, []any{"hello"}, drain(b))
	})

	t.Run("excluded identity receives nothing", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.SessionKey("s1")
		sender := newChanRecipient(4)
		peer := newChanRecipient(4)
		reg.Join(key, "alice", sender)
		reg.Join(key, "bob", peer)

		rt.Broadcast(ctx, key, "psst", "alice")

		assert.Empty(t, drain(sender))
		assert.Equal(t, []any{"psst"}, drain(peer))
	})

	t.Run("empty scope is a no-op", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		assert.NotPanics(t, func() {
			rt.Broadcast(ctx, realtime.RoomKey("empty"), "anyone?")
		})
	})

	t.Run("failed delivery self-heals", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.RoomKey("lobby")
		healthy := newChanRecipient(4)
		reg.Join(key, "dead", brokenRecipient{})
		reg.Join(key, "live", healthy)

		rt.Broadcast(ctx, key, "first")

		// The broken member is gone from subsequent snapshots; the
		// healthy one was unaffected.
		identities := make([]string, 0, 1)
		for _, m := range reg.Snapshot(key) {
			identities = append(identities, m.Identity)
		}
		assert.Equal(t, []string{"live"}, identities)
		assert.Equal(t, []any{"first"}, drain(healthy))

		rt.Broadcast(ctx, key, "second")
		assert.Equal(t, []any{"second"}, drain(healthy))
	})

	t.Run("self-heal spares a replacement joined mid-broadcast", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.SessionKey("s1")
		fresh := newChanRecipient(4)

		// A dying connection whose delivery fails right after the user
		// reconnected under the same identity. Self-heal must remove the
		// snapshot's stale handle, not whatever now holds the identity.
		dying := &funcRecipient{fn: func(any) error {
			reg.Join(key, "alice", fresh)
			return realtime.ErrRecipientGone
		}}
		reg.Join(key, "alice", dying)

		rt.Broadcast(ctx, key, "hello")

		members := reg.Snapshot(key)
		require.Len(t, members, 1)
		assert.Same(t, fresh, members[0].Recipient.(*chanRecipient))

		rt.Broadcast(ctx, key, "again")
		assert.Equal(t, []any{"again"}, drain(fresh))
	})

	t.Run("slow recipient dropped without blocking others", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.CommonKey()
		slow := newChanRecipient(1)
		fast := newChanRecipient(8)
		reg.Join(key, "slow", slow)
		reg.Join(key, "fast", fast)

		rt.Broadcast(ctx, key, "one")
		rt.Broadcast(ctx, key, "two") // overflows slow's single-slot buffer

		require.Equal(t, []any{"one", "two"}, drain(fast))
		for _, m := range reg.Snapshot(key) {
			assert.NotEqual(t, "slow", m.Identity)
		}
	})

	t.Run("per-key ordering is preserved", func(t *testing.T) {
		t.Parallel()
		reg := realtime.NewRegistry()
		rt := realtime.NewRouter(reg, nil)

		key := realtime.RoomKey("ordered")
		rec := newChanRecipient(16)
		reg.Join(key, "c1", rec)

		for i := range 10 {
			rt.Broadcast(ctx, key, i)
		}

		got := drain(rec)
		require.Len(t, got, 10)
		for i, v := range got {
			assert.Equal(t, i, v)
		}
	})
}
