package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/evghenimelnic/chat-server/pkg/logger"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

const defaultHistoryLimit = 50

// MessageStore is the narrow persistence contract the service needs for
// messages. Implemented by MessageRepository.
type MessageStore interface {
	Store(ctx context.Context, msg Message) (Message, error)
	History(ctx context.Context, scope Scope, roomID, chatID string, limit int64, before *time.Time) ([]Message, error)
}

// RoomStore persists and queries room metadata. Implemented by RoomRepository.
type RoomStore interface {
	Create(ctx context.Context, room Room) (Room, error)
	Find(ctx context.Context, filter RoomFilter) ([]Room, error)
}

// SessionStore persists p2p sessions. Implemented by SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, session Session) (Session, error)
}

// Notifier evaluates standing subscriptions against a stored message and
// delivers matches. Implemented by the subscription dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, msg Message)
}

// Cache is the optional recent-history cache. Implemented by HistoryCache.
type Cache interface {
	Append(ctx context.Context, scope Scope, scopeID string, msg Message) error
	Recent(ctx context.Context, scope Scope, scopeID string, limit int64) ([]Message, error)
}

// Service coordinates the inbound message pipeline: persist, fan out to
// the message's own scope, then hand off to subscription dispatch.
type Service struct {
	messages MessageStore
	rooms    RoomStore
	sessions SessionStore
	router   *realtime.Router
	notifier Notifier
	cache    Cache
	log      *slog.Logger
}

// NewService wires the chat service. notifier and cache may be nil: the
// former disables subscription dispatch, the latter disables the history
// cache.
func NewService(
	messages MessageStore,
	rooms RoomStore,
	sessions SessionStore,
	router *realtime.Router,
	notifier Notifier,
	cache Cache,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		messages: messages,
		rooms:    rooms,
		sessions: sessions,
		router:   router,
		notifier: notifier,
		cache:    cache,
		log:      log,
	}
}

// SendCommon persists an incoming message on the common scope and
// broadcasts it to every common-channel connection, sender included.
func (s *Service) SendCommon(ctx context.Context, in Incoming) (Message, error) {
	return s.send(ctx, Message{
		UserID:    in.UserID,
		Content:   in.Content,
		Location:  in.Location,
		EventTime: in.EventTime,
		Scope:     ScopeCommon,
	}, realtime.CommonKey(), nil)
}

// SendRoom persists an incoming message on the room scope and broadcasts
// it to the room's members, sender included.
func (s *Service) SendRoom(ctx context.Context, roomID string, in Incoming) (Message, error) {
	return s.send(ctx, Message{
		UserID:    in.UserID,
		Content:   in.Content,
		Location:  in.Location,
		EventTime: in.EventTime,
		Scope:     ScopeRoom,
		RoomID:    roomID,
	}, realtime.RoomKey(roomID), nil)
}

// SendP2P persists an incoming message on the p2p scope and delivers it to
// the session's other participants. Unlike the common and room paths, the
// sender is excluded here.
func (s *Service) SendP2P(ctx context.Context, sessionID string, in Incoming) (Message, error) {
	return s.send(ctx, Message{
		UserID:    in.UserID,
		Content:   in.Content,
		Location:  in.Location,
		EventTime: in.EventTime,
		Scope:     ScopeP2P,
		ChatID:    sessionID,
	}, realtime.SessionKey(sessionID), []string{in.UserID})
}

func (s *Service) send(ctx context.Context, msg Message, key realtime.ScopeKey, exclude []string) (Message, error) {
	if err := (Incoming{UserID: msg.UserID, Content: msg.Content, Location: msg.Location}).Validate(); err != nil {
		return Message{}, err
	}

	// Persistence failure aborts the whole pipeline: an unstored message
	// is never broadcast and never dispatched.
	stored, err := s.messages.Store(ctx, msg)
	if err != nil {
		return Message{}, err
	}

	if s.cache != nil {
		if err := s.cache.Append(ctx, stored.Scope, scopeID(stored), stored); err != nil {
			s.log.WarnContext(ctx, "history cache append failed",
				logger.MessageID(stored.ID), logger.Error(err))
		}
	}

	s.router.Broadcast(ctx, key, stored, exclude...)

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, stored)
	}

	return stored, nil
}

func scopeID(msg Message) string {
	switch msg.Scope {
	case ScopeRoom:
		return msg.RoomID
	case ScopeP2P:
		return msg.ChatID
	default:
		return ""
	}
}

// CommonHistory returns the most recent common-channel messages,
// oldest-first.
func (s *Service) CommonHistory(ctx context.Context, limit int64, before *time.Time) ([]Message, error) {
	return s.history(ctx, ScopeCommon, "", "", limit, before)
}

// RoomHistory returns the most recent messages of a room, oldest-first.
func (s *Service) RoomHistory(ctx context.Context, roomID string, limit int64, before *time.Time) ([]Message, error) {
	return s.history(ctx, ScopeRoom, roomID, "", limit, before)
}

// P2PHistory returns the most recent messages of a p2p session,
// oldest-first.
func (s *Service) P2PHistory(ctx context.Context, sessionID string, limit int64, before *time.Time) ([]Message, error) {
	return s.history(ctx, ScopeP2P, "", sessionID, limit, before)
}

func (s *Service) history(ctx context.Context, scope Scope, roomID, chatID string, limit int64, before *time.Time) ([]Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	// The cache only mirrors the newest messages, so paginated reads go
	// straight to the store.
	if s.cache != nil && before == nil {
		id := roomID
		if scope == ScopeP2P {
			id = chatID
		}
		cached, err := s.cache.Recent(ctx, scope, id, limit)
		if err != nil {
			s.log.WarnContext(ctx, "history cache read failed", logger.Error(err))
		} else if int64(len(cached)) >= limit {
			return cached, nil
		}
	}

	return s.messages.History(ctx, scope, roomID, chatID, limit, before)
}

// CreateRoom normalizes tags and persists the room.
func (s *Service) CreateRoom(ctx context.Context, room Room) (Room, error) {
	if room.Name == "" {
		return Room{}, ErrMissingRoomName
	}
	if room.Location != nil {
		if err := room.Location.Validate(); err != nil {
			return Room{}, err
		}
	}

	tags := make([]string, 0, len(room.Tags))
	for _, tag := range room.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	room.Tags = tags

	return s.rooms.Create(ctx, room)
}

// ListRooms returns rooms matching the filter. Tags in the filter are
// lower-cased to match stored form.
func (s *Service) ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	for i, tag := range filter.Tags {
		filter.Tags[i] = strings.ToLower(tag)
	}
	return s.rooms.Find(ctx, filter)
}

// CreateSession validates and persists a p2p session.
func (s *Service) CreateSession(ctx context.Context, session Session) (Session, error) {
	if err := session.Validate(); err != nil {
		return Session{}, err
	}
	return s.sessions.Create(ctx, session)
}
