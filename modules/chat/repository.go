package chat

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	messagesCollection = "messages"
	roomsCollection    = "rooms"
	sessionsCollection = "p2p_sessions"
)

// EnsureIndexes creates the indexes the chat collections rely on: the
// compound history index and the room text-search index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "scope", Value: 1},
			{Key: "room_id", Value: 1},
			{Key: "chat_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(roomsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tags", Value: "text"},
			{Key: "name", Value: "text"},
			{Key: "description", Value: "text"},
		},
	})
	return err
}

// MessageRepository persists and queries messages in MongoDB.
type MessageRepository struct {
	col *mongo.Collection
}

// NewMessageRepository binds the repository to the messages collection.
func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(messagesCollection)}
}

// Store assigns an id and creation timestamp and persists the message.
// All caller-provided fields are echoed back unchanged.
func (r *MessageRepository) Store(ctx context.Context, msg Message) (Message, error) {
	msg.ID = bson.NewObjectID().Hex()
	msg.CreatedAt = time.Now().UTC()

	if _, err := r.col.InsertOne(ctx, msg); err != nil {
		return Message{}, errors.Join(ErrStoreFailure, err)
	}
	return msg, nil
}

// History returns up to limit messages for the given scope, newest bounded
// by before, ordered oldest-first.
func (r *MessageRepository) History(ctx context.Context, scope Scope, roomID, chatID string, limit int64, before *time.Time) ([]Message, error) {
	filter := bson.M{"scope": scope}
	if roomID != "" {
		filter["room_id"] = roomID
	}
	if chatID != "" {
		filter["chat_id"] = chatID
	}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var history []Message
	if err := cursor.All(ctx, &history); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	reverse(history)
	return history, nil
}

func reverse(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// RoomRepository persists and queries room metadata.
type RoomRepository struct {
	col *mongo.Collection
}

// NewRoomRepository binds the repository to the rooms collection.
func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(roomsCollection)}
}

// Create persists a room and returns it with its assigned id.
func (r *RoomRepository) Create(ctx context.Context, room Room) (Room, error) {
	room.ID = bson.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, room); err != nil {
		return Room{}, errors.Join(ErrStoreFailure, err)
	}
	return room, nil
}

// Degrees of latitude/longitude per kilometre, used for the coarse
// bounding-box room filter. Longitude shrinks with the cosine of the
// latitude; the denominator is clamped to avoid blowing up at the poles.
const (
	kmPerLatDegree = 110.574
	kmPerLonDegree = 111.320
)

// Find returns rooms matching the filter. Text search and the geo
// bounding box are resolved by the store's indexes.
func (r *RoomRepository) Find(ctx context.Context, filter RoomFilter) ([]Room, error) {
	query := bson.M{}

	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$all": filter.Tags}
	}
	if filter.Topic != "" {
		query["topic"] = filter.Topic
	}

	var and []bson.M
	if filter.Query != "" {
		and = append(and, bson.M{"$text": bson.M{"$search": filter.Query}})
	}

	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKm != nil {
		latDelta := *filter.RadiusKm / kmPerLatDegree
		cosLat := math.Max(math.Abs(math.Cos(*filter.Latitude*math.Pi/180)), 0.0001)
		lonDelta := *filter.RadiusKm / (kmPerLonDegree * cosLat)
		and = append(and, bson.M{
			"location.latitude":  bson.M{"$gte": *filter.Latitude - latDelta, "$lte": *filter.Latitude + latDelta},
			"location.longitude": bson.M{"$gte": *filter.Longitude - lonDelta, "$lte": *filter.Longitude + lonDelta},
		})
	}

	if filter.StartTime != nil || filter.EndTime != nil {
		window := bson.M{}
		if filter.StartTime != nil {
			window["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			window["$lte"] = *filter.EndTime
		}
		query["event_time"] = window
	}

	if len(and) > 0 {
		query["$and"] = and
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var rooms []Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return rooms, nil
}

// SessionRepository persists p2p session documents.
type SessionRepository struct {
	col *mongo.Collection
}

// NewSessionRepository binds the repository to the sessions collection.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(sessionsCollection)}
}

// Create persists a session and returns it with its assigned id and
// creation timestamp.
func (r *SessionRepository) Create(ctx context.Context, session Session) (Session, error) {
	session.ID = bson.NewObjectID().Hex()
	session.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, session); err != nil {
		return Session{}, errors.Join(ErrStoreFailure, err)
	}
	return session, nil
}
