package subscription

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/evghenimelnic/chat-server/modules/chat"
)

const subscriptionsCollection = "subscriptions"

// EnsureIndexes creates the indexes the subscription collection relies
// on: per-user listing and the scope key the dispatch pre-filter hits.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(subscriptionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "scope", Value: 1}}},
	})
	return err
}

// Repository persists and queries subscriptions in MongoDB.
type Repository struct {
	col *mongo.Collection
}

// NewRepository binds the repository to the subscriptions collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(subscriptionsCollection)}
}

// Create persists a subscription and returns it with its assigned id and
// creation timestamp.
func (r *Repository) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	sub.ID = bson.NewObjectID().Hex()
	sub.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, sub); err != nil {
		return Subscription{}, errors.Join(ErrStoreFailure, err)
	}
	return sub, nil
}

// ListByUser returns all subscriptions owned by userID.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var subs []Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return subs, nil
}

// Candidates returns the subscriptions whose scope filter could match the
// message. The query is a coarse pre-filter only: every candidate is
// re-checked in full by Match before any notification goes out.
func (r *Repository) Candidates(ctx context.Context, msg chat.Message) ([]Subscription, error) {
	scoped := bson.M{"scope": string(msg.Scope)}
	switch msg.Scope {
	case chat.ScopeRoom:
		scoped["$or"] = []bson.M{
			{"room_id": msg.RoomID},
			{"room_id": bson.M{"$in": []any{nil, ""}}},
		}
	case chat.ScopeP2P:
		scoped["$or"] = []bson.M{
			{"chat_id": msg.ChatID},
			{"chat_id": bson.M{"$in": []any{nil, ""}}},
		}
	}

	cursor, err := r.col.Find(ctx, bson.M{"$or": []bson.M{
		{"scope": string(ScopeAny)},
		scoped,
	}})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var subs []Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return subs, nil
}
