package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/membership-site/internal/core/domain"
)

const collectionSessions = "sessions"

// SessionStore implements ports.SessionStore on a collection with a TTL
// index, so sessions survive restarts and are reaped by the server.
type SessionStore struct {
	col   *mongo.Collection
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	return &SessionStore{
		col:   db.Collection(collectionSessions),
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

type sessionDoc struct {
	ID        string              `bson:"_id"`
	Claim     domain.SessionClaim `bson:"claim"`
	CreatedAt time.Time           `bson:"created_at"`
	Expires   time.Time           `bson:"expires"`
}

func (s *SessionStore) Create(ctx context.Context, claim domain.SessionClaim) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := s.now()
	doc := sessionDoc{
		ID:        s.newID(),
		Claim:     claim,
		CreatedAt: now,
		Expires:   now.Add(s.ttl),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return doc.ID, nil
}

// Read filters on expiry itself because the TTL monitor only runs about
// once a minute.
func (s *SessionStore) Read(ctx context.Context, id string) (*domain.SessionClaim, error) {
	if id == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := s.now()
	var doc sessionDoc
	err := s.col.FindOne(ctx, bson.M{"_id": id, "expires": bson.M{"$gt": now}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	sess := domain.Session{ID: doc.ID, Claim: doc.Claim, CreatedAt: doc.CreatedAt, ExpiresAt: doc.Expires}
	if sess.Expired(now) {
		return nil, nil
	}
	return &sess.Claim, nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// EnsureIndexes creates the TTL index that expires sessions at "expires".
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires", Value: 1}},
		Options: options.Index().SetName("expires_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("sessions indexes: %w", err)
	}
	return nil
}
