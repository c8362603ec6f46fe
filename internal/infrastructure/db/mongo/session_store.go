package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carenet/portal/internal/core/ports"
)

const sessionCollection = "portal_sessions"

// SessionStore keeps every entry of a namespace in one document, so SetAll
// and Delete are single-document updates and therefore atomic.
type SessionStore struct {
	coll      *mongo.Collection
	namespace string
}

var _ ports.KeyValueStore = (*SessionStore)(nil)

type sessionDoc struct {
	ID        string            `bson:"_id"`
	Entries   map[string]string `bson:"entries"`
	UpdatedAt int64             `bson:"updated_at"`
}

func NewSessionStore(db *mongo.Database, namespace string) *SessionStore {
	if namespace == "" {
		namespace = "carenet"
	}
	return &SessionStore{coll: db.Collection(sessionCollection), namespace: namespace}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.namespace}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find session: %w", err)
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

func (s *SessionStore) SetAll(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	set := bson.M{"updated_at": time.Now().Unix()}
	for k, v := range entries {
		field, err := entryField(k)
		if err != nil {
			return err
		}
		set[field] = v
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.namespace},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		field, err := entryField(k)
		if err != nil {
			return err
		}
		unset[field] = ""
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.namespace},
		bson.M{"$unset": unset, "$set": bson.M{"updated_at": time.Now().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// entryField is the dotted path of key inside the document.
func entryField(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, ".$") {
		return "", fmt.Errorf("session key %q: must be non-empty without '.' or '$'", key)
	}
	return "entries." + key, nil
}
