package repository

import (
	"context"
	"fmt"
	"time"

	"CopperxBot/bot/chat"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique user index the session CAS relies on.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb create index error: %w", err)
	}
	return nil
}

func (m *MongoDB) GetSession(ctx context.Context, userID string) (*chat.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.D{{Key: "user_id", Value: userID}}

	var sess chat.Session
	err = collection.FindOne(ctx, filter).Decode(&sess)
	if err != nil {
		if e := m.findError(err); e != nil {
			return nil, e
		}
		return nil, nil
	}
	return &sess, nil
}

// PutSession stores s if the stored version still equals s.Version. A new
// session is inserted at version 1; the unique user index turns a concurrent
// insert into a conflict.
func (m *MongoDB) PutSession(ctx context.Context, s *chat.Session) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	next := s.Clone()
	next.Version = s.Version + 1
	next.UpdatedAt = time.Now()

	if s.Version == 0 {
		_, err = collection.InsertOne(ctx, next)
		if mongo.IsDuplicateKeyError(err) {
			return chat.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("mongodb insert error: %w", err)
		}
		s.Version = next.Version
		s.UpdatedAt = next.UpdatedAt
		return nil
	}

	filter := bson.D{{Key: "user_id", Value: s.UserID}, {Key: "version", Value: s.Version}}
	result, err := collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("mongodb replace error: %w", err)
	}
	if result.MatchedCount == 0 {
		return chat.ErrConflict
	}
	s.Version = next.Version
	s.UpdatedAt = next.UpdatedAt
	return nil
}

func (m *MongoDB) DeleteSession(ctx context.Context, userID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	_, err = collection.DeleteOne(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	return nil
}

// ListRecipients returns the user and chat of every stored session.
func (m *MongoDB) ListRecipients(ctx context.Context) ([]chat.Recipient, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	opts := options.Find().
		SetProjection(bson.D{{Key: "user_id", Value: 1}, {Key: "chat_id", Value: 1}}).
		SetSort(bson.D{{Key: "user_id", Value: 1}})

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var recipients []chat.Recipient
	if err = cursor.All(ctx, &recipients); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return recipients, nil
}
