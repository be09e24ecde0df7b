package database

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developia-II/longform-translator-backend/internal/models"
)

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.User `bson:",inline"`
}

func (d userDocument) model() models.User {
	u := d.User
	u.ID = d.ID.Hex()
	return u
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	doc := userDocument{ID: primitive.NewObjectID(), User: *u}
	_, err := s.collection(usersCollection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := s.collection(usersCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, query string, page, limit int64) ([]models.User, int64, error) {
	col := s.collection(usersCollection)

	filter := bson.M{}
	if query != "" {
		// search by email or name (case-insensitive contains)
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter = bson.M{"$or": []bson.M{
			{"email": pattern},
			{"name": pattern},
		}}
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, total, nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	return s.collection(usersCollection).CountDocuments(ctx, bson.M{})
}
