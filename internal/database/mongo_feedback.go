package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developia-II/longform-translator-backend/internal/models"
)

type feedbackDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	TranslationID   primitive.ObjectID `bson:"translationId"`
	UserID          primitive.ObjectID `bson:"userId"`
	models.Feedback `bson:",inline"`
}

func (d feedbackDocument) model() models.Feedback {
	f := d.Feedback
	f.ID = d.ID.Hex()
	if d.TranslationID != primitive.NilObjectID {
		f.TranslationID = d.TranslationID.Hex()
	}
	if d.UserID != primitive.NilObjectID {
		f.UserID = d.UserID.Hex()
	}
	return f
}

func (s *MongoStore) CreateFeedback(ctx context.Context, f *models.Feedback) (string, error) {
	translationOID, err := primitive.ObjectIDFromHex(f.TranslationID)
	if err != nil {
		return "", ErrNotFound
	}
	userOID, err := primitive.ObjectIDFromHex(f.UserID)
	if err != nil {
		return "", err
	}

	doc := feedbackDocument{
		ID:            primitive.NewObjectID(),
		TranslationID: translationOID,
		UserID:        userOID,
		Feedback:      *f,
	}
	if _, err := s.collection(feedbackCollection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (s *MongoStore) ListFeedback(ctx context.Context, translationID string) ([]models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(translationID)
	if err != nil {
		return []models.Feedback{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.findFeedback(ctx, bson.M{"translationId": oid}, opts)
}

func (s *MongoStore) ListAllFeedback(ctx context.Context, q models.FeedbackQuery) ([]models.Feedback, int64, error) {
	filter := bson.M{}
	// Date range filter
	createdAt := bson.M{}
	if !q.From.IsZero() {
		createdAt["$gte"] = q.From
	}
	if !q.To.IsZero() {
		createdAt["$lte"] = q.To
	}
	if len(createdAt) > 0 {
		filter["createdAt"] = createdAt
	}

	total, err := s.collection(feedbackCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)

	feedback, err := s.findFeedback(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return feedback, total, nil
}

func (s *MongoStore) findFeedback(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Feedback, error) {
	cursor, err := s.collection(feedbackCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	feedback := make([]models.Feedback, 0, len(docs))
	for _, d := range docs {
		feedback = append(feedback, d.model())
	}
	return feedback, nil
}

func (s *MongoStore) CountFeedback(ctx context.Context) (int64, error) {
	return s.collection(feedbackCollection).CountDocuments(ctx, bson.M{})
}
