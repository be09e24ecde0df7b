package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developia-II/longform-translator-backend/internal/models"
)

type translationDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId"`
	models.Translation `bson:",inline"`
}

func (d translationDocument) model() models.Translation {
	t := d.Translation
	t.ID = d.ID.Hex()
	t.UserID = d.UserID.Hex()
	return t
}

func (s *MongoStore) CreateTranslation(ctx context.Context, t *models.Translation) (string, error) {
	userOID, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return "", err
	}

	doc := translationDocument{
		ID:          primitive.NewObjectID(),
		UserID:      userOID,
		Translation: *t,
	}
	if _, err := s.collection(translationsCollection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (s *MongoStore) UpdateTranslation(ctx context.Context, id string, u models.TranslationUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	filter := bson.M{"_id": oid}
	set := bson.M{"status": u.Status, "updatedAt": time.Now().UTC()}
	unset := bson.M{}

	switch u.Status {
	case models.StatusInProgress:
		set["progress"] = u.Progress
		filter["status"] = bson.M{"$nin": []models.TranslationStatus{models.StatusComplete, models.StatusFailed}}
	case models.StatusComplete:
		set["translatedText"] = u.TranslatedText
		unset["progress"] = ""
		unset["failureReason"] = ""
	case models.StatusFailed:
		set["failureReason"] = u.FailureReason
		unset["progress"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	col := s.collection(translationsCollection)
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// A terminal record ignores progress; only a missing record is an error
	n, err := col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetTranslation(ctx context.Context, id string) (*models.Translation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc translationDocument
	err = s.collection(translationsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t := doc.model()
	return &t, nil
}

func (s *MongoStore) ListTranslations(ctx context.Context, ownerID string, limit int64) ([]models.Translation, error) {
	ownerOID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Translation{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := s.collection(translationsCollection).Find(ctx, bson.M{"userId": ownerOID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []translationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	translations := make([]models.Translation, 0, len(docs))
	for _, d := range docs {
		translations = append(translations, d.model())
	}
	return translations, nil
}

func (s *MongoStore) DeleteTranslation(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.collection(translationsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	_, err = s.collection(feedbackCollection).DeleteMany(ctx, bson.M{"translationId": oid})
	return err
}

func (s *MongoStore) TranslationStats(ctx context.Context) (models.TranslationStats, error) {
	stats := models.TranslationStats{ByStatus: map[models.TranslationStatus]int64{}}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.collection(translationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return stats, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.TranslationStatus `bson:"_id"`
		Count  int64                    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return stats, err
	}

	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	return stats, nil
}
