package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"altervalue/internal/model"
)

type ResponseRepository interface {
	// Upsert stores the response, replacing any previous submission by the
	// same respondent for the same campaign. Returns true when a previous
	// submission was replaced.
	Upsert(ctx context.Context, response *model.Response) (bool, error)
	GetByCampaignID(ctx context.Context, campaignID string) ([]model.Response, error)
	CountByCampaignID(ctx context.Context, campaignID string) (int64, error)
	ArchiveByCampaignID(ctx context.Context, campaignID string) error
	DeleteByCampaignID(ctx context.Context, campaignID string) error
}

type responseRepository struct {
	collection *mongo.Collection
}

func NewResponseRepository(client *mongo.Client) ResponseRepository {
	db := client.Database("altervalue")
	return &responseRepository{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepository) Upsert(ctx context.Context, response *model.Response) (bool, error) {
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now()
	}

	filter := bson.M{
		"campaignId":     response.CampaignID,
		"respondentHash": response.RespondentHash,
	}
	stored := *response
	stored.ID = ""

	result, err := r.collection.ReplaceOne(ctx, filter, stored, options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *responseRepository) GetByCampaignID(ctx context.Context, campaignID string) ([]model.Response, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"campaignId": campaignID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []model.Response
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *responseRepository) CountByCampaignID(ctx context.Context, campaignID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"campaignId": campaignID})
}

func (r *responseRepository) ArchiveByCampaignID(ctx context.Context, campaignID string) error {
	update := bson.M{"$set": bson.M{"archived": true}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"campaignId": campaignID}, update)
	return err
}

func (r *responseRepository) DeleteByCampaignID(ctx context.Context, campaignID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"campaignId": campaignID})
	return err
}
