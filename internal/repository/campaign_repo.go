package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"altervalue/internal/model"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	GetByAccessCode(ctx context.Context, code string) (*model.Campaign, error)
	GetByConsultant(ctx context.Context, consultantID string) ([]*model.Campaign, error)
	Update(ctx context.Context, campaign *model.Campaign) error
	Delete(ctx context.Context, id string) error
}

type campaignRepository struct {
	collection *mongo.Collection
}

func NewCampaignRepository(client *mongo.Client) CampaignRepository {
	db := client.Database("altervalue")
	return &campaignRepository{
		collection: db.Collection("campaigns"),
	}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	now := time.Now()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, campaign)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		campaign.ID = oid.Hex()
	}

	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var campaign model.Campaign
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &campaign, nil
}

func (r *campaignRepository) GetByAccessCode(ctx context.Context, code string) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.collection.FindOne(ctx, bson.M{"accessCode": code}).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &campaign, nil
}

func (r *campaignRepository) GetByConsultant(ctx context.Context, consultantID string) ([]*model.Campaign, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"consultantId": consultantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []*model.Campaign
	if err = cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *model.Campaign) error {
	oid, err := primitive.ObjectIDFromHex(campaign.ID)
	if err != nil {
		return err
	}

	campaign.UpdatedAt = time.Now()
	stored := *campaign
	stored.ID = ""

	update := bson.M{"$set": stored}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
