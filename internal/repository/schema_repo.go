package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"altervalue/internal/model"
)

type SchemaRepository interface {
	// GetBySurveyType returns the stored schema for a survey type, or
	// (nil, nil) when none exists so the caller can fall back to the
	// bundled default.
	GetBySurveyType(ctx context.Context, surveyType string) (*model.SurveySchema, error)
	Upsert(ctx context.Context, schema *model.SurveySchema) error
}

type schemaRepository struct {
	collection *mongo.Collection
}

func NewSchemaRepository(client *mongo.Client) SchemaRepository {
	db := client.Database("altervalue")
	return &schemaRepository{
		collection: db.Collection("schemas"),
	}
}

func (r *schemaRepository) GetBySurveyType(ctx context.Context, surveyType string) (*model.SurveySchema, error) {
	var schema model.SurveySchema
	opts := options.FindOne().SetSort(bson.M{"version": -1})
	err := r.collection.FindOne(ctx, bson.M{"surveyType": surveyType}, opts).Decode(&schema)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &schema, nil
}

func (r *schemaRepository) Upsert(ctx context.Context, schema *model.SurveySchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	filter := bson.M{"surveyType": schema.SurveyType, "version": schema.Version}
	stored := *schema
	stored.ID = ""

	_, err := r.collection.ReplaceOne(ctx, filter, stored, options.Replace().SetUpsert(true))
	return err
}
