package persistence

import (
	"context"
	"errors"
	"fmt"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const videoCollection = "videos"

// VideoRepositoryMongo stores videos as documents keyed by _id = video id.
type VideoRepositoryMongo struct {
	collection *mongo.Collection
}

func NewVideoRepositoryMongo(client *mongo.Client, database string) repository.IVideo {
	return &VideoRepositoryMongo{collection: client.Database(database).Collection(videoCollection)}
}

func (r *VideoRepositoryMongo) GetById(ctx context.Context, id int64) (model.Video, error) {
	var video model.Video
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mongo: find video failed")
		return model.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositoryMongo) Create(ctx context.Context, video model.Video) error {
	if _, err := r.collection.InsertOne(ctx, video); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrVideoExists
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Error("mongo: insert video failed")
		return fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepositoryMongo) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	if changes.Empty() {
		return r.GetById(ctx, id)
	}

	var video model.Video
	err := r.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: videoSetDocument(changes)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mongo: update video failed")
		return model.Video{}, fmt.Errorf("update video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositoryMongo) Delete(ctx context.Context, id int64) (model.Video, error) {
	var video model.Video
	err := r.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mongo: delete video failed")
		return model.Video{}, fmt.Errorf("delete video %d: %w", id, err)
	}
	return video, nil
}

// videoSetDocument is the $set body for the present fields only.
func videoSetDocument(changes model.VideoChanges) bson.D {
	doc := bson.D{}
	for _, col := range changes.Columns() {
		doc = append(doc, bson.E{Key: col.Name, Value: col.Value})
	}
	return doc
}
