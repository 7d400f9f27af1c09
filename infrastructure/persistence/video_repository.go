package persistence

import (
	"context"
	"errors"
	"fmt"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// VideoRepository is the gorm implementation of IVideo (MySQL). When a dbresolver
// replica is registered, plain reads go to the replica and fall back to the
// primary on a miss, so a record created moments ago is never reported missing.
// Writes and the reads that belong to them run on the primary.
type VideoRepository struct {
	db         *gorm.DB
	hasReplica bool
}

func NewVideoRepository(db *gorm.DB) repository.IVideo {
	_, hasReplica := db.Config.Plugins[(&dbresolver.DBResolver{}).Name()]
	return &VideoRepository{db: db, hasReplica: hasReplica}
}

func (r *VideoRepository) GetById(ctx context.Context, id int64) (model.Video, error) {
	video, err := r.take(r.db.WithContext(ctx), id)
	if errors.Is(err, repository.ErrVideoNotFound) && r.hasReplica {
		video, err = r.take(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
	}
	return video, err
}

func (r *VideoRepository) take(db *gorm.DB, id int64) (model.Video, error) {
	var video model.Video
	err := db.Where("id = ?", id).Take(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": id,
		}).Error("gorm: query video by id failed")
		return model.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepository) Create(ctx context.Context, video model.Video) error {
	err := r.db.WithContext(ctx).Create(&video).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrVideoExists
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Error("gorm: create video failed")
		return fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	if changes.Empty() {
		return r.take(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
	}

	columns := make(map[string]interface{})
	for _, col := range changes.Columns() {
		columns[col.Name] = col.Value
	}

	var video model.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Video{}).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrVideoNotFound
		}
		return tx.Where("id = ?", id).Take(&video).Error
	})
	if errors.Is(err, repository.ErrVideoNotFound) {
		return model.Video{}, err
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": id,
		}).Error("gorm: update video failed")
		return model.Video{}, fmt.Errorf("update video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id int64) (model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&video).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrVideoNotFound
		}
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Video{}).Error
	})
	if errors.Is(err, repository.ErrVideoNotFound) {
		return model.Video{}, err
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": id,
		}).Error("gorm: delete video failed")
		return model.Video{}, fmt.Errorf("delete video %d: %w", id, err)
	}
	return video, nil
}
