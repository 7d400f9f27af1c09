package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// VideoRepositoryPostgres is a PostgreSQL implementation of IVideo using database/sql.
type VideoRepositoryPostgres struct {
	db *sql.DB
}

func NewVideoRepositoryPostgres(db *sql.DB) repository.IVideo {
	return &VideoRepositoryPostgres{db: db}
}

func (r *VideoRepositoryPostgres) GetById(ctx context.Context, id int64) (model.Video, error) {
	var video model.Video

	stmt, err := r.db.PrepareContext(ctx, `SELECT v.id, v.name, v.views, v.likes 
	FROM public.videos AS v 
	WHERE v.id = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: prepare query video failed")
		return video, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, id).Scan(&video.ID, &video.Name, &video.Views, &video.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: query video by id failed")
		return model.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositoryPostgres) Create(ctx context.Context, video model.Video) error {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO public.videos (id, name, views, likes) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: prepare insert video failed")
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, video.ID, video.Name, video.Views, video.Likes); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repository.ErrVideoExists
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Error("postgres: create video failed")
		return fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepositoryPostgres) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	if changes.Empty() {
		return r.GetById(ctx, id)
	}

	set, args := videoSetClause(changes, func(n int) string { return fmt.Sprintf("$%d", n) })
	query := fmt.Sprintf(`UPDATE public.videos SET %s WHERE id = $%d RETURNING id, name, views, likes`, set, len(args)+1)
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: prepare update video failed")
		return model.Video{}, err
	}
	defer stmt.Close()

	video, err := scanVideo(stmt.QueryRowContext(ctx, append(args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: update video failed")
		return model.Video{}, fmt.Errorf("update video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositoryPostgres) Delete(ctx context.Context, id int64) (model.Video, error) {
	stmt, err := r.db.PrepareContext(ctx, `DELETE FROM public.videos WHERE id = $1 RETURNING id, name, views, likes`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: prepare delete video failed")
		return model.Video{}, err
	}
	defer stmt.Close()

	video, err := scanVideo(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres: delete video failed")
		return model.Video{}, fmt.Errorf("delete video %d: %w", id, err)
	}
	return video, nil
}
