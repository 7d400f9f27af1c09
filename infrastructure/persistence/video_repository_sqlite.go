package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"github.com/mattn/go-sqlite3"
)

// VideoRepositorySQLite is the embedded default implementation of IVideo.
type VideoRepositorySQLite struct {
	db *sql.DB
}

func NewVideoRepositorySQLite(db *sql.DB) repository.IVideo {
	return &VideoRepositorySQLite{db: db}
}

func (r *VideoRepositorySQLite) GetById(ctx context.Context, id int64) (model.Video, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, views, likes FROM videos WHERE id = ?`, id)

	var v model.Video
	if err := row.Scan(&v.ID, &v.Name, &v.Views, &v.Likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Video{}, repository.ErrVideoNotFound
		}
		logger.GetLogger().WithField("error", err).Error("sqlite: query video by id failed")
		return model.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return v, nil
}

func (r *VideoRepositorySQLite) Create(ctx context.Context, video model.Video) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO videos (id, name, views, likes) VALUES (?, ?, ?, ?)`,
		video.ID, video.Name, video.Views, video.Likes,
	)
	if err != nil {
		if isSQLiteDuplicate(err) {
			return repository.ErrVideoExists
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Error("sqlite: create video failed")
		return fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepositorySQLite) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	if changes.Empty() {
		return r.GetById(ctx, id)
	}

	set, args := videoSetClause(changes, func(int) string { return "?" })
	query := fmt.Sprintf(`UPDATE videos SET %s WHERE id = ? RETURNING id, name, views, likes`, set)

	video, err := scanVideo(r.db.QueryRowContext(ctx, query, append(args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("sqlite: update video failed")
		return model.Video{}, fmt.Errorf("update video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositorySQLite) Delete(ctx context.Context, id int64) (model.Video, error) {
	video, err := scanVideo(r.db.QueryRowContext(ctx, `DELETE FROM videos WHERE id = ? RETURNING id, name, views, likes`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("sqlite: delete video failed")
		return model.Video{}, fmt.Errorf("delete video %d: %w", id, err)
	}
	return video, nil
}

func isSQLiteDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
