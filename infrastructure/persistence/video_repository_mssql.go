package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	mssql "github.com/microsoft/go-mssqldb"
)

// SQL Server error numbers for primary key and unique index violations.
const (
	mssqlPrimaryKeyViolation  = 2627
	mssqlUniqueIndexViolation = 2601
)

// VideoRepositoryMSSQL is a SQL Server implementation of IVideo using database/sql.
type VideoRepositoryMSSQL struct{ db *sql.DB }

func NewVideoRepositoryMSSQL(db *sql.DB) repository.IVideo { return &VideoRepositoryMSSQL{db} }

func (r *VideoRepositoryMSSQL) GetById(ctx context.Context, id int64) (model.Video, error) {
	var v model.Video
	row := r.db.QueryRowContext(ctx, `SELECT id, name, views, likes FROM dbo.[videos] WHERE id = @p1`, id)
	if err := row.Scan(&v.ID, &v.Name, &v.Views, &v.Likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Video{}, repository.ErrVideoNotFound
		}
		logger.GetLogger().WithField("error", err).Error("mssql: query video by id failed")
		return model.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return v, nil
}

func (r *VideoRepositoryMSSQL) Create(ctx context.Context, video model.Video) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO dbo.[videos] (id, name, views, likes) VALUES (@p1, @p2, @p3, @p4)`,
		video.ID, video.Name, video.Views, video.Likes)
	if err != nil {
		var sqlErr mssql.Error
		if errors.As(err, &sqlErr) && (sqlErr.Number == mssqlPrimaryKeyViolation || sqlErr.Number == mssqlUniqueIndexViolation) {
			return repository.ErrVideoExists
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Error("mssql: create video failed")
		return fmt.Errorf("create video %d: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepositoryMSSQL) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	if changes.Empty() {
		return r.GetById(ctx, id)
	}

	set, args := videoSetClause(changes, func(n int) string { return fmt.Sprintf("@p%d", n) })
	query := fmt.Sprintf(`UPDATE dbo.[videos] SET %s OUTPUT INSERTED.id, INSERTED.name, INSERTED.views, INSERTED.likes WHERE id = @p%d`,
		set, len(args)+1)

	video, err := scanVideo(r.db.QueryRowContext(ctx, query, append(args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: update video failed")
		return model.Video{}, fmt.Errorf("update video %d: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepositoryMSSQL) Delete(ctx context.Context, id int64) (model.Video, error) {
	video, err := scanVideo(r.db.QueryRowContext(ctx,
		`DELETE FROM dbo.[videos] OUTPUT DELETED.id, DELETED.name, DELETED.views, DELETED.likes WHERE id = @p1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, repository.ErrVideoNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: delete video failed")
		return model.Video{}, fmt.Errorf("delete video %d: %w", id, err)
	}
	return video, nil
}
