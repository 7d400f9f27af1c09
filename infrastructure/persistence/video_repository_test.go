package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"video-api/domain/model"
	"video-api/domain/repository"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), cfg)
	require.NoError(t, err)
	return gormDB, mock
}

func TestVideoRepository_GetById(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "views", "likes"}).
			AddRow(1, "a", 10, 2))

	video, err := repo.GetById(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.Video{ID: 1, Name: "a", Views: 10, Likes: 2}, video)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_GetById_NotFound(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "views", "likes"}))

	_, err := repo.GetById(context.Background(), 1)
	require.ErrorIs(t, err, repository.ErrVideoNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_Create(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `videos`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), model.Video{ID: 1, Name: "a"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_Create_Duplicate(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `videos`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), model.Video{ID: 1, Name: "a"})
	require.ErrorIs(t, err, repository.ErrVideoExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_Create_OtherFailureIsNotConflict(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `videos`").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), model.Video{ID: 1, Name: "a"})
	require.Error(t, err)
	require.NotErrorIs(t, err, repository.ErrVideoExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

var videoColumns = []string{"id", "name", "views", "likes"}

func TestVideoRepository_Update(t *testing.T) {
	likes := int64(5)

	t.Run("writes_only_present_columns", func(t *testing.T) {
		gormDB, mock := newGormMock(t)
		repo := NewVideoRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `videos` SET `likes`=\\? WHERE id = \\?").
			WithArgs(int64(5), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 99, 5))
		mock.ExpectCommit()

		video, err := repo.Update(context.Background(), 1, model.VideoChanges{Likes: &likes})
		require.NoError(t, err)
		require.Equal(t, model.Video{ID: 1, Name: "a", Views: 99, Likes: 5}, video)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		gormDB, mock := newGormMock(t)
		repo := NewVideoRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `videos` SET `likes`=\\? WHERE id = \\?").
			WithArgs(int64(5), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 9, model.VideoChanges{Likes: &likes})
		require.ErrorIs(t, err, repository.ErrVideoNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty_changes_read", func(t *testing.T) {
		gormDB, mock := newGormMock(t)
		repo := NewVideoRepository(gormDB)

		mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 1, 1))

		video, err := repo.Update(context.Background(), 1, model.VideoChanges{})
		require.NoError(t, err)
		require.Equal(t, model.Video{ID: 1, Name: "a", Views: 1, Likes: 1}, video)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVideoRepository_Delete(t *testing.T) {
	gormDB, mock := newGormMock(t)
	repo := NewVideoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 2, 3))
	mock.ExpectExec("DELETE FROM `videos` WHERE id = \\?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(videoColumns))
	mock.ExpectRollback()

	video, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.Video{ID: 1, Name: "a", Views: 2, Likes: 3}, video)

	_, err = repo.Delete(context.Background(), 1)
	require.ErrorIs(t, err, repository.ErrVideoNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// newGormReplicaMock registers a second sqlmock connection as a dbresolver replica.
func newGormReplicaMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, sqlmock.Sqlmock) {
	t.Helper()
	gormDB, primary := newGormMock(t)

	replicaDB, replica, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { replicaDB.Close() })

	require.NoError(t, gormDB.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{mysql.New(mysql.Config{Conn: replicaDB, SkipInitializeWithVersion: true})},
	})))
	return gormDB, primary, replica
}

func TestVideoRepository_ReplicaLag(t *testing.T) {
	t.Run("read_falls_back_to_primary", func(t *testing.T) {
		gormDB, primary, replica := newGormReplicaMock(t)
		repo := NewVideoRepository(gormDB)

		replica.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns))
		primary.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 0, 0))

		video, err := repo.GetById(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, model.Video{ID: 1, Name: "a"}, video)
		require.NoError(t, primary.ExpectationsWereMet())
		require.NoError(t, replica.ExpectationsWereMet())
	})

	t.Run("replica_hit", func(t *testing.T) {
		gormDB, primary, replica := newGormReplicaMock(t)
		repo := NewVideoRepository(gormDB)

		replica.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 0, 0))

		_, err := repo.GetById(context.Background(), 1)
		require.NoError(t, err)
		require.NoError(t, primary.ExpectationsWereMet())
		require.NoError(t, replica.ExpectationsWereMet())
	})

	t.Run("writes_and_their_reads_use_primary", func(t *testing.T) {
		gormDB, primary, replica := newGormReplicaMock(t)
		repo := NewVideoRepository(gormDB)
		likes := int64(5)

		primary.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 0, 0))
		primary.ExpectBegin()
		primary.ExpectExec("UPDATE `videos` SET `likes`=\\? WHERE id = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))
		primary.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 0, 5))
		primary.ExpectCommit()
		primary.ExpectBegin()
		primary.ExpectQuery("SELECT \\* FROM `videos` WHERE id = \\? .*FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(videoColumns).AddRow(1, "a", 0, 5))
		primary.ExpectExec("DELETE FROM `videos` WHERE id = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))
		primary.ExpectCommit()

		_, err := repo.Update(context.Background(), 1, model.VideoChanges{})
		require.NoError(t, err)
		_, err = repo.Update(context.Background(), 1, model.VideoChanges{Likes: &likes})
		require.NoError(t, err)
		_, err = repo.Delete(context.Background(), 1)
		require.NoError(t, err)

		require.NoError(t, primary.ExpectationsWereMet())
		require.NoError(t, replica.ExpectationsWereMet())
	})
}
