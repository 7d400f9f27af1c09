package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"video-api/infrastructure/configuration"
)

var videoSchemaDDL = map[string]string{
	configuration.VendorSQLite: `CREATE TABLE IF NOT EXISTS videos (
        id INTEGER PRIMARY KEY,
        name VARCHAR(100) NOT NULL,
        views INTEGER NOT NULL,
        likes INTEGER NOT NULL
    )`,
	configuration.VendorPostgres: `CREATE TABLE IF NOT EXISTS public.videos (
        id BIGINT PRIMARY KEY,
        name VARCHAR(100) NOT NULL,
        views BIGINT NOT NULL,
        likes BIGINT NOT NULL
    )`,
	configuration.VendorMSSQL: `IF OBJECT_ID(N'dbo.videos', N'U') IS NULL
    CREATE TABLE dbo.videos (
        id BIGINT NOT NULL PRIMARY KEY,
        name NVARCHAR(100) NOT NULL,
        views BIGINT NOT NULL,
        likes BIGINT NOT NULL
    )`,
}

// EnsureVideoSchema creates the videos table for the database/sql vendors if it is missing.
// Safe to call at startup.
func EnsureVideoSchema(db *sql.DB, vendor string) error {
	ddl, ok := videoSchemaDDL[vendor]
	if !ok {
		return fmt.Errorf("no videos schema for vendor %q", vendor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	return nil
}
