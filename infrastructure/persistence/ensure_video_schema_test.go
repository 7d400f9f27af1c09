package persistence

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"video-api/infrastructure/configuration"
)

func TestEnsureVideoSchema(t *testing.T) {
	tests := []struct {
		vendor string
		ddl    string
	}{
		{vendor: configuration.VendorPostgres, ddl: "CREATE TABLE IF NOT EXISTS public.videos"},
		{vendor: configuration.VendorMSSQL, ddl: "IF OBJECT_ID\\(N'dbo.videos', N'U'\\) IS NULL CREATE TABLE dbo.videos"},
	}

	for _, tt := range tests {
		t.Run(tt.vendor, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(tt.ddl).WillReturnResult(sqlmock.NewResult(0, 0))

			require.NoError(t, EnsureVideoSchema(db, tt.vendor))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnsureVideoSchema_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, EnsureVideoSchema(db, configuration.VendorMongo))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS public.videos").WillReturnError(fmt.Errorf("permission denied"))
	require.Error(t, EnsureVideoSchema(db, configuration.VendorPostgres))
	require.NoError(t, mock.ExpectationsWereMet())
}
