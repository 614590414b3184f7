package persistence

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/sfa/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, Driver: "postgres"}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_DBSystem(t *testing.T) {
	assert.Equal(t, "postgresql", (&Database{Driver: "postgres"}).DBSystem())
	assert.Equal(t, "sqlite", (&Database{Driver: "sqlite"}).DBSystem())
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:          "sqlite",
		SQLitePath:      ":memory:",
		ConnMaxLifetime: 5,
		LogLevel:        "silent",
	}, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.AutoMigrate())
	assert.True(t, db.DB.Migrator().HasTable("sfa_payments"))
	assert.True(t, db.DB.Migrator().HasTable("sfa_payment_histories"))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
