package database

import (
	"testing"

	"github.com/damoang/notion-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{"mysql", config.DatabaseConfig{Driver: config.DriverMySQL, Host: "h", Port: 3306, User: "u", Password: "p", Name: "n"}, "mysql", false},
		{"postgres", config.DatabaseConfig{Driver: config.DriverPostgres, Host: "h", Port: 5432}, "postgres", false},
		{"sqlite", config.DatabaseConfig{Driver: config.DriverSQLite}, "sqlite", false},
		{"bad mysql dsn", config.DatabaseConfig{Driver: config.DriverMySQL, DSN: "not a dsn"}, "", true},
		{"unknown", config.DatabaseConfig{Driver: "oracle"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Name:         ":memory:",
		MaxIdleConns: 2,
		MaxOpenConns: 10,
	}, gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, sqlDB.Ping())
}
