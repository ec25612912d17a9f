package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-hub-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "campus", Password: "pw", Name: "board", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=campus password=pw dbname=board sslmode=disable", dsn)
}
