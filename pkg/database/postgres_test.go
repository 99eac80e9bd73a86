package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/trainer-booking-api/pkg/config"
)

func TestDSNPrefersURL(t *testing.T) {
	cfg := config.DatabaseConfig{URL: "postgres://user:pw@db.supabase.co:5432/postgres", Host: "ignored"}
	assert.Equal(t, cfg.URL, DSN(cfg))
}

func TestDSNFromParts(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", Name: "trainer_booking", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=trainer_booking sslmode=disable", DSN(cfg))
}
