package config

import "testing"

// TestLoadDefaults tests that Load falls back to sane development defaults
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected max conns 10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 2 {
		t.Errorf("Expected min conns 2, got %d", cfg.Database.MinConns)
	}
	if cfg.EventStore.Enabled {
		t.Error("Expected event store disabled by default")
	}
}

// TestLoadPoolSizingFromEnv tests that pool bounds come from the environment
func TestLoadPoolSizingFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Database.MaxConns != 25 {
		t.Errorf("Expected max conns 25, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 5 {
		t.Errorf("Expected min conns 5, got %d", cfg.Database.MinConns)
	}
}

// TestDSN tests connection string assembly
func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "records",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=app password=secret dbname=records sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
