package postgres

import (
	"testing"

	"github.com/fastygo/taskwise/internal/config"
)

func TestDSN(t *testing.T) {
	explicit := config.DatabaseConfig{URL: "postgres://a:b@c/d", Host: "ignored"}
	if got := dsn(explicit); got != "postgres://a:b@c/d" {
		t.Fatalf("dsn = %q", got)
	}
	discrete := config.DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5433", Name: "n", SSLMode: "require"}
	if got := dsn(discrete); got != "postgres://u:p@h:5433/n?sslmode=require" {
		t.Fatalf("dsn = %q", got)
	}
}

func TestRunMigrations_SkipsForBolt(t *testing.T) {
	cfg := &config.Config{
		Storage:    config.StorageConfig{Driver: config.StorageBolt},
		Migrations: config.MigrationsConfig{Enabled: true, Path: "./does-not-exist"},
	}
	if err := RunMigrations(cfg, nil); err != nil {
		t.Fatalf("bolt driver should skip migrations: %v", err)
	}
}

func TestSourceURL(t *testing.T) {
	if got := sourceURL("./assets/migrations"); got != "file://./assets/migrations" {
		t.Fatalf("source = %q", got)
	}
}
