package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "floorplan", DBName: "floorplan", MaxConns: 5},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Temporal: TemporalConfig{TaskQueue: "floorplan-import"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Export:   ExportConfig{HumanRole: "human", GPTRole: "gpt"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("floorplan-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "floorplan-test" {
		t.Errorf("expected service name floorplan-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.Export.HumanRole != "human" || cfg.Export.GPTRole != "gpt" {
		t.Errorf("unexpected export roles: %+v", cfg.Export)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FLOORPLAN_SERVER_PORT", "9090")
	t.Setenv("FLOORPLAN_DATABASE_HOST", "memory")

	cfg, err := Load("floorplan-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Database.InMemory() {
		t.Error("expected in-memory database")
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.NATS.URL = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "nats.url", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidate_MemorySkipsDatabaseChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{Host: MemoryHost}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "fp", SSLMode: "disable"}
	want := "postgres://u:p@db:5432/fp?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
