package config

import "testing"

func TestLoadEngineConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"CALENDAR_DEFAULT_WEEKS", "WEEK_START", "CLAMP_NEGATIVE_SHIFT_HOURS",
		"CAPACITY_DEBUG_INACTIVE_SHIFTS", "CAPACITY_MEMO_SIZE", "CAPACITY_SNAPSHOT_RETRIES",
		"CAPACITY_MAX_CALENDAR_DAYS", "PLACEMENT_HORIZON_DAYS", "LINE_DEFAULT_TIMEZONE",
	} {
		t.Setenv(k, "")
	}

	cfg, err := LoadEngineConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultDays() != 56 {
		t.Fatalf("default days = %d, want 56", cfg.DefaultDays())
	}
	if cfg.WeekStart != 1 || !cfg.ClampNegativeShiftHours || cfg.DebugInactiveShifts {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEngineConfig_Overrides(t *testing.T) {
	t.Setenv("CALENDAR_DEFAULT_WEEKS", "4")
	t.Setenv("CLAMP_NEGATIVE_SHIFT_HOURS", "false")
	t.Setenv("CAPACITY_DEBUG_INACTIVE_SHIFTS", "true")
	t.Setenv("CAPACITY_MEMO_SIZE", "not-a-number")

	cfg, err := LoadEngineConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultDays() != 28 || cfg.ClampNegativeShiftHours || !cfg.DebugInactiveShifts {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.MemoSize != 256 {
		t.Fatalf("bad int should fall back to default, got %d", cfg.MemoSize)
	}
}

func TestLoadEngineConfig_HorizonWithinCalendarLimit(t *testing.T) {
	t.Setenv("CALENDAR_DEFAULT_WEEKS", "")
	t.Setenv("CAPACITY_MAX_CALENDAR_DAYS", "100")
	t.Setenv("PLACEMENT_HORIZON_DAYS", "366")
	if _, err := LoadEngineConfig(); err == nil {
		t.Fatalf("expected error when placement horizon exceeds max calendar days")
	}

	t.Setenv("PLACEMENT_HORIZON_DAYS", "100")
	cfg, err := LoadEngineConfig()
	if err != nil {
		t.Fatalf("horizon equal to the limit must be accepted: %v", err)
	}
	if cfg.PlacementHorizonDays != 100 {
		t.Fatalf("unexpected horizon %d", cfg.PlacementHorizonDays)
	}

	t.Setenv("CAPACITY_MAX_CALENDAR_DAYS", "30")
	t.Setenv("PLACEMENT_HORIZON_DAYS", "30")
	if _, err := LoadEngineConfig(); err == nil {
		t.Fatalf("expected error when the default calendar (56 days) exceeds max calendar days")
	}
}

func TestLoadEngineConfig_InvalidWeekStart(t *testing.T) {
	t.Setenv("WEEK_START", "9")
	if _, err := LoadEngineConfig(); err == nil {
		t.Fatalf("expected error for WEEK_START=9")
	}
}

func TestLoadDBConfig_Driver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.SQLitePath != "/tmp/test.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadDBConfig(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
