package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// EngineConfig — параметры расчёта мощностей.
type EngineConfig struct {
	CalendarDefaultWeeks    int
	WeekStart               int // ISO-день, 1 = понедельник
	ClampNegativeShiftHours bool
	DebugInactiveShifts     bool
	MemoSize                int
	SnapshotRetries         int
	MaxCalendarDays         int
	PlacementHorizonDays    int
	LineDefaultTimeZone     string
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CalendarDefaultWeeks:    8,
		WeekStart:               1,
		ClampNegativeShiftHours: true,
		MemoSize:                256,
		SnapshotRetries:         3,
		MaxCalendarDays:         3660,
		PlacementHorizonDays:    366,
		LineDefaultTimeZone:     "America/Chicago",
	}
}

func LoadEngineConfig() (*EngineConfig, error) {
	def := DefaultEngineConfig()
	cfg := &EngineConfig{
		CalendarDefaultWeeks:    getEnvInt("CALENDAR_DEFAULT_WEEKS", def.CalendarDefaultWeeks),
		WeekStart:               getEnvInt("WEEK_START", def.WeekStart),
		ClampNegativeShiftHours: getEnvBool("CLAMP_NEGATIVE_SHIFT_HOURS", def.ClampNegativeShiftHours),
		DebugInactiveShifts:     getEnvBool("CAPACITY_DEBUG_INACTIVE_SHIFTS", def.DebugInactiveShifts),
		MemoSize:                getEnvInt("CAPACITY_MEMO_SIZE", def.MemoSize),
		SnapshotRetries:         getEnvInt("CAPACITY_SNAPSHOT_RETRIES", def.SnapshotRetries),
		MaxCalendarDays:         getEnvInt("CAPACITY_MAX_CALENDAR_DAYS", def.MaxCalendarDays),
		PlacementHorizonDays:    getEnvInt("PLACEMENT_HORIZON_DAYS", def.PlacementHorizonDays),
		LineDefaultTimeZone:     getEnv("LINE_DEFAULT_TIMEZONE", def.LineDefaultTimeZone),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if c.CalendarDefaultWeeks <= 0 {
		return fmt.Errorf("invalid engine config: CALENDAR_DEFAULT_WEEKS must be positive")
	}
	if c.WeekStart < 1 || c.WeekStart > 7 {
		return fmt.Errorf("invalid engine config: WEEK_START must be 1..7, got %d", c.WeekStart)
	}
	if c.SnapshotRetries < 1 {
		return fmt.Errorf("invalid engine config: CAPACITY_SNAPSHOT_RETRIES must be >= 1")
	}
	if c.MaxCalendarDays <= 0 || c.PlacementHorizonDays <= 0 {
		return fmt.Errorf("invalid engine config: day limits must be positive")
	}
	if c.PlacementHorizonDays > c.MaxCalendarDays {
		return fmt.Errorf("invalid engine config: PLACEMENT_HORIZON_DAYS (%d) exceeds CAPACITY_MAX_CALENDAR_DAYS (%d)",
			c.PlacementHorizonDays, c.MaxCalendarDays)
	}
	if c.DefaultDays() > c.MaxCalendarDays {
		return fmt.Errorf("invalid engine config: CALENDAR_DEFAULT_WEEKS x 7 (%d) exceeds CAPACITY_MAX_CALENDAR_DAYS (%d)",
			c.DefaultDays(), c.MaxCalendarDays)
	}
	if _, err := time.LoadLocation(c.LineDefaultTimeZone); err != nil {
		return fmt.Errorf("invalid engine config: LINE_DEFAULT_TIMEZONE: %w", err)
	}
	return nil
}

// DefaultDays — длина календаря, когда n_days не задан.
func (c *EngineConfig) DefaultDays() int { return c.CalendarDefaultWeeks * 7 }

type ServerConfig struct {
	HTTPAddr      string
	GRPCAddr      string
	ReconcileCron string
	CORSOrigins   string
}

func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		GRPCAddr:      getEnv("GRPC_ADDR", ":50051"),
		ReconcileCron: getEnv("RECONCILE_CRON", "@every 5m"),
		CORSOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
	}
}
