package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HoursConfig is one weekday's operating window. Close may be "24:00"
// to express a midnight closing.
type HoursConfig struct {
	Open  string `yaml:"open"`  // "11:00"
	Close string `yaml:"close"` // "23:00" or "24:00"
}

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`

	Backup struct {
		Enabled  bool   `yaml:"enabled"`
		Dir      string `yaml:"dir"`
		KeepDays int    `yaml:"keep_days"`
	} `yaml:"backup"`

	Booking struct {
		WindowStart string `yaml:"window_start"` // YYYY-MM-DD, inclusive
		WindowEnd   string `yaml:"window_end"`   // YYYY-MM-DD, inclusive
		MaxParty    int    `yaml:"max_party"`
	} `yaml:"booking"`

	// Operating hours keyed by lowercase English weekday name. A weekday
	// with no entry means the restaurant is closed that day.
	Hours map[string]HoursConfig `yaml:"hours"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Admin struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"admin"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Booking.WindowStart == "" {
		c.Booking.WindowStart = "2025-10-24"
	}
	if c.Booking.WindowEnd == "" {
		c.Booking.WindowEnd = "2025-12-31"
	}
	if c.Booking.MaxParty <= 0 {
		c.Booking.MaxParty = 4
	}
	if len(c.Hours) == 0 {
		c.Hours = map[string]HoursConfig{
			"monday":    {Open: "11:00", Close: "23:00"},
			"tuesday":   {Open: "11:00", Close: "23:00"},
			"wednesday": {Open: "11:00", Close: "23:00"},
			"thursday":  {Open: "11:00", Close: "23:00"},
			"friday":    {Open: "11:00", Close: "24:00"},
			"saturday":  {Open: "11:00", Close: "24:00"},
			"sunday":    {Open: "11:00", Close: "23:00"},
		}
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "backups"
	}
	if c.Backup.KeepDays <= 0 {
		c.Backup.KeepDays = 30
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = 3000
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	start, err := time.Parse("2006-01-02", c.Booking.WindowStart)
	if err != nil {
		return fmt.Errorf("booking.window_start: invalid date '%s', expected YYYY-MM-DD", c.Booking.WindowStart)
	}
	end, err := time.Parse("2006-01-02", c.Booking.WindowEnd)
	if err != nil {
		return fmt.Errorf("booking.window_end: invalid date '%s', expected YYYY-MM-DD", c.Booking.WindowEnd)
	}
	if end.Before(start) {
		return fmt.Errorf("booking window: window_end must not be before window_start")
	}

	for day, h := range c.Hours {
		if _, ok := weekdayNames[strings.ToLower(day)]; !ok {
			return fmt.Errorf("hours: unknown weekday '%s'", day)
		}
		open, err := ParseClock(h.Open)
		if err != nil {
			return fmt.Errorf("hours.%s.open: %w", day, err)
		}
		close, err := ParseClock(h.Close)
		if err != nil {
			return fmt.Errorf("hours.%s.close: %w", day, err)
		}
		if close <= open {
			return fmt.Errorf("hours.%s: close must be after open", day)
		}
	}

	return nil
}

// BookingWindow returns the inclusive [start, end] date range within
// which reservations are accepted.
func (c *Config) BookingWindow() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", c.Booking.WindowStart)
	end, _ = time.Parse("2006-01-02", c.Booking.WindowEnd)
	return start, end
}

// HoursFor returns the operating window for a weekday. ok is false on
// days with no entry (closed day).
func (c *Config) HoursFor(day time.Weekday) (h HoursConfig, ok bool) {
	for name, hours := range c.Hours {
		if weekdayNames[strings.ToLower(name)] == day {
			return hours, true
		}
	}
	return HoursConfig{}, false
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is
// accepted as 1440 so a close bound can express midnight.
func ParseClock(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time '%s', expected HH:MM", s)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid minutes in '%s'", s)
	}
	if hh < 0 || hh > 24 || (hh == 24 && mm != 0) {
		return 0, fmt.Errorf("invalid hours in '%s'", s)
	}
	return hh*60 + mm, nil
}
