package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
	Simulation SimulationConfig `yaml:"simulation"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	EventLog   EventLogConfig   `yaml:"event_log"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Push       PushConfig       `yaml:"push"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, sqlite or mysql
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// WarehouseConfig describes the initial world.
type WarehouseConfig struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Grid      GridConfig        `yaml:"grid"`
	Equipment []EquipmentConfig `yaml:"equipment"`
	// Fleet generates units when Equipment is empty.
	Fleet    FleetConfig     `yaml:"fleet"`
	Stations []StationConfig `yaml:"stations"`
	// StationCount generates stations when Stations is empty.
	StationCount int          `yaml:"station_count"`
	Items        []ItemConfig `yaml:"items"`
	// ItemCount generates unstored items when Items is empty.
	ItemCount int `yaml:"item_count"`
}

// GridConfig is the size of the storage grid.
type GridConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// EquipmentConfig is one explicitly configured unit.
type EquipmentConfig struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Position string  `yaml:"position"` // "(x,y,z)"
	Speed    float64 `yaml:"speed"`
	Battery  int     `yaml:"battery"`
	Capacity float64 `yaml:"capacity"`
}

// FleetConfig is the number of units generated per kind.
type FleetConfig struct {
	AGVs     int `yaml:"agvs"`
	Shuttles int `yaml:"shuttles"`
	Cranes   int `yaml:"cranes"`
}

// StationConfig is one charging station.
type StationConfig struct {
	ID       string  `yaml:"id"`
	Position string  `yaml:"position"`
	PowerKW  float64 `yaml:"power_kw"`
}

// ItemConfig is one inventory item. An empty StoreAt leaves it unstored.
type ItemConfig struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
	StoreAt     string  `yaml:"store_at"`
}

// SimulationConfig holds the simulated durations.
type SimulationConfig struct {
	TransitDelayMS int           `yaml:"transit_delay_ms"`
	TransitDelay   time.Duration `yaml:"-"`
	ChargeStepMS   int           `yaml:"charge_step_ms"`
	ChargeStep     time.Duration `yaml:"-"`
	StationRetryMS int           `yaml:"station_retry_ms"`
	StationRetry   time.Duration `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the task worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// EventLogConfig controls the event log sinks.
type EventLogConfig struct {
	Level                string        `yaml:"level"`
	Persist              bool          `yaml:"persist"`
	FlushSize            int           `yaml:"flush_size"`
	FlushIntervalSeconds int           `yaml:"flush_interval_seconds"`
	FlushInterval        time.Duration `yaml:"-"`
}

// MonitorConfig controls the periodic utilization sampler.
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether push notifications are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "file:warehouse.db?_busy_timeout=5000"
	}

	if cfg.Warehouse.ID == "" {
		cfg.Warehouse.ID = "WH001"
	}
	if cfg.Warehouse.Name == "" {
		cfg.Warehouse.Name = "Main Warehouse"
	}
	if cfg.Warehouse.Grid.X <= 0 || cfg.Warehouse.Grid.Y <= 0 || cfg.Warehouse.Grid.Z <= 0 {
		log.Printf("warehouse.grid is not set or invalid; defaulting to 10x10x5")
		cfg.Warehouse.Grid = GridConfig{X: 10, Y: 10, Z: 5}
	}

	if cfg.Simulation.TransitDelayMS < 0 {
		cfg.Simulation.TransitDelayMS = 0
	}
	cfg.Simulation.TransitDelay = time.Duration(cfg.Simulation.TransitDelayMS) * time.Millisecond
	if cfg.Simulation.ChargeStepMS <= 0 {
		cfg.Simulation.ChargeStepMS = 1000
	}
	cfg.Simulation.ChargeStep = time.Duration(cfg.Simulation.ChargeStepMS) * time.Millisecond
	if cfg.Simulation.StationRetryMS <= 0 {
		cfg.Simulation.StationRetryMS = 1000
	}
	cfg.Simulation.StationRetry = time.Duration(cfg.Simulation.StationRetryMS) * time.Millisecond

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 4")
		cfg.WorkerPool.Size = 4
	}

	if cfg.EventLog.Level == "" {
		cfg.EventLog.Level = "INFO"
	}
	if cfg.EventLog.FlushSize <= 0 {
		cfg.EventLog.FlushSize = 50
	}
	if cfg.EventLog.FlushIntervalSeconds <= 0 {
		cfg.EventLog.FlushIntervalSeconds = 10
	}
	cfg.EventLog.FlushInterval = time.Duration(cfg.EventLog.FlushIntervalSeconds) * time.Second

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 30
	}
	cfg.Monitor.Interval = time.Duration(cfg.Monitor.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
}
