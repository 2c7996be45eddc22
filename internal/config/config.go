package config

import (
	"errors"
	"fmt"
	"os"

	"arenabook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Booking    BookingConfig    `yaml:"booking"`
	Spaces     []models.Space   `yaml:"spaces"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// AuthConfig lists the portal accounts. Passwords come from the environment
// through the ${VAR} expansion in Load; plain values in the file are for
// development only.
type AuthConfig struct {
	Users []UserAccount `yaml:"users"`
}

type UserAccount struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	MaxAdvanceDays int `yaml:"max_advance_days"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error in containers.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing so secrets stay out of the file.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	roles := map[string]bool{
		models.RoleAdmin: true, models.RoleManager: true, models.RoleCoordinator: true,
		models.RoleInstructor: true, models.RoleAthlete: true, models.RoleExternal: true,
	}
	emails := make(map[string]bool, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		if u.Email == "" {
			return fmt.Errorf("user %q has no email", u.Name)
		}
		if emails[u.Email] {
			return fmt.Errorf("duplicate user email: %s", u.Email)
		}
		emails[u.Email] = true
		if !roles[u.Role] {
			return fmt.Errorf("user %s has unknown role %q", u.Email, u.Role)
		}
	}

	return ValidateSpaces(c.Spaces)
}

func ValidateSpaces(spaces []models.Space) error {
	names := make(map[string]bool, len(spaces))
	for _, s := range spaces {
		if s.Name == "" {
			return errors.New("space with empty name in config")
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate space name: %s", s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = 365
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
