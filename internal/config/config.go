package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
	Database DatabaseConfig `json:"database"`
	Pinata   PinataConfig   `json:"pinata"`
	Near     NearConfig     `json:"near"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type SecurityConfig struct {
	JWTSecret         string        `json:"jwt_secret"`
	SessionTimeout    time.Duration `json:"session_timeout"`
	PasswordMinLength int           `json:"password_min_length"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type DatabaseConfig struct {
	// Driver selects the store backend: "postgres" or "memory". The
	// memory backend exists for local development without a database.
	Driver          string `json:"driver"`
	Host            string `json:"host"`
	Port            string `json:"port"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	SSLMode         string `json:"ssl_mode"`
	MaxIdleConns    int    `json:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

type PinataConfig struct {
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	JWT        string `json:"jwt"`
	BaseURL    string `json:"base_url"`
	GatewayURL string `json:"gateway_url"`
}

type NearConfig struct {
	NetworkID string `json:"network_id"`
	NodeURL   string `json:"node_url"`
	// OwnerAccountID is the contract-owner wallet. It is always treated
	// as admin regardless of any stored role assignment.
	OwnerAccountID string `json:"owner_account_id"`
	ContractID     string `json:"contract_id"`
}

// LoadConfig reads a JSON config file on top of the compiled-in defaults,
// then applies environment overrides.
func LoadConfig(filePath string) (*Configuration, error) {
	cfg := Defaults()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Defaults returns the built-in configuration used when no config file
// is supplied.
func Defaults() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Port:         "5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:         "achievo-dev-secret",
			SessionTimeout:    24 * time.Hour,
			PasswordMinLength: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			Username:        "postgres",
			Password:        "password",
			Name:            "achievo",
			SSLMode:         "disable",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 300,
		},
		Pinata: PinataConfig{
			BaseURL:    "https://api.pinata.cloud",
			GatewayURL: "https://gateway.pinata.cloud/ipfs",
		},
		Near: NearConfig{
			NetworkID:      "testnet",
			NodeURL:        "https://rpc.testnet.near.org",
			OwnerAccountID: "bernieio.testnet",
			ContractID:     "bernieio.testnet",
		},
	}
}

// ApplyEnv overrides config values from the environment. Secrets are
// expected to arrive this way in deployment.
func (c *Configuration) ApplyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.Server.Port, "PORT")
	setIfPresent(&c.Security.JWTSecret, "JWT_SECRET")
	setIfPresent(&c.Database.Driver, "DATABASE_DRIVER")
	setIfPresent(&c.Database.Host, "DATABASE_HOST")
	setIfPresent(&c.Database.Port, "DATABASE_PORT")
	setIfPresent(&c.Database.Username, "DATABASE_USER")
	setIfPresent(&c.Database.Password, "DATABASE_PASSWORD")
	setIfPresent(&c.Database.Name, "DATABASE_NAME")
	setIfPresent(&c.Pinata.APIKey, "PINATA_API_KEY")
	setIfPresent(&c.Pinata.APISecret, "PINATA_API_SECRET_KEY")
	setIfPresent(&c.Pinata.JWT, "PINATA_JWT")
	setIfPresent(&c.Near.OwnerAccountID, "NEAR_OWNER_ACCOUNT_ID")
	setIfPresent(&c.Near.ContractID, "NEAR_CONTRACT_ID")
}

// LogConfig reports the effective configuration with secrets redacted.
func LogConfig(c *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", c.Server.Port),
		zap.Duration("read_timeout", c.Server.ReadTimeout),
		zap.Duration("write_timeout", c.Server.WriteTimeout),
		zap.String("database_driver", c.Database.Driver),
		zap.String("database_host", c.Database.Host),
		zap.String("database_name", c.Database.Name),
		zap.String("pinata_base_url", c.Pinata.BaseURL),
		zap.Bool("pinata_configured", c.Pinata.JWT != "" || c.Pinata.APIKey != ""),
		zap.String("near_network", c.Near.NetworkID),
		zap.String("near_owner", c.Near.OwnerAccountID),
	)
}
