package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the registrar configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Ethereum     EthereumConfig     `yaml:"ethereum"`
	Wallet       WalletConfig       `yaml:"wallet"`
	OTP          OTPConfig          `yaml:"otp"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Registration RegistrationConfig `yaml:"registration"`
	Auth         AuthConfig         `yaml:"auth"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost" validate:"required"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"registrar"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
}

// RedisConfig contains the redis connection used by the local OTP provider.
// An empty URL selects the in-memory code store.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"3s"`
}

// EthereumConfig contains chain client settings
type EthereumConfig struct {
	RPCURL  string `yaml:"rpc_url" validate:"required"`
	WSUrl   string `yaml:"ws_url"`
	ChainID int64  `yaml:"chain_id" validate:"gt=0"`
	// FactoryContract is the PayrollFactory address that registerCompany is sent to.
	FactoryContract string `yaml:"factory_contract" validate:"required,eth_addr"`
	GasLimit        uint64 `yaml:"gas_limit" default:"3000000"`
	// MaxGasPrice caps the suggested gas price (wei). Empty means uncapped.
	MaxGasPrice         string        `yaml:"max_gas_price"`
	PollingInterval     time.Duration `yaml:"polling_interval" default:"4s"`
	ReceiptPollInterval time.Duration `yaml:"receipt_poll_interval" default:"3s"`
	// ConfirmationLookback is how many blocks before submission the event scan starts at.
	ConfirmationLookback uint64 `yaml:"confirmation_lookback" default:"5"`
}

// WalletConfig selects the Wallet Signing Agent.
//
// keyed: custodial secp256k1 keys stored AES-256-GCM encrypted under a master key.
// external: a Clef-compatible external signer that prompts its operator.
type WalletConfig struct {
	Mode          string   `yaml:"mode" default:"keyed" validate:"oneof=keyed external"`
	ExternalURL   string   `yaml:"external_url" validate:"required_if=Mode external"`
	MasterKeyEnv  string   `yaml:"master_key_env" default:"REGISTRAR_MASTER_KEY"`
	EncryptedKeys []string `yaml:"encrypted_keys"`
}

// OTPConfig configures the Identity Verification Manager and its provider
type OTPConfig struct {
	Provider    string         `yaml:"provider" default:"local" validate:"oneof=okto local"`
	MaxAttempts int            `yaml:"max_attempts" default:"3" validate:"gt=0"`
	Lockout     time.Duration  `yaml:"lockout" default:"60s" validate:"gt=0"`
	Okto        OktoConfig     `yaml:"okto"`
	Local       LocalOTPConfig `yaml:"local"`
}

// OktoConfig contains the hosted email-OTP provider settings
type OktoConfig struct {
	BaseURL   string        `yaml:"base_url" default:"https://sandbox-api.okto.tech"`
	APIKeyEnv string        `yaml:"api_key_env" default:"OKTO_API_KEY"`
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
}

// LocalOTPConfig contains settings for the self-hosted provider
type LocalOTPConfig struct {
	CodeTTL    time.Duration `yaml:"code_ttl" default:"10m"`
	CodeLength int           `yaml:"code_length" default:"6" validate:"gte=4,lte=10"`
}

// SMTPConfig contains outbound mail settings. An empty host logs codes instead of mailing them.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port" default:"465"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env" default:"SMTP_PASSWORD"`
	From        string `yaml:"from" default:"no-reply@peyroll.app"`
}

// RegistrationConfig contains orchestrator settings
type RegistrationConfig struct {
	// ConfirmationTimeout bounds AwaitingConfirmation. Zero waits indefinitely.
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout" default:"0s"`
	SessionTTL          time.Duration `yaml:"session_ttl" default:"30m"`
	JanitorInterval     time.Duration `yaml:"janitor_interval" default:"1m"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	SessionSecretEnv string        `yaml:"session_secret_env" default:"REGISTRAR_SESSION_SECRET"`
	SessionTTL       time.Duration `yaml:"session_ttl" default:"1h"`
	Issuer           string        `yaml:"issuer" default:"peyroll-registrar"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool   `yaml:"enabled" default:"true"`
	MetricsPath string `yaml:"metrics_path" default:"/metrics"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// Load reads the YAML file at configPath, applies defaults and validates the result
func Load(configPath string) (*Config, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML configuration bytes
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Wallet.Mode == "keyed" && len(cfg.Wallet.EncryptedKeys) == 0 {
		return errors.New("wallet.encrypted_keys is required in keyed mode")
	}
	if cfg.Registration.ConfirmationTimeout < 0 {
		return errors.New("registration.confirmation_timeout must not be negative")
	}
	return nil
}

// Secret reads the value of the environment variable named by envName
func Secret(envName string) (string, error) {
	if envName == "" {
		return "", errors.New("secret env name is empty")
	}
	v := os.Getenv(envName)
	if v == "" {
		return "", fmt.Errorf("env %s is not set", envName)
	}
	return v, nil
}
