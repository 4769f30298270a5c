package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite | postgres
	Path    string `mapstructure:"path"`   // sqlite file
	DSN     string `mapstructure:"dsn"`    // postgres
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
	KDFSalt       string `mapstructure:"kdf_salt"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

// InvoiceConfig is the fixed document header printed on every export.
type InvoiceConfig struct {
	IssuerName    string   `mapstructure:"issuer_name"`
	IssuerAddress []string `mapstructure:"issuer_address"`
	BillToName    string   `mapstructure:"bill_to_name"`
	BillToEmail   string   `mapstructure:"bill_to_email"`
	Currency      string   `mapstructure:"currency"`
	NumberNode    int64    `mapstructure:"number_node"`
}

type ArchiveConfig struct {
	Kind   string `mapstructure:"kind"` // none | local | s3
	Dir    string `mapstructure:"dir"`
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Invoice  InvoiceConfig  `mapstructure:"invoice"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/invoices.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "invoice-generator")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.encryption_key", "")
	v.SetDefault("security.kdf_salt", "invoice-generator")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("invoice.issuer_name", "Your Company")
	v.SetDefault("invoice.issuer_address", []string{"123 Business Street", "City, State, ZIP"})
	v.SetDefault("invoice.bill_to_name", "Customer Name")
	v.SetDefault("invoice.bill_to_email", "customer@example.com")
	v.SetDefault("invoice.currency", "USD")
	v.SetDefault("invoice.number_node", 1)

	v.SetDefault("archive.kind", "none")
	v.SetDefault("archive.dir", "data/archive")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.region", "")
	v.SetDefault("archive.prefix", "invoices/")
}

// Load reads configuration from path (e.g. "config.yaml"). With an empty
// path it looks for config.yaml in the working directory and falls back to
// defaults when there is none. A .env file, if present, is loaded into the
// environment first; environment variables override the file, e.g.
// INV_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("INV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}

	switch c.Archive.Kind {
	case "", "none", "local", "s3":
	default:
		return fmt.Errorf("config: unknown archive.kind %q", c.Archive.Kind)
	}
	if c.Archive.Kind == "s3" && c.Archive.Bucket == "" {
		return errors.New("config: archive.bucket is required for s3")
	}
	if c.Invoice.NumberNode < 0 || c.Invoice.NumberNode > 1023 {
		return fmt.Errorf("config: invoice.number_node %d out of range 0..1023", c.Invoice.NumberNode)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
