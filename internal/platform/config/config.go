package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Cookie   CookieConfig   `mapstructure:"cookie"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	PrivateKeyPEM string        `mapstructure:"private_key_pem"`
	PublicKeyPEM  string        `mapstructure:"public_key_pem"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type OAuthConfig struct {
	Issuer          string        `mapstructure:"issuer"`
	ClientID        string        `mapstructure:"client_id"`
	ClientSecret    string        `mapstructure:"client_secret"`
	RedirectURL     string        `mapstructure:"redirect_url"`
	ExchangeTimeout time.Duration `mapstructure:"exchange_timeout"`
}

// DeploymentProfile fixes the security-critical cookie attributes at startup
// instead of branching on an environment string inline. Cross-site cookies
// require the Secure attribute, so CrossSite implies RequireSecureTransport.
type DeploymentProfile struct {
	CrossSite              bool `mapstructure:"cross_site"`
	RequireSecureTransport bool `mapstructure:"require_secure_transport"`
}

type CookieConfig struct {
	Name    string            `mapstructure:"name"`
	Profile DeploymentProfile `mapstructure:"profile"`
}

type SessionsConfig struct {
	StateTTL      time.Duration `mapstructure:"state_ttl"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type FrontendConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	LandingPath string `mapstructure:"landing_path"`
	LoginPath   string `mapstructure:"login_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Cookie.Name == "" {
		return fmt.Errorf("cookie.name must be set")
	}
	if c.Cookie.Profile.CrossSite && !c.Cookie.Profile.RequireSecureTransport {
		return fmt.Errorf("cookie.profile: cross-site cookies require secure transport")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}
	return nil
}
