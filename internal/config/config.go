package config

import "time"

// Config holds bridge configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	XMPPAddr   string `mapstructure:"xmpp_addr" yaml:"xmpp_addr"`
	XMPPDomain string `mapstructure:"xmpp_domain" yaml:"xmpp_domain"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		XMPPAddr:          "localhost:5222",
		XMPPDomain:        "localhost",
		DatabasePath:      "mucbridge.db",
		JWTSecret:         "change-me",
		JWTIssuer:         "mucbridge",
		JWTAudience:       "mucbridge-client",
	}
}
