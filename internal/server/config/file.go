package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/flagx"
	"github.com/dmitrijs2005/stockroom/internal/timex"
	"gopkg.in/yaml.v2"
)

// FileConfig mirrors Config for decoding config files. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Empty values leave the current setting untouched.
type FileConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	Issuer                       string         `json:"issuer" yaml:"issuer"`
	Audience                     string         `json:"audience" yaml:"audience"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	Environment                  string         `json:"environment" yaml:"environment"`
	AllowedOrigins               []string       `json:"allowed_origins" yaml:"allowed_origins"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PresignTTL                 timex.Duration `json:"s3_presign_ttl" yaml:"s3_presign_ttl"`
}

// parseFile overlays values from the file named by -c/-config. Files ending
// in .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	c.applyTo(config)
	return nil
}

func (c *FileConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Issuer, c.Issuer)
	setString(&config.Audience, c.Audience)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.Environment, c.Environment)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.S3PresignTTL.Duration > 0 {
		config.S3PresignTTL = c.S3PresignTTL.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
