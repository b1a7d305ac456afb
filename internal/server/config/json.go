package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
	"github.com/dmitrijs2005/vidtube/internal/timex"
)

// JsonConfig is the on-disk shape of the -c file. Durations accept "15m"
// style strings or integer nanoseconds. Empty fields keep the value the
// earlier sources produced.
type JsonConfig struct {
	HTTPAddress        string         `json:"http_address"`
	DatabaseDSN        string         `json:"database_dsn"`
	StorageBackend     string         `json:"storage_backend"`
	LogBackend         string         `json:"log_backend"`
	AccessTokenSecret  string         `json:"access_token_secret"`
	RefreshTokenSecret string         `json:"refresh_token_secret"`
	AccessTokenTTL     timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    timex.Duration `json:"refresh_token_ttl"`
	CookieSecure       *bool          `json:"cookie_secure"`
	CORSOrigin         string         `json:"cors_origin"`
	BcryptCost         int            `json:"bcrypt_cost"`
	LoginRatePerMinute int            `json:"login_rate_per_minute"`
	LoginRateBurst     int            `json:"login_rate_burst"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson overlays the file named by -c / -config onto config. Without
// the flag nothing happens. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	if c.AccessTokenTTL.Duration > 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration > 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.CORSOrigin, c.CORSOrigin)
	setInt(&config.BcryptCost, c.BcryptCost)
	setInt(&config.LoginRatePerMinute, c.LoginRatePerMinute)
	setInt(&config.LoginRateBurst, c.LoginRateBurst)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
