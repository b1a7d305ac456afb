package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-m", "-l", "-s", "-k", "-t", "-r", "-u", "-p", "-b", "-g", "-e",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-m string   storage backend: postgres | memory
//	-l string   log backend: slog | zap
//	-s string   access token secret
//	-k string   refresh token secret
//	-t int      access token lifetime, minutes
//	-r int      refresh token lifetime, minutes
//	-u, -p      S3 user and password
//	-b, -g, -e  S3 bucket, region and base endpoint
//
// Only the flags above are looked at; anything else in os.Args is ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "HTTP bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (postgres|memory)")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "k", config.RefreshTokenSecret, "refresh token secret")

	accessMinutes := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token lifetime (minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenTTL.Minutes()), "refresh token lifetime (minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Lifetimes only change when given, so sub-minute values from earlier
	// sources survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenTTL = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenTTL = time.Duration(*refreshMinutes) * time.Minute
		}
	})
}
