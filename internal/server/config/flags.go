package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   management gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-i string   JWT issuer
//	-o string   JWT audience
//	-t int      access token validity, minutes
//	-r int      refresh token validity, days
//	-l string   log level (debug, info, warn, error)
//	-n string   environment (dev, prod)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and flags of
// other components do not break parsing.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-i", "-o", "-t", "-r", "-l", "-n", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "m", config.EndpointAddrGRPC, "address and port to run the management endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.StringVar(&config.Audience, "o", config.Audience, "token audience")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshDays := fs.Int("r", int(config.RefreshTokenValidityDuration.Hours()/24), "refresh token validity (in days)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Environment, "n", config.Environment, "environment (dev, prod)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only overwrite durations that were given explicitly, so sub-minute or
	// sub-day values from defaults or files survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshDays) * 24 * time.Hour
		}
	})

	return nil
}
