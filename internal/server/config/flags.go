package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bankauth/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string        gRPC bind address (e.g. ":50051")
//	-m string        metrics bind address (empty disables)
//	-d string        PostgreSQL DSN
//	-storage string  "postgres" or "memory"
//	-s string        JWT HMAC secret key
//	-t int           token validity, minutes
//	-timeout int     store timeout, seconds
//	-cost int        bcrypt cost
//
// Durations are given as integers and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-storage", "-s", "-t", "-timeout", "-cost"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageType, "storage", config.StorageType, "credential storage: postgres or memory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	storeTimeout := fs.Int("timeout", int(config.StoreTimeout.Seconds()), "store timeout (in seconds)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.StoreTimeout = time.Duration(*storeTimeout) * time.Second
}
