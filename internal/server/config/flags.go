package config

import (
	"flag"
	"io"

	"github.com/Velislav710/TeenBudget-sub001/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-g string    gRPC health bind address
//	-d string    PostgreSQL DSN
//	-s string    token signing secret
//	-p string    pending signup store: memory|redis
//	-r string    Redis address
//	-m string    mail backend: log|ses
//	-l string    log level
//	-session-ttl duration   session token lifetime
//	-reset-ttl duration     reset token lifetime
//
// Unknown arguments are filtered out first so other flag sets can share os.Args.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-p", "-r", "-m", "-l", "-session-ttl", "-reset-ttl"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.PendingStore, "p", config.PendingStore, "pending signup store (memory|redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.MailBackend, "m", config.MailBackend, "mail backend (log|ses)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.SessionTokenTTL, "session-ttl", config.SessionTokenTTL, "session token lifetime")
	fs.DurationVar(&config.ResetTokenTTL, "reset-ttl", config.ResetTokenTTL, "reset token lifetime")

	return fs.Parse(args)
}
