package config

import (
	"flag"
	"os"
	"time"

	"github.com/techwork/portal-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   portal server URL (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-d string   path of the local session database
//
// Only the flags handled here are parsed, via flagx.FilterArgs, so the
// config-file flags owned by parseJSON do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "portal server URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDBPath, "d", cfg.SessionDBPath, "path of the local session database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
