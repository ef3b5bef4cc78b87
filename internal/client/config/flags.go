package config

import (
	"flag"
	"os"

	"github.com/matchpoint-app/matchpoint/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    base URL of the backend server
//	-db string   path to the local sqlite database
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-db"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend server")
	fs.StringVar(&cfg.LocalDBPath, "db", cfg.LocalDBPath, "path to the local database file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
