package config

import (
	"flag"
	"os"

	"github.com/securechain/securechain/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   server base URL (e.g., "http://127.0.0.1:5050")
//	-o string   downloads directory
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerAddr, "a", config.ServerAddr, "server base URL")
	fs.StringVar(&config.DownloadsDir, "o", config.DownloadsDir, "downloads directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
