package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/flagx"
)

// parseFlags populates Config fields from -a, -t and -o. Other arguments
// are filtered out with flagx.FilterArgs so -c/-config does not trip the
// parser.
func parseFlags(cfg *Config) {
	filtered := flagx.FilterArgs(args(), []string{"-a", "-t", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.ReportsDir, "o", cfg.ReportsDir, "directory for downloaded exports")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
