package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the merged configuration with the credential redacted.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	apiKey := "<unset>"
	if cfg.APIKey != "" {
		apiKey = "<redacted>"
	}
	fmt.Fprintf(out, "Runsync URL: %s\n", cfg.RunsyncURL())
	fmt.Fprintf(out, "API key (%s): %s\n\n", cfg.APIKeyEnv, apiKey)

	cfg.APIKey = ""
	pp.Fprintln(out, cfg)
}
