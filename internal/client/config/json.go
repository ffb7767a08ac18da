package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/activitydash/internal/flagx"
	"github.com/dmitrijs2005/activitydash/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling. Missing fields keep the
// current value.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	ReportsDir     *string         `json:"reports_dir"`
}

// parseJson overlays Config with the file named by -c or -config. It panics
// on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(args())
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ReportsDir != nil {
		cfg.ReportsDir = *jc.ReportsDir
	}
}
