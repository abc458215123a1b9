// Package config loads server configuration from the environment
// (LEDGERGATE_* variables) with an optional YAML file underneath. Loading
// never aborts the process: a missing required key is reported as a
// *MissingKeyError so the server can start and answer every request with
// "server misconfigured" instead of crash-looping at the edge.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Scope is the only OAuth scope this service ever requests.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

const envPrefix = "LEDGERGATE"

type Config struct {
	ListenAddr string

	APIKey              string
	SpreadsheetID       string
	ServiceAccountEmail string
	ServiceAccountKey   string // PEM, possibly with literal \n sequences
	AppendRange         string
	PurposeRange        string
	AccountRange        string

	// TokenURL and SheetsBaseURL default to the public Google endpoints and
	// exist as knobs for tests.
	TokenURL      string
	SheetsBaseURL string

	ListsTTL time.Duration
}

// MissingKeyError lists every required configuration key that was absent.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// Load reads configuration from path (optional) and the environment. The
// returned Config is always populated with whatever was found; the error, if
// any, is a *MissingKeyError naming the gaps.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("sheets_base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("lists_ttl", "24h")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !os.IsNotExist(err) {
				// a present-but-broken file is a real misconfiguration
				return &Config{}, &MissingKeyError{Keys: []string{"config file: " + err.Error()}}
			}
		}
	}

	c := &Config{
		ListenAddr:          v.GetString("listen_addr"),
		APIKey:              v.GetString("api_key"),
		SpreadsheetID:       v.GetString("spreadsheet_id"),
		ServiceAccountEmail: v.GetString("service_account_email"),
		ServiceAccountKey:   v.GetString("service_account_key"),
		AppendRange:         v.GetString("append_range"),
		PurposeRange:        v.GetString("purpose_range"),
		AccountRange:        v.GetString("account_range"),
		TokenURL:            v.GetString("token_url"),
		SheetsBaseURL:       v.GetString("sheets_base_url"),
		ListsTTL:            v.GetDuration("lists_ttl"),
	}
	return c, c.Validate()
}

// Validate reports every missing required key at once, so one round of
// fixing the deployment covers them all.
func (c *Config) Validate() error {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"api_key", c.APIKey},
		{"spreadsheet_id", c.SpreadsheetID},
		{"service_account_email", c.ServiceAccountEmail},
		{"service_account_key", c.ServiceAccountKey},
		{"append_range", c.AppendRange},
		{"purpose_range", c.PurposeRange},
		{"account_range", c.AccountRange},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return &MissingKeyError{Keys: missing}
	}
	return nil
}
