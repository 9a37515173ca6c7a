// Package config holds the tunable extraction heuristics. Keyword sets,
// header synonyms and currency conversion rates are deployment data, not
// invariant logic, so they live in a TOML file with compiled-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Extraction groups the heuristic knobs used by the statement and receipt
// pipelines.
type Extraction struct {
	// IncomeKeywords mark a description as money-in when no explicit
	// type or debit/credit columns exist.
	IncomeKeywords []string `toml:"income_keywords"`
	// ExpenseKeywords mark a description as money-out.
	ExpenseKeywords []string `toml:"expense_keywords"`
}

// Vision configures the external multimodal model adapter.
type Vision struct {
	Model string `toml:"model"`
	// Conversion multipliers applied when the model reports an amount in a
	// foreign currency. Keyed by symbol the model is asked to detect.
	USDRate float64 `toml:"usd_rate"`
	EURRate float64 `toml:"eur_rate"`
	GBPRate float64 `toml:"gbp_rate"`
}

// Storage configures object storage for receipt archival.
type Storage struct {
	Bucket string `toml:"bucket"`
}

// Config is the top-level configuration document.
type Config struct {
	Extraction Extraction `toml:"extraction"`
	Vision     Vision     `toml:"vision"`
	Storage    Storage    `toml:"storage"`
}

const defaultConfigTOML = `# docledger extraction tunables.
# Keyword sets decide income vs expense when a statement has a single
# amount column and no explicit type column.

[extraction]
income_keywords = [
  "salary", "deposit", "credit", "interest", "refund", "reversal",
  "cashback", "cr-", "credited",
]
expense_keywords = [
  "debit", "withdrawal", "payment", "purchase", "dr-", "debited", "pos",
]

[vision]
model = "gemini-2.5-flash"
# Multipliers to the home currency (INR) when a foreign symbol is detected.
usd_rate = 83.0
eur_rate = 90.0
gbp_rate = 105.0

[storage]
bucket = ""
`

// Default returns the compiled-in configuration.
func Default() *Config {
	var cfg Config
	// The embedded document is a constant; a decode failure is a programming
	// error, not a runtime condition.
	if _, err := toml.Decode(defaultConfigTOML, &cfg); err != nil {
		panic(fmt.Sprintf("config: decoding built-in defaults: %v", err))
	}
	return &cfg
}

// Load reads a TOML config file, layering it over the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return cfg, nil
}
