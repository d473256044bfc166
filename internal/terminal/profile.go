package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
)

// Profile selects the backend and identity for CLI commands. It is read from
// a YAML/TOML/JSON file and FINTRACK_* environment variables.
type Profile struct {
	Backend       string `mapstructure:"backend"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	DataDirectory string `mapstructure:"data_directory"`

	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	IncomeSheet   string `mapstructure:"income_sheet"`
	ExpensesSheet string `mapstructure:"expenses_sheet"`

	User      string        `mapstructure:"user"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`
}

// LoadProfile reads the profile at path. An empty path uses defaults and the
// environment only.
func LoadProfile(path string) (Profile, error) {
	v := viper.New()
	v.SetDefault("backend", string(backend.MemoryBackend))
	v.SetDefault("sqlite_path", "./data/fintrack.db")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("data_directory", "data")
	v.SetDefault("spreadsheet_id", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("income_sheet", "Income")
	v.SetDefault("expenses_sheet", "Expenses")
	v.SetDefault("user", auth.DefaultUser)
	v.SetDefault("jwt_issuer", "fintrack")
	v.SetDefault("jwt_ttl", "24h")

	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Profile{}, fmt.Errorf("failed to read profile: %w", err)
		}
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.BackendConfig().Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) BackendConfig() backend.Config {
	return backend.Config{
		Type:                backend.BackendType(p.Backend),
		SQLiteDBPath:        p.SQLitePath,
		PostgresDSN:         p.PostgresDSN,
		GoogleSpreadsheetID: p.SpreadsheetID,
		GoogleIncomeSheet:   p.IncomeSheet,
		GoogleExpensesSheet: p.ExpensesSheet,
		DataDirectory:       p.DataDirectory,
	}
}
