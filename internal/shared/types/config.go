package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Profile                string   `json:"profile" yaml:"profile" toml:"profile"`
	Region                 string   `json:"region" yaml:"region" toml:"region"`
	DatabasePath           string   `json:"database_path" yaml:"database_path" toml:"database_path"`
	FullSyncDays           int      `json:"full_sync_days" yaml:"full_sync_days" toml:"full_sync_days"`
	RefreshIntervalMinutes int      `json:"refresh_interval_minutes" yaml:"refresh_interval_minutes" toml:"refresh_interval_minutes"`
	RefreshOnStartup       bool     `json:"refresh_on_startup" yaml:"refresh_on_startup" toml:"refresh_on_startup"`
	ShowCreditsByDefault   bool     `json:"show_credits_by_default" yaml:"show_credits_by_default" toml:"show_credits_by_default"`
	ReportName             string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType             []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                    string   `json:"dir" yaml:"dir" toml:"dir"`
}

// DefaultConfig retorna a configuração padrão usada quando nenhum arquivo
// é informado.
func DefaultConfig() *Config {
	return &Config{
		Profile:                "default",
		Region:                 "us-east-1",
		DatabasePath:           "costs.db",
		FullSyncDays:           90,
		RefreshIntervalMinutes: 60,
		RefreshOnStartup:       true,
		ShowCreditsByDefault:   false,
	}
}
