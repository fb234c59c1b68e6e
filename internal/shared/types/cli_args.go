package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile   string
	Profile      string
	Region       string
	DatabasePath string
	Refresh      bool
	FullSync     bool
	NoCredits    bool
	Watch        bool
	ReportName   string
	ReportType   []string
	Dir          string
}
