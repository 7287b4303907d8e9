package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	StoragePath string
	ListModels  bool

	// Word source flags
	PickerMode string
	WordsFile  string

	// Enrichment flags
	Provider string
	Model    string
	Language string

	// Logging flags
	LogLevel       string
	LogDevelopment bool

	// History flags
	Limit        int
	NewestFirst  bool
	ExportFormat string
	ArchiveDir   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		PickerMode:   "static",
		Provider:     "openrouter",
		Language:     "Ukrainian",
		LogLevel:     "info",
		ExportFormat: "json",
	}
}
