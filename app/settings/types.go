package settings

// Settings holds roll-cmd settings that can be overridden by the user.
type Settings struct {
	// Number of evaluations when neither a flag nor an argument gives one
	DefaultRolls int `yaml:"default_rolls" json:"default_rolls"`
	// Artifact file names inside the output directory
	RollsFile  string `yaml:"rolls_file" json:"rolls_file"`
	ThrowsFile string `yaml:"throws_file" json:"throws_file"`
	// Report file name, empty disables the report
	ReportFile string `yaml:"report_file,omitempty" json:"report_file,omitempty"`
	// Directory the artifacts are written to
	OutDir string `yaml:"out_dir" json:"out_dir"`
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	DefaultRolls: 1,
	RollsFile:    "rolls.npy",
	ThrowsFile:   "throws.npy",
	OutDir:       ".",
}
