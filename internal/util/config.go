package util

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel   string `toml:"log_level"`
	LogFile    string `toml:"log_file"`
	JournalDSN string `toml:"journal_dsn"`
	Seed       uint64 `toml:"seed"`
	Parallel   int    `toml:"parallel"`
	DebugAST   bool   `toml:"debug_ast"`
}

// DefaultConfiguration seeds rand() from the clock; set seed in the file or
// with -seed for a repeatable run.
func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel: "error",
		Seed:     uint64(time.Now().UnixNano()),
		Parallel: runtime.NumCPU(),
	}
}

// LoadConfiguration overlays the TOML file at path onto cfg. Unknown keys are
// rejected so typos do not pass silently.
func LoadConfiguration(path string, cfg *Configuration) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("load config %s: parallel must be at least 1", path)
	}
	return nil
}
