package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

// fileConfig holds defaults read from a config file. Explicit flags
// always win over config values.
type fileConfig struct {
	ExportTarget        string `toml:"export_target"`
	IgnoreTransclusions bool   `toml:"ignore_transclusions"`
	JustRaw             bool   `toml:"just_raw"`
	Leanpub             bool   `toml:"leanpub"`
	Book                bool   `toml:"book"`
}

// configPaths returns candidate config files in ascending precedence:
// the user config directory first, then a project-local override.
func configPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "mdmerge", "config.toml"))
	}
	paths = append(paths, ".mdmerge.toml")
	return paths
}

// loadConfig reads and merges the config files. Missing files are fine;
// a file that exists but does not parse is an error.
func loadConfig() (fileConfig, error) {
	var cfg fileConfig
	for _, path := range configPaths() {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read config file %s", path)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config file %s", path)
		}
	}
	return cfg, nil
}

// applyConfig fills in defaults from the config file for any flag the
// user did not set explicitly.
func applyConfig(flags *pflag.FlagSet, opts *runOptions, cfg fileConfig) {
	if cfg.ExportTarget != "" && !flags.Changed("export-target") {
		opts.exportTarget = cfg.ExportTarget
	}
	if cfg.IgnoreTransclusions && !flags.Changed("ignore-transclusions") {
		opts.ignoreTransclusions = true
	}
	if cfg.JustRaw && !flags.Changed("just-raw") {
		opts.justRaw = true
	}
	if cfg.Leanpub && !flags.Changed("leanpub") {
		opts.leanpub = true
	}
	if cfg.Book && !flags.Changed("book") {
		opts.book = true
	}
}
