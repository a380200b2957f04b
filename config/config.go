package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/tailscale/hujson"

	"github.com/xschemadev/staticrun/logger"
)

const (
	// ExpectedEnvironment is the conda environment the tools are expected to run in
	ExpectedEnvironment = "StaticAnalysis"

	SettingsFileName     = "static_analysis.json"
	OutputFolderName     = "test_outputs"
	ConfigurationDirName = "configuration"
	ToxIniName           = "tox.ini"
	PylintrcName         = ".pylintrc"
)

// Paths is the fixed file layout, rooted at the working directory
type Paths struct {
	Root             string
	SettingsFile     string // optional settings file, overrides -src when present
	OutputDir        string // per-tool reports are written here
	ConfigurationDir string
	ToxIni           string // flake8 config
	Pylintrc         string // pylint rule file
}

// PathsFor builds the layout for the given root directory
func PathsFor(root string) Paths {
	configDir := filepath.Join(root, ConfigurationDirName)
	return Paths{
		Root:             root,
		SettingsFile:     filepath.Join(root, SettingsFileName),
		OutputDir:        filepath.Join(root, OutputFolderName),
		ConfigurationDir: configDir,
		ToxIni:           filepath.Join(configDir, ToxIniName),
		Pylintrc:         filepath.Join(configDir, PylintrcName),
	}
}

// Settings is the content of static_analysis.json
type Settings struct {
	SourceFolder string `mapstructure:"source_folder"`
}

// Config is built once at startup and handed to every step
type Config struct {
	Paths       Paths
	ExpectedEnv string
	Source      string // source folder the tools run against
}

// MissingSourceError is returned when no usable source folder was given
type MissingSourceError struct {
	Path string // empty when nothing was given at all
}

func (e *MissingSourceError) Error() string {
	if e.Path == "" {
		return "source code location missing: set source_folder in " + SettingsFileName + " or pass -src"
	}
	return "the path for your source code does not exist: " + e.Path
}

// LoadSettings reads the settings file. A missing or empty file is not an
// error: it returns nil settings so the caller falls back to the command line.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no settings file", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Allow comments and trailing commas
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(std)); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	// An empty object or a bare null carries no settings; treat it like a
	// missing file so -src still applies.
	if len(v.AllKeys()) == 0 {
		logger.Debug("settings file is empty", "path", path)
		return nil, nil
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, err)
	}

	logger.Debug("loaded settings file", "path", path, "source_folder", s.SourceFolder)
	return &s, nil
}

// Resolve determines the source folder. A settings file carrying any key
// wins over srcFlag, even if it leaves source_folder empty.
func Resolve(paths Paths, srcFlag string) (Config, error) {
	settings, err := LoadSettings(paths.SettingsFile)
	if err != nil {
		return Config{}, err
	}

	source := srcFlag
	if settings != nil {
		source = settings.SourceFolder
	}

	if source == "" {
		return Config{}, &MissingSourceError{}
	}
	if _, err := os.Stat(source); err != nil {
		logger.Debug("source folder stat failed", "path", source, "error", err)
		return Config{}, &MissingSourceError{Path: source}
	}

	return Config{
		Paths:       paths,
		ExpectedEnv: ExpectedEnvironment,
		Source:      source,
	}, nil
}
