// Package config loads the TOML configuration file of spec §6 and
// applies the env-var/CLI-flag override precedence it specifies
// (CLI flag > TESS_-prefixed env var > config file > built-in default).
//
// Grounded on the teacher's own init() (demlo.go) for XDG directory
// conventions (XDG_CONFIG_HOME/XDG_DATA_HOME with a ~/.config and
// ~/.local/share fallback), rendered with github.com/pelletier/go-toml/v2 instead of
// demlo's own Lua-script configuration, since §6 names TOML explicitly.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oxur/tessitura/internal/tesserr"
)

// Logging is the [logging] TOML table (spec §6).
type Logging struct {
	Level  string `toml:"level"`
	Color  bool   `toml:"color"`
	Output string `toml:"output"` // "stderr", "stdout", or a file path; "" means stderr
}

// Config is the fully-resolved configuration, after file load and env
// override, but before CLI flags are applied (those are layered on top
// by cmd/tessitura itself, which owns flag parsing).
type Config struct {
	AcoustidAPIKey string  `toml:"acoustid_api_key"`
	DiscogsToken   string  `toml:"discogs_token"`
	LastfmAPIKey   string  `toml:"lastfm_api_key"`
	DatabasePath   string  `toml:"database_path"`
	RulesPath      string  `toml:"rules_path"`
	Logging        Logging `toml:"logging"`
}

const envPrefix = "TESS_"

// ConfigDir returns the platform-conventional directory this project's
// config file lives under ($XDG_CONFIG_HOME/tessitura, falling back to
// ~/.config/tessitura), matching the teacher's own XDG resolution.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tessitura")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "tessitura")
}

// DataDir returns the platform-conventional data directory ($XDG_DATA_HOME
// /tessitura, falling back to ~/.local/share/tessitura).
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tessitura")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "tessitura")
}

// DefaultPath is the config file's platform-conventional location.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "tessitura.toml")
}

// Default returns a Config populated entirely with built-in defaults
// (spec §6's "lowest" precedence tier).
func Default() Config {
	return Config{
		DatabasePath: filepath.Join(DataDir(), "tessitura.db"),
		RulesPath:    filepath.Join(ConfigDir(), "taxonomy.toml"),
		Logging: Logging{
			Level: "info",
			Color: true,
		},
	}
}

// Load reads the TOML file at path over the built-in defaults, then
// applies TESS_-prefixed environment variable overrides. A missing file
// is not an error: the defaults (plus any env overrides) are returned
// as-is, matching a fresh install with no config file written yet.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, tesserr.IO(path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, tesserr.InvalidData("malformed config file " + path + ": " + err.Error())
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories as
// needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return tesserr.IO(path, err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return tesserr.Serialization("marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return tesserr.IO(path, err)
	}
	return nil
}

// Example renders a commented example config, used by `tessitura config
// example`.
func Example() string {
	return `# tessitura configuration (spec sec.6)
acoustid_api_key = ""
discogs_token = ""
lastfm_api_key = ""
database_path = "` + filepath.Join(DataDir(), "tessitura.db") + `"
rules_path = "` + filepath.Join(ConfigDir(), "taxonomy.toml") + `"

[logging]
level = "info"
color = true
output = ""
`
}

// applyEnv overrides every field in cfg whose TESS_<FIELD_NAME> env var
// is set, reflecting over the toml tag names (§6's middle precedence
// tier). Nested tables are walked recursively with an underscore-joined
// prefix, e.g. TESS_LOGGING_LEVEL.
func applyEnv(cfg *Config) {
	applyEnvStruct(reflect.ValueOf(cfg).Elem(), envPrefix)
}

func applyEnvStruct(v reflect.Value, prefix string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("toml")
		if tag == "" || tag == "-" {
			continue
		}
		envKey := prefix + strings.ToUpper(tag)
		fv := v.Field(i)

		if fv.Kind() == reflect.Struct {
			applyEnvStruct(fv, envKey+"_")
			continue
		}

		raw, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			if b, err := strconv.ParseBool(raw); err == nil {
				fv.SetBool(b)
			}
		}
	}
}
