package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nutricart/nutrigrade/grade"
)

const (
	envPrefix        = "NUTRIGRADE"
	defaultModelPath = "./ml-backend/model.pkl"
	defaultLogLevel  = "warn"
)

// Settings are the predictor settings after merging defaults, the yaml
// config file, environment variables and flags (in increasing precedence).
type Settings struct {
	ModelPath       string   `yaml:"model_path"`
	NativeExt       string   `yaml:"native_ext"`
	PersistNative   bool     `yaml:"persist_native"`
	LogLevel        string   `yaml:"log_level"`
	DefaultFeatures []string `yaml:"default_features"`
}

func defaultSettings() Settings {
	return Settings{
		ModelPath:       defaultModelPath,
		NativeExt:       grade.DefaultNativeExt,
		PersistNative:   true,
		LogLevel:        defaultLogLevel,
		DefaultFeatures: grade.DefaultFeatures,
	}
}

// LoadOptions converts the settings into loader options.
func (s Settings) LoadOptions() grade.LoadOptions {
	return grade.LoadOptions{
		NativeExt:       s.NativeExt,
		PersistNative:   s.PersistNative,
		DefaultFeatures: s.DefaultFeatures,
	}
}

// readSettingsFile parses a yaml config file with strict field checking, on
// top of base. Keys missing from the file keep base's values.
func readSettingsFile(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	s := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

// newViper binds flags and NUTRIGRADE_* environment variables.
func newViper(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"config", "model", "log", "native-ext", "persist-native"} {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(name, f)
		}
	}
	return v
}

// resolveSettings merges all sources. A config file that cannot be read is
// logged and skipped so a prediction still gets produced.
func resolveSettings(v *viper.Viper) Settings {
	_ = godotenv.Load()

	s := defaultSettings()
	if path := v.GetString("config"); path != "" {
		fromFile, err := readSettingsFile(path, s)
		if err != nil {
			logrus.Warnf("ignoring config file: %v", err)
		} else {
			s = fromFile
		}
	}

	v.SetDefault("model", s.ModelPath)
	v.SetDefault("log", s.LogLevel)
	v.SetDefault("native-ext", s.NativeExt)
	v.SetDefault("persist-native", s.PersistNative)

	s.ModelPath = v.GetString("model")
	s.LogLevel = v.GetString("log")
	s.NativeExt = v.GetString("native-ext")
	s.PersistNative = v.GetBool("persist-native")
	return s
}
