// Package config provides the configuration loader for wipt.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "WIPT"

var errInvalidBool = errors.New("invalid boolean value")

// Loader implements ports.ConfigLoader using layered YAML files and environment overrides.
//
// Layers are applied in order: machine file, user file, the file named by WIPT_CONFIG,
// then individual WIPT_* variables. Each layer overrides only the fields it sets.
type Loader struct {
	Logger      ports.Logger
	FS          FileSystem
	MachinePath string
	UserPath    string
}

// NewLoader creates a new Loader reading the default machine and user paths.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:      logger,
		FS:          NewOSFS(),
		MachinePath: domain.DefaultMachineConfigPath(),
		UserPath:    domain.DefaultUserConfigPath(),
	}
}

// Load returns the effective settings.
func (l *Loader) Load() (*domain.Settings, error) {
	var env Environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigEnvFailed, err.Error()), "prefix", EnvPrefix)
	}

	settings := domain.DefaultSettings()

	for _, path := range []string{l.MachinePath, l.UserPath, env.Config} {
		if path == "" {
			continue
		}
		layer, err := l.readLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		applyLayer(settings, layer)
	}

	applyEnvironment(settings, &env)

	if err := validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// readLayer reads one configuration file. A missing file yields nil, nil.
func (l *Loader) readLayer(path string) (*Configfile, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var layer Configfile
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return &layer, nil
}

func applyLayer(s *domain.Settings, layer *Configfile) {
	if repos := splitSources(layer.Repositories); len(repos) > 0 {
		s.Repositories = repos
	}
	if layer.TargetDir != nil {
		s.TargetDir = *layer.TargetDir
	}
	if layer.PerUser != nil {
		s.PerUser = *layer.PerUser
	}
	if layer.Cache != "" {
		s.CachePath = layer.Cache
	}
	if layer.Inventory != "" {
		s.InventoryPath = layer.Inventory
	}
	if layer.Engine != "" {
		s.Engine = domain.Engine(strings.ToLower(layer.Engine))
	}
}

func applyEnvironment(s *domain.Settings, env *Environment) {
	if repos := splitSources(env.Repositories); len(repos) > 0 {
		s.Repositories = repos
	}
	if env.TargetDir != "" {
		s.TargetDir = env.TargetDir
	}
	if env.PerUser.set {
		s.PerUser = env.PerUser.value
	}
	if env.Cache != "" {
		s.CachePath = env.Cache
	}
	if env.Inventory != "" {
		s.InventoryPath = env.Inventory
	}
	if env.Engine != "" {
		s.Engine = domain.Engine(strings.ToLower(env.Engine))
	}
}

// splitSources flattens entries that hold several whitespace separated URLs.
func splitSources(entries []string) []string {
	var sources []string
	for _, entry := range entries {
		sources = append(sources, strings.Fields(entry)...)
	}
	return sources
}

func validate(s *domain.Settings) error {
	switch s.Engine {
	case domain.EngineInventory, domain.EngineMsiexec:
		return nil
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownEngine, string(s.Engine)), "engine", string(s.Engine))
	}
}
