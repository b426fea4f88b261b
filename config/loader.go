package config

import (
	"strings"

	"github.com/webhookx-io/showgate/config/providers"
)

// Loader is configuration loader
type Loader struct {
	cfg         *Config
	envPrefix   string
	env         map[string]string
	filename    string
	fileContent []byte
}

func NewLoader(cfg *Config) *Loader {
	return &Loader{cfg: cfg}
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithEnv replaces the process environment, used by tests.
func (l *Loader) WithEnv(env map[string]string) *Loader {
	l.env = env
	return l
}

func (l *Loader) WithFilename(filename string) *Loader {
	l.filename = filename
	return l
}

func (l *Loader) WithFileContent(content []byte) *Loader {
	l.fileContent = content
	return l
}

func (l *Loader) load(module string, value any) (err error) {
	err = providers.NewYAMLProvider(l.filename, l.fileContent).
		WithKey(strings.ToLower(module)).
		Load(value)
	if err != nil {
		return err
	}

	if l.envPrefix != "" {
		envPrefix := l.envPrefix
		if module != "" {
			envPrefix = l.envPrefix + "_" + module
		}
		err = providers.NewEnvProvider(envPrefix).
			WithEnv(l.env).
			Load(value)
		if err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) Load() error {
	cfg := l.cfg
	if err := l.load("", cfg); err != nil {
		return err
	}

	return cfg.PostProcess()
}

func Load(filename string, cfg *Config) error {
	return NewLoader(cfg).WithEnvPrefix("SHOWGATE").WithFilename(filename).Load()
}
