// Package config loads proxykit.yaml.
//
// The file selects the proxy strategy and log level, lists the contract
// sources the CLI loads, and holds the interception rules:
//
//	strategy: compiled
//	log_level: debug
//	sources:
//	  proto: [api/store.proto]
//	  import_paths: [api]
//	  go: [./contracts/...]
//	rules:
//	  - methods: ["Get*", "List*"]
//	  - expr: 'method.visibility == "protected"'
//	  - methods: ["*Internal"]
//	    exclude: true
//
// A method is intercepted when it matches at least one rule and no exclude
// rule. Without rules every method is intercepted.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/proxykit/pkg/policy"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// Config represents the top-level proxykit.yaml configuration.
type Config struct {
	// Strategy is "compiled" or "reflective". Defaults to compiled.
	Strategy string `yaml:"strategy,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level,omitempty"`

	// Sources lists the contract sources.
	Sources Sources `yaml:"sources,omitempty"`

	// Rules select the methods to intercept.
	Rules []Rule `yaml:"rules,omitempty"`
}

// Sources lists where contracts come from.
type Sources struct {
	// Proto lists .proto files; each service becomes a contract.
	Proto []string `yaml:"proto,omitempty"`

	// ImportPaths are the directories .proto imports are resolved against.
	ImportPaths []string `yaml:"import_paths,omitempty"`

	// Go lists package patterns (as for go list); each exported interface
	// becomes a contract.
	Go []string `yaml:"go,omitempty"`

	// Dir is the directory Go patterns are resolved in. Relative to the
	// config file; defaults to it.
	Dir string `yaml:"dir,omitempty"`
}

// Rule selects methods by name glob, by CEL expression, or both.
type Rule struct {
	// Methods are path.Match glob patterns on the method name.
	Methods []string `yaml:"methods,omitempty"`

	// Expr is a CEL expression over the method attributes
	// (see policy.CEL).
	Expr string `yaml:"expr,omitempty"`

	// Exclude turns the rule into a veto.
	Exclude bool `yaml:"exclude,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a proxykit.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if cfg.Sources.Dir == "" {
		cfg.Sources.Dir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.Sources.Dir) {
		cfg.Sources.Dir = filepath.Join(filepath.Dir(path), cfg.Sources.Dir)
	}
	return cfg, nil
}

// Parse parses proxykit.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find searches for proxykit.yaml starting from dir and walking up to
// parent directories. It returns "" and a nil error when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{FileName, AltFileName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) setDefaults() {
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(file string) error {
	if _, err := proxy.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("%s: log_level %q must be one of %s", file, c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if len(c.Sources.Proto) == 0 && len(c.Sources.ImportPaths) > 0 {
		return fmt.Errorf("%s: sources.import_paths given without sources.proto", file)
	}
	for i, r := range c.Rules {
		if len(r.Methods) == 0 && r.Expr == "" {
			return fmt.Errorf("%s: rules[%d]: one of methods or expr is required", file, i)
		}
		for _, p := range r.Methods {
			if _, err := path.Match(p, ""); err != nil {
				return fmt.Errorf("%s: rules[%d]: bad pattern %q: %w", file, i, p, err)
			}
		}
		if r.Expr != "" {
			if _, err := policy.CEL(r.Expr); err != nil {
				return fmt.Errorf("%s: rules[%d]: %w", file, i, err)
			}
		}
	}
	return nil
}

// ProxyStrategy returns the configured strategy.
func (c *Config) ProxyStrategy() proxy.Strategy {
	s, _ := proxy.ParseStrategy(c.Strategy)
	return s
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Matcher combines the rules into one matcher.
func (c *Config) Matcher() (policy.Matcher, error) {
	if len(c.Rules) == 0 {
		return policy.All(), nil
	}
	var include, exclude []policy.Matcher
	for i, r := range c.Rules {
		m, err := r.matcher()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		if r.Exclude {
			exclude = append(exclude, m)
		} else {
			include = append(include, m)
		}
	}
	in := policy.All()
	if len(include) > 0 {
		in = policy.Or(include...)
	}
	return policy.And(in, policy.Not(policy.Or(exclude...))), nil
}

func (r Rule) matcher() (policy.Matcher, error) {
	var ms []policy.Matcher
	if len(r.Methods) > 0 {
		ms = append(ms, policy.Names(r.Methods...))
	}
	if r.Expr != "" {
		m, err := policy.CEL(r.Expr)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return policy.And(ms...), nil
}
