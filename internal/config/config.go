package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/localdriver"
)

//go:embed schema.cue
var schemaSource string

// Config is a driverbdd run configuration.
type Config struct {
	// Features lists feature files or directories to run.
	Features []string `yaml:"features" json:"features"`

	// Tags is a godog tag expression added to the default ignore tags.
	Tags string `yaml:"tags" json:"tags"`

	// Format is the godog output formatter.
	Format string `yaml:"format" json:"format"`

	// ThreadPoolSize bounds the parallel steps.
	ThreadPoolSize int `yaml:"thread_pool_size" json:"thread_pool_size"`

	// Strict fails the run on undefined or pending steps.
	Strict bool `yaml:"strict" json:"strict"`

	// StopOnFailure stops the run at the first failed scenario.
	StopOnFailure bool `yaml:"stop_on_failure" json:"stop_on_failure"`

	Driver Driver `yaml:"driver" json:"driver"`
}

// Driver configures the driver opened by the connection steps.
type Driver struct {
	// Address is passed to the driver; for the local driver it is a SQLite path.
	Address string `yaml:"address" json:"address"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Features:       []string{"features"},
		Format:         "pretty",
		ThreadPoolSize: behaviour.DefaultThreadPoolSize,
		Strict:         true,
		Driver:         Driver{Address: localdriver.DefaultAddress},
	}
}

// Load reads the YAML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.Features {
		if p != "" && !filepath.IsAbs(p) {
			cfg.Features[i] = filepath.Join(base, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
