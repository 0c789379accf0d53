// Package config loads and validates the YAML run configuration and resolves
// it into search options.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/exhaustive/model_selection"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// Config is one run configuration. Paths are absolute or relative to the
// configuration file.
type Config struct {
	DataPath       string `yaml:"data_path" validate:"required"`
	AnnotationPath string `yaml:"annotation_path" validate:"required"`
	NKPath         string `yaml:"n_k_path" validate:"required"`
	OutputDir      string `yaml:"output_dir" validate:"required"`

	FeaturePreSelector       string         `yaml:"feature_pre_selector"`
	FeaturePreSelectorKwargs map[string]any `yaml:"feature_pre_selector_kwargs"`
	FeatureSelector          string         `yaml:"feature_selector"`
	FeatureSelectorKwargs    map[string]any `yaml:"feature_selector_kwargs"`

	Preprocessor       string         `yaml:"preprocessor"`
	PreprocessorKwargs map[string]any `yaml:"preprocessor_kwargs"`

	Classifier         string         `yaml:"classifier" validate:"required"`
	ClassifierKwargs   map[string]any `yaml:"classifier_kwargs"`
	ClassifierCVRanges CVRanges       `yaml:"classifier_cv_ranges"`
	ClassifierCVFolds  int            `yaml:"classifier_cv_folds" validate:"gte=2"`

	LimitFeatureSubsets   bool `yaml:"limit_feature_subsets"`
	NFeatureSubsets       int  `yaml:"n_feature_subsets" validate:"gte=0"`
	ShuffleFeatureSubsets bool `yaml:"shuffle_feature_subsets"`

	// MaxN caps n in the grid; 0 means no cap.
	MaxN int `yaml:"max_n" validate:"gte=0"`
	// MaxEstimatedTime is the estimate cut-off in hours.
	MaxEstimatedTime float64 `yaml:"max_estimated_time" validate:"gte=0"`

	ScoringFunctions     []string `yaml:"scoring_functions" validate:"required,min=1,unique,dive,required"`
	MainScoringFunction  string   `yaml:"main_scoring_function" validate:"required"`
	MainScoringThreshold float64  `yaml:"main_scoring_threshold"`

	// NProcesses is the worker count; 0 uses every CPU.
	NProcesses  int    `yaml:"n_processes" validate:"gte=0"`
	RandomState uint64 `yaml:"random_state"`
	Verbose     bool   `yaml:"verbose"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Plot        bool   `yaml:"plot"`

	path string
}

// CVRanges is the classifier hyperparameter grid in file order.
type CVRanges model_selection.ParamGrid

// UnmarshalYAML keeps the mapping order, which fixes the enumeration order of
// the grid. A scalar value is a single-value range.
func (r *CVRanges) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: classifier_cv_ranges must be a mapping", node.Line)
	}
	out := make(CVRanges, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var values []any
		if val.Kind == yaml.SequenceNode {
			if err := val.Decode(&values); err != nil {
				return errors.Wrapf(err, "classifier_cv_ranges.%s", key.Value)
			}
		} else {
			var v any
			if err := val.Decode(&v); err != nil {
				return errors.Wrapf(err, "classifier_cv_ranges.%s", key.Value)
			}
			values = []any{v}
		}
		out = append(out, model_selection.ParamRange{Name: key.Value, Values: values})
	}
	*r = out
	return nil
}

// Grid returns the ranges as a ParamGrid.
func (r CVRanges) Grid() model_selection.ParamGrid { return model_selection.ParamGrid(r) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigurationErrorf("config", "cannot open %s: %v", path, err)
	}
	defer f.Close()

	cfg := &Config{ClassifierCVFolds: 5}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.NewConfigurationErrorf("config", "%s: %v", path, err)
	}
	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct tag checks and the cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewConfigurationErrorf(fe.Field(), "failed %q check (value %v)", fe.Tag(), fe.Value())
		}
		return errors.NewConfigurationError("config", err.Error())
	}

	found := false
	for _, s := range c.ScoringFunctions {
		if s == c.MainScoringFunction {
			found = true
			break
		}
	}
	if !found {
		return errors.NewConfigurationErrorf("main_scoring_function", "%q is not listed in scoring_functions", c.MainScoringFunction)
	}
	if c.LimitFeatureSubsets && c.NFeatureSubsets < 1 {
		return errors.NewConfigurationError("n_feature_subsets", "must be positive when limit_feature_subsets is set")
	}
	if err := c.ClassifierCVRanges.Grid().Validate(); err != nil {
		return errors.NewConfigurationError("classifier_cv_ranges", err.Error())
	}
	return nil
}

// Resolve returns p relative to the configuration file directory unless it
// is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

// Workers returns the effective worker count.
func (c *Config) Workers() int {
	if c.NProcesses > 0 {
		return c.NProcesses
	}
	return runtime.NumCPU()
}

// Level returns the configured log level; verbose implies debug.
func (c *Config) Level() string {
	switch {
	case c.LogLevel != "":
		return c.LogLevel
	case c.Verbose:
		return "debug"
	default:
		return "info"
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }
