// Package config loads and validates the JSON configuration consumed by the
// forward-models training entry point. The submission tool only inspects it to
// catch obvious mistakes before queue time is spent; the training program
// remains the owner of its semantics.
package config

import (
	"encoding/json"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// TrainingConfig mirrors the fields recognized by the training entry point.
// Unknown fields are preserved by the training program itself, so decoding
// here is deliberately lenient.
type TrainingConfig struct {
	IDPropPath     string   `json:"id_prop_path"`
	Prefix         string   `json:"prefix"`
	ModelName      string   `json:"model_name"`
	BatchSize      int      `json:"batch_size"`
	MaxLength      int      `json:"max_length"`
	NumEpochs      int      `json:"num_epochs"`
	LatentDim      int      `json:"latent_dim"`
	LearningRate   float64  `json:"learning_rate"`
	TestEachRun    bool     `json:"test_each_run"`
	IncludeStruct  bool     `json:"include_struct"`
	PretrainedPath string   `json:"pretrained_path"`
	SeedVal        int      `json:"seed_val"`
	NTrain         *int     `json:"n_train"`
	NVal           *int     `json:"n_val"`
	NTest          *int     `json:"n_test"`
	OutputDir      string   `json:"output_dir"`
	TrainRatio     *float64 `json:"train_ratio"`
	ValRatio       float64  `json:"val_ratio"`
	TestRatio      float64  `json:"test_ratio"`
	KeepDataOrder  bool     `json:"keep_data_order"`
	DescType       string   `json:"desc_type"`
	Convert        bool     `json:"convert"`
}

// Default returns a configuration with the training program's own defaults.
func Default() TrainingConfig {
	return TrainingConfig{
		IDPropPath:    "robo_desc.json.zip",
		Prefix:        "atomgpt_run",
		ModelName:     "gpt2",
		BatchSize:     16,
		MaxLength:     512,
		NumEpochs:     500,
		LatentDim:     1024,
		LearningRate:  1e-3,
		TestEachRun:   true,
		SeedVal:       42,
		OutputDir:     "out_temp",
		ValRatio:      0.1,
		TestRatio:     0.1,
		KeepDataOrder: true,
		DescType:      "desc_2",
	}
}

// Load reads the configuration file at path, applied on top of Default().
func Load(path string) (TrainingConfig, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not read config '%s'", path)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not decode config '%s'", path)
	}

	return cfg, nil
}

// Validate reports every problem found, not just the first one.
func (c TrainingConfig) Validate() error {
	var result *multierror.Error

	if c.ModelName == "" {
		result = multierror.Append(result, errors.New("model_name must not be empty"))
	}

	if c.BatchSize <= 0 {
		result = multierror.Append(result, errors.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}

	if c.MaxLength <= 0 {
		result = multierror.Append(result, errors.Errorf("max_length must be positive, got %d", c.MaxLength))
	}

	if c.NumEpochs <= 0 {
		result = multierror.Append(result, errors.Errorf("num_epochs must be positive, got %d", c.NumEpochs))
	}

	if c.LatentDim <= 0 {
		result = multierror.Append(result, errors.Errorf("latent_dim must be positive, got %d", c.LatentDim))
	}

	if c.LearningRate <= 0 {
		result = multierror.Append(result, errors.Errorf("learning_rate must be positive, got %g", c.LearningRate))
	}

	if c.ValRatio < 0 || c.ValRatio > 1 {
		result = multierror.Append(result, errors.Errorf("val_ratio must be within [0,1], got %g", c.ValRatio))
	}

	if c.TestRatio < 0 || c.TestRatio > 1 {
		result = multierror.Append(result, errors.Errorf("test_ratio must be within [0,1], got %g", c.TestRatio))
	}

	if c.TrainRatio != nil {
		if *c.TrainRatio <= 0 || *c.TrainRatio > 1 {
			result = multierror.Append(result, errors.Errorf("train_ratio must be within (0,1], got %g", *c.TrainRatio))
		} else if *c.TrainRatio+c.ValRatio+c.TestRatio > 1 {
			result = multierror.Append(result, errors.New("train_ratio, val_ratio and test_ratio must not sum over 1"))
		}
	}

	for name, n := range map[string]*int{"n_train": c.NTrain, "n_val": c.NVal, "n_test": c.NTest} {
		if n != nil && *n <= 0 {
			result = multierror.Append(result, errors.Errorf("%s must be positive, got %d", name, *n))
		}
	}

	return result.ErrorOrNil()
}
