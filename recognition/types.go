package recognition

import (
	"encoding/json"
	"fmt"
	"math"
)

// Hit is one entry of the classifier's top-K output: a class index with its
// softmax confidence.
type Hit struct {
	ClassIndex int     `json:"classIndex"`
	Confidence float64 `json:"confidence"`
}

// Candidate is a single LaTeX command option for a symbol, weighted by how
// mathematically specific the command is.
type Candidate struct {
	Command     string  `json:"command"`
	Priority    float64 `json:"math_priority"`
	Context     string  `json:"context,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Suggestion is one row of the final ranked output.
type Suggestion struct {
	SymbolID      int     `json:"symbolId"`
	Command       string  `json:"command"`
	CombinedScore float64 `json:"combinedScore"`
	Confidence    float64 `json:"confidence"`
	Priority      float64 `json:"priority"`
	Context       string  `json:"context,omitempty"`
	Description   string  `json:"description,omitempty"`
	LastChosen    bool    `json:"lastChosen"`
}

// Result wraps one recognition pass. Generation increases monotonically per
// service call so callers juggling overlapping requests can drop results
// that were superseded while in flight.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Generation  uint64       `json:"generation"`
}

// NormalizerConfig controls the raster-to-tensor transform.
type NormalizerConfig struct {
	// Size is the tensor edge length S; output is always Size x Size.
	Size int `json:"size"`
	// Margin is the padding in pixels added around the foreground
	// bounding box before cropping.
	Margin int `json:"margin"`
	// ForegroundThreshold marks a pixel as foreground when any color
	// channel falls below this 0-255 brightness.
	ForegroundThreshold int `json:"foregroundThreshold"`
	// DilationRadius is the Chebyshev radius used to thicken strokes
	// after inversion.
	DilationRadius int `json:"dilationRadius"`
}

// ClassifierConfig wraps the configuration for the ORT-backed classifier.
type ClassifierConfig struct {
	OrtDLL     string `json:"ortDll"`
	ModelPath  string `json:"modelPath"`
	InputName  string `json:"inputName"`
	OutputName string `json:"outputName"`
	ClassCount int    `json:"classCount"`
}

// MappingConfig names the external mapping sources, tried in order.
type MappingConfig struct {
	FullPath    string `json:"fullPath"`
	IndexPath   string `json:"indexPath"`
	SimplePath  string `json:"simplePath"`
	TabularPath string `json:"tabularPath"`
	// MaxCandidates caps how many candidates a class lookup returns.
	MaxCandidates int `json:"maxCandidates"`
}

// RankingConfig controls the score combination and output shape.
type RankingConfig struct {
	VisionWeight   float64 `json:"visionWeight"`
	MathWeight     float64 `json:"mathWeight"`
	TopKSymbols    int     `json:"topKSymbols"`
	MaxSuggestions int     `json:"maxSuggestions"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Normalizer NormalizerConfig `json:"normalizer"`
	Classifier ClassifierConfig `json:"classifier"`
	Mapping    MappingConfig    `json:"mapping"`
	Ranking    RankingConfig    `json:"ranking"`
	PrefsPath  string           `json:"prefsPath"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Normalizer.Size <= 0 {
		c.Normalizer.Size = 64
	}
	if c.Normalizer.Margin <= 0 {
		c.Normalizer.Margin = 4
	}
	if c.Normalizer.ForegroundThreshold <= 0 {
		c.Normalizer.ForegroundThreshold = 240
	}
	if c.Normalizer.DilationRadius <= 0 {
		c.Normalizer.DilationRadius = 2
	}
	if c.Classifier.InputName == "" {
		c.Classifier.InputName = "input"
	}
	if c.Classifier.OutputName == "" {
		c.Classifier.OutputName = "output"
	}
	if c.Classifier.ClassCount <= 0 {
		c.Classifier.ClassCount = 369
	}
	if c.Mapping.MaxCandidates <= 0 {
		c.Mapping.MaxCandidates = 3
	}
	if c.Ranking.VisionWeight == 0 && c.Ranking.MathWeight == 0 {
		c.Ranking.VisionWeight = 0.6
		c.Ranking.MathWeight = 0.4
	}
	if c.Ranking.TopKSymbols <= 0 {
		c.Ranking.TopKSymbols = 5
	}
	if c.Ranking.MaxSuggestions <= 0 {
		c.Ranking.MaxSuggestions = 5
	}
}

// Validate rejects weight combinations that would skew the combined score.
func (c Config) Validate() error {
	total := c.Ranking.VisionWeight + c.Ranking.MathWeight
	if math.Abs(total-1.0) > 1e-6 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.6f (vision=%g math=%g)",
			total, c.Ranking.VisionWeight, c.Ranking.MathWeight)
	}
	if c.Ranking.VisionWeight < 0 || c.Ranking.MathWeight < 0 {
		return fmt.Errorf("ranking weights must be non-negative (vision=%g math=%g)",
			c.Ranking.VisionWeight, c.Ranking.MathWeight)
	}
	return nil
}
