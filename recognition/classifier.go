package recognition

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Classifier exposes the minimal surface required by the service layer.
// Implementations map a normalized tensor to one raw score per class.
type Classifier interface {
	Predict(ctx context.Context, t *Tensor) ([]float32, error)
	Classes() int
	Close() error
}

// OrtClassifier runs the exported symbol model through ONNX Runtime. The
// session is created once and reused; Run is serialized because ORT
// sessions are not assumed reentrant.
type OrtClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	cfg     ClassifierConfig
	size    int
}

// NewOrtClassifier initializes the ONNX Runtime environment and creates a
// session bound to fixed 1x1xSxS input and 1xC output tensors.
func NewOrtClassifier(cfg ClassifierConfig, tensorSize int) (*OrtClassifier, error) {
	full := Config{Classifier: cfg}
	full.ApplyDefaults()
	cfg = full.Classifier
	if tensorSize <= 0 {
		tensorSize = full.Normalizer.Size
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if cfg.OrtDLL != "" {
		ort.SetSharedLibraryPath(cfg.OrtDLL)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, int64(tensorSize), int64(tensorSize)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.ClassCount)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &OrtClassifier{
		session: session,
		input:   input,
		output:  output,
		cfg:     cfg,
		size:    tensorSize,
	}, nil
}

// Classes returns the configured class count C.
func (c *OrtClassifier) Classes() int {
	return c.cfg.ClassCount
}

// Predict copies the tensor into the session input, runs inference and
// returns a copy of the raw score vector.
func (c *OrtClassifier) Predict(ctx context.Context, t *Tensor) ([]float32, error) {
	if c == nil || c.session == nil {
		return nil, fmt.Errorf("session closed: %w", ErrClassifierUnavailable)
	}
	if t.Size != c.size || len(t.Data) != c.size*c.size {
		return nil, fmt.Errorf("tensor %dx%d, model expects %dx%d: %w",
			t.Size, t.Size, c.size, c.size, ErrDimensionMismatch)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.input.GetData(), t.Data)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("run model: %w: %v", ErrClassifierUnavailable, err)
	}
	raw := c.output.GetData()
	if len(raw) != c.cfg.ClassCount {
		return nil, fmt.Errorf("model produced %d scores, expected %d: %w",
			len(raw), c.cfg.ClassCount, ErrDimensionMismatch)
	}
	scores := make([]float32, len(raw))
	copy(scores, raw)
	return scores, nil
}

// Close releases ORT resources.
func (c *OrtClassifier) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	return nil
}

// StaticClassifier replays a fixed score vector. It backs the --scores CLI
// mode and keeps the pipeline testable without a model runtime.
type StaticClassifier struct {
	Scores []float32
}

// Predict returns a copy of the stored vector.
func (s *StaticClassifier) Predict(_ context.Context, _ *Tensor) ([]float32, error) {
	out := make([]float32, len(s.Scores))
	copy(out, s.Scores)
	return out, nil
}

// Classes returns the stored vector length.
func (s *StaticClassifier) Classes() int { return len(s.Scores) }

// Close is a no-op.
func (s *StaticClassifier) Close() error { return nil }
