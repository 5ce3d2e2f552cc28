package recognition

import "errors"

// Sentinel errors for the recognition pipeline. Callers classify failures
// with errors.Is; stage functions wrap these with context via fmt.Errorf.
var (
	// ErrEmptyInput reports a raster without a single foreground pixel.
	// Recoverable: the caller should prompt for a redraw.
	ErrEmptyInput = errors.New("no foreground pixels in input")

	// ErrInvalidDimensions reports a degenerate raster (zero width or height).
	ErrInvalidDimensions = errors.New("invalid raster dimensions")

	// ErrDimensionMismatch reports a score vector whose length differs from
	// the configured class count. This is a configuration fault, not a
	// user-recoverable condition.
	ErrDimensionMismatch = errors.New("score vector length mismatch")

	// ErrMappingLoad reports that every external mapping source failed to
	// load. The store falls back to the built-in table instead of aborting.
	ErrMappingLoad = errors.New("all mapping sources failed")

	// ErrClassifierUnavailable reports a failed classifier call. The
	// pipeline yields no suggestions rather than crashing.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
