package recognition

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Tensor is a single-channel Size x Size grid of float32 values in [-1, 1],
// laid out row-major. It is the only shape the classifier accepts.
type Tensor struct {
	Size int
	Data []float32
}

// At returns the value at column x, row y.
func (t *Tensor) At(x, y int) float32 {
	return t.Data[y*t.Size+x]
}

// Normalizer turns a captured stroke raster into a classifier-ready tensor.
// The transform is deterministic: the same raster always yields the same
// tensor, bit for bit.
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer constructs a normalizer; zero config fields get defaults.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	full := Config{Normalizer: cfg}
	full.ApplyDefaults()
	return &Normalizer{cfg: full.Normalizer}
}

// Normalize runs the full raster-to-tensor chain: foreground bounding box,
// padded crop, nearest-neighbor resize, grayscale, polarity inversion,
// dilation and [-1,1] scaling.
func (n *Normalizer) Normalize(img image.Image) (*Tensor, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("raster %dx%d: %w", bounds.Dx(), bounds.Dy(), ErrInvalidDimensions)
	}

	rgba := toRGBA(img)
	box, ok := n.foregroundBounds(rgba)
	if !ok {
		return nil, ErrEmptyInput
	}
	box = pad(box, n.cfg.Margin).Intersect(rgba.Bounds())

	scaled := image.NewRGBA(image.Rect(0, 0, n.cfg.Size, n.cfg.Size))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), rgba.SubImage(box), box, xdraw.Src, nil)

	gray := grayInverted(scaled)
	gray = dilate(gray, n.cfg.Size, n.cfg.DilationRadius)

	t := &Tensor{Size: n.cfg.Size, Data: make([]float32, len(gray))}
	for i, v := range gray {
		t.Data[i] = 2*(float32(v)/255) - 1
	}
	return t, nil
}

// foregroundBounds finds the minimal rectangle containing every pixel with
// at least one channel darker than the threshold.
func (n *Normalizer) foregroundBounds(img *image.RGBA) (image.Rectangle, bool) {
	threshold := uint8(n.cfg.ForegroundThreshold)
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R < threshold || c.G < threshold || c.B < threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func pad(r image.Rectangle, margin int) image.Rectangle {
	return image.Rect(r.Min.X-margin, r.Min.Y-margin, r.Max.X+margin, r.Max.Y+margin)
}

// toRGBA copies an arbitrary image into RGBA so pixel access is uniform.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// grayInverted converts to luminance bytes and flips polarity: the model is
// trained on bright strokes over a dark background, captures arrive the
// other way around.
func grayInverted(img *image.RGBA) []uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			lum := int(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B) + 0.5)
			if lum > 255 {
				lum = 255
			}
			out[y*w+x] = 255 - uint8(lum)
		}
	}
	return out
}

// dilate grows bright pixels (> 128) outward by the Chebyshev radius so thin
// strokes survive the downscale. Each output pixel takes the maximum of its
// neighborhood whenever that neighborhood contains foreground.
func dilate(src []uint8, size, radius int) []uint8 {
	if radius <= 0 {
		return src
	}
	out := make([]uint8, len(src))
	copy(out, src)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			best := src[y*size+x]
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= size {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= size {
						continue
					}
					if v := src[ny*size+nx]; v > 128 && v > best {
						best = v
					}
				}
			}
			out[y*size+x] = best
		}
	}
	return out
}
