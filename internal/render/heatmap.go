package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rohankatakam/defacto/internal/coupling"
	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

// DefaultClipMax is the default colour-scale ceiling.
const DefaultClipMax = 30

// Options controls Heatmap.
type Options struct {
	// Clip fixes the colour scale to [0, ClipMax]; larger cells saturate.
	// Without Clip the scale spans the matrix's observed minimum and maximum.
	Clip    bool
	ClipMax int
	// MaxLabels is the largest matrix that still gets file-name ticks.
	MaxLabels int
	Title     string
	// Open shows the written file in the desktop viewer.
	Open bool
}

// DefaultOptions clips at DefaultClipMax and labels up to 60 files.
func DefaultOptions() Options {
	return Options{Clip: true, ClipMax: DefaultClipMax, MaxLabels: 60}
}

var formats = map[string]bool{
	".pdf": true, ".png": true, ".svg": true, ".eps": true,
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

// grid adapts a coupling.Matrix to plotter.GridXYZ. Row 0 of the matrix is
// drawn at the top.
type grid struct {
	m    *coupling.Matrix
	n    int
	ceil float64
}

func (g grid) Dims() (c, r int) { return g.n, g.n }

func (g grid) Z(c, r int) float64 {
	v := float64(g.m.At(g.n-1-r, c))
	if g.ceil > 0 && v > g.ceil {
		return g.ceil
	}
	return v
}

func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }

// scale returns the colour range for m.
func scale(m *coupling.Matrix, opts Options) (lo, hi float64) {
	if opts.Clip {
		return 0, float64(opts.ClipMax)
	}
	lo, hi = float64(m.Min()), float64(m.Max())
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Heatmap draws m to path. The image format follows the file extension.
func Heatmap(m *coupling.Matrix, opts Options, path string, logger logrus.FieldLogger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	n, _ := m.Dims()
	if n == 0 {
		return apperrors.ErrEmptyMatrix
	}
	if opts.Clip && opts.ClipMax <= 0 {
		return apperrors.ValidationErrorf("clip ceiling must be > 0, got %d", opts.ClipMax)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return apperrors.ValidationErrorf("unsupported image format %q (use .pdf, .png, .svg, .eps, .jpg or .tif)", ext)
	}

	lo, hi := scale(m, opts)
	g := grid{m: m, n: n}
	if opts.Clip {
		g.ceil = hi
	}

	hm := plotter.NewHeatMap(g, palette.Heat(256, 1))
	hm.Min, hm.Max = lo, hi

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("De facto coupling (scale %g..%g)", lo, hi)
	}
	p.Add(hm)

	if opts.MaxLabels > 0 && n <= opts.MaxLabels {
		reg := m.Registry()
		xTicks := make([]plot.Tick, n)
		yTicks := make([]plot.Tick, n)
		for i := 0; i < n; i++ {
			xTicks[i] = plot.Tick{Value: float64(i), Label: reg.Path(i)}
			yTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: reg.Path(i)}
		}
		p.X.Tick.Marker = plot.ConstantTicks(xTicks)
		p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
		p.X.Tick.Label.Rotation = math.Pi / 2
		p.X.Tick.Label.Font.Size = vg.Points(6)
		p.Y.Tick.Label.Font.Size = vg.Points(6)
	} else {
		p.HideAxes()
	}

	side := sideLength(n)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.FileSystemErrorf(err, "create output directory for %s", path)
	}
	if err := p.Save(side, side, path); err != nil {
		return apperrors.RenderError(err, "save heatmap").WithContext("path", path)
	}

	logger.WithFields(logrus.Fields{
		"path":  path,
		"files": n,
		"min":   lo,
		"max":   hi,
	}).Info("heatmap written")

	if opts.Open {
		if err := browser.OpenFile(path); err != nil {
			logger.WithError(err).Warn("could not open heatmap viewer")
		}
	}
	return nil
}

// sideLength grows the canvas with the number of files, within limits.
func sideLength(n int) vg.Length {
	side := vg.Length(n) * 0.15 * vg.Inch
	switch {
	case side < 6*vg.Inch:
		return 6 * vg.Inch
	case side > 40*vg.Inch:
		return 40 * vg.Inch
	}
	return side
}
