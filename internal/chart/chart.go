// Package chart renders waterfall bars to SVG or PNG with gonum/plot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lmdi-explainer/lmdi-go/internal/format"
	"github.com/lmdi-explainer/lmdi-go/internal/waterfall"
)

// Image formats accepted by Render.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ErrNoBars is returned when there is nothing to draw.
var ErrNoBars = errors.New("chart: no bars")

// Options controls the rendered image.
type Options struct {
	Title string
	// Width and Height in points. Zero picks 720x360.
	Width, Height float64
	// Format is "svg" (default) or "png".
	Format string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 720
	}
	if o.Height <= 0 {
		o.Height = 360
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return o
}

// ContentType returns the MIME type for an image format.
func ContentType(imgFormat string) string {
	switch imgFormat {
	case FormatPNG:
		return "image/png"
	default:
		return "image/svg+xml"
	}
}

// Render draws bars as a waterfall. Each bar is a transparent spacer of
// height Base with the coloured bar stacked on it.
func Render(bars []waterfall.Bar, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Format != FormatSVG && opts.Format != FormatPNG {
		return nil, fmt.Errorf("chart: unsupported format %q", opts.Format)
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.Y.Tick.Marker = plot.TickerFunc(compactTicks)
	p.Add(plotter.NewGrid())

	width := vg.Points(opts.Width * 0.6 / float64(len(bars)))
	names := make([]string, len(bars))
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(bars)),
		Labels: make([]string, len(bars)),
	}
	for i, b := range bars {
		names[i] = b.Name

		spacer, err := plotter.NewBarChart(plotter.Values{b.Base}, width)
		if err != nil {
			return nil, fmt.Errorf("chart: bar %q: %w", b.Name, err)
		}
		spacer.XMin = float64(i)
		spacer.Color = color.Transparent
		spacer.LineStyle.Width = 0

		visible, err := plotter.NewBarChart(plotter.Values{b.Height}, width)
		if err != nil {
			return nil, fmt.Errorf("chart: bar %q: %w", b.Name, err)
		}
		visible.XMin = float64(i)
		visible.Color = parseHex(b.Color)
		visible.LineStyle.Width = 0
		visible.StackOn(spacer)

		p.Add(spacer, visible)

		labels.XYs[i] = plotter.XY{X: float64(i), Y: b.Top()}
		labels.Labels[i] = format.Compact(b.DisplayValue)
	}
	p.NominalX(names...)

	lo, hi := waterfall.Extent(bars)
	pad := (hi - lo) * 0.08
	p.Y.Min = lo
	if lo < 0 {
		p.Y.Min = lo - pad
	}
	p.Y.Max = hi + pad

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("chart: labels: %w", err)
	}
	p.Add(valueLabels)

	wt, err := p.WriterTo(vg.Points(opts.Width), vg.Points(opts.Height), opts.Format)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: write %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}

func compactTicks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = format.Compact(ticks[i].Value)
		}
	}
	return ticks
}

// parseHex reads #rgb or #rrggbb. Anything else is a neutral grey.
func parseHex(s string) color.Color {
	grey := color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
