package chart

import (
	"bytes"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"gastos/internal/core"
)

// Renderer rasterizes chart slices to PNG.
type Renderer struct {
	Width  int
	Height int
}

// DefaultRenderer matches the image size the bot sends.
func DefaultRenderer() Renderer {
	return Renderer{Width: 640, Height: 480}
}

func values(slices []Slice) []gochart.Value {
	out := make([]gochart.Value, 0, len(slices))
	for _, s := range slices {
		out = append(out, gochart.Value{
			Value: s.Value.InexactFloat64(),
			Label: fmt.Sprintf("%s (%s)", s.Label, core.FormatAmount(s.Value)),
		})
	}
	return out
}

// Pie renders a pie chart, used for category breakdowns.
func (r Renderer) Pie(title string, slices []Slice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, ErrEmptyBreakdown
	}
	pie := gochart.PieChart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		Values: values(slices),
	}
	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Bar renders a bar chart, used for payment method breakdowns.
func (r Renderer) Bar(title string, slices []Slice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, ErrEmptyBreakdown
	}
	bar := gochart.BarChart{
		Title: title,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: 60,
		Bars:     values(slices),
	}
	var buf bytes.Buffer
	if err := bar.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
