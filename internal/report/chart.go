package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"news-backtester/internal/models"
)

// RenderEquityChart renders a PNG line chart of the equity curve with the
// drawdown percentage as a secondary series. Returns raw PNG bytes.
func RenderEquityChart(curve []models.EquityPoint) ([]byte, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("need at least 2 equity points, got %d", len(curve))
	}

	xValues := make([]time.Time, len(curve))
	equityY := make([]float64, len(curve))
	drawdownY := make([]float64, len(curve))

	for i, p := range curve {
		xValues[i] = p.Date
		equityY[i] = p.Equity
		drawdownY[i] = p.DrawdownPct
	}

	equitySeries := chart.TimeSeries{
		Name: "Equity",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: equityY,
	}

	drawdownSeries := chart.TimeSeries{
		Name: "Drawdown %",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("dc2626"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		YAxis:   chart.YAxisSecondary,
		XValues: xValues,
		YValues: drawdownY,
	}

	graph := chart.Chart{
		Title:  "Backtest Equity",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			equitySeries,
			drawdownSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
