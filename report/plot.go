package report

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/search"
)

// RetentionPlot builds a bar chart of percentage_reliable per grid cell.
func RetentionPlot(rows []search.SummaryRow) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, errors.New("no summary rows to plot")
	}
	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.PercentageReliable
		labels[i] = fmt.Sprintf("%d/%d", r.N, r.K)
	}

	p := plot.New()
	p.Title.Text = "Subsets holding up on validation"
	p.X.Label.Text = "n/k"
	p.Y.Label.Text = "reliable, %"
	p.Y.Min = 0
	p.Y.Max = 100

	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return nil, errors.Wrap(err, "retention bars")
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// PlotRetention renders the retention chart of rows as a PNG at path.
func PlotRetention(path string, rows []search.SummaryRow) error {
	p, err := RetentionPlot(rows)
	if err != nil {
		return err
	}
	width := vg.Length(len(rows))*vg.Points(28) + 2*vg.Inch
	wt, err := p.WriterTo(width, 4*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "retention plot")
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}
