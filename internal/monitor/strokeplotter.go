package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/courtside-data/stroke.report/internal/swing"
)

// StrokePlotter accumulates per-stroke data over a session and renders
// summary plots after the run. It implements swing.StrokeSink; Sample
// cost per stroke is a few appends, rendering happens only in Flush.
type StrokePlotter struct {
	mu      sync.Mutex
	scores  plotter.XYs
	quality plotter.XYs
	contact plotter.XYs
}

// NewStrokePlotter creates an empty plotter.
func NewStrokePlotter() *StrokePlotter {
	return &StrokePlotter{}
}

// HandleStroke records one stroke's plottable values.
func (sp *StrokePlotter) HandleStroke(ev *swing.StrokeEvent) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	x := float64(len(sp.scores) + 1)
	sp.scores = append(sp.scores, plotter.XY{X: x, Y: ev.FinalScore})
	sp.quality = append(sp.quality, plotter.XY{X: x, Y: ev.Quality.Overall})
	if ev.Contact.X != 0 || ev.Contact.Y != 0 {
		sp.contact = append(sp.contact, plotter.XY{X: ev.Contact.X, Y: ev.Contact.Y})
	}
	return nil
}

// Flush renders the accumulated session plots into outputDir. With no
// strokes recorded it is a no-op.
func (sp *StrokePlotter) Flush(outputDir string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if len(sp.scores) == 0 {
		return nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := sp.renderScoreTrend(filepath.Join(outputDir, "score_trend.png")); err != nil {
		return err
	}
	if len(sp.contact) >= 2 {
		if err := sp.renderContactScatter(filepath.Join(outputDir, "contact_scatter.png")); err != nil {
			return err
		}
	}
	return nil
}

func (sp *StrokePlotter) renderScoreTrend(path string) error {
	p := plot.New()
	p.Title.Text = "Stroke Scores"
	p.X.Label.Text = "stroke"
	p.Y.Label.Text = "score"
	p.Y.Min, p.Y.Max = 0, 100

	final, err := plotter.NewLine(sp.scores)
	if err != nil {
		return fmt.Errorf("build final-score line: %w", err)
	}
	quality, err := plotter.NewLine(sp.quality)
	if err != nil {
		return fmt.Errorf("build quality line: %w", err)
	}
	quality.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(final, quality, plotter.NewGrid())
	p.Legend.Add("final", final)
	p.Legend.Add("quality", quality)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save score trend: %w", err)
	}
	return nil
}

func (sp *StrokePlotter) renderContactScatter(path string) error {
	p := plot.New()
	p.Title.Text = "Contact Points"
	p.X.Label.Text = "x (image)"
	p.Y.Label.Text = "y (image)"
	// Image Y grows downward; invert so up on the plot is up on court.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	scatter, err := plotter.NewScatter(sp.contact)
	if err != nil {
		return fmt.Errorf("build contact scatter: %w", err)
	}
	p.Add(scatter, plotter.NewGrid())

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save contact scatter: %w", err)
	}
	return nil
}
