// Package export renders recorded rollouts and tuning runs as PNG figures:
// pole angles, control force, sliding surface, and the optimizer convergence
// curve.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"dipctl/internal/dynamo"
)

// SaveRunPlots renders the standard figure set for one rollout into outDir.
// sigma may be nil when no surface trace was recorded.
func SaveRunPlots(outDir string, result *dynamo.Result, sigma []float64) error {
	if result == nil || len(result.Times) == 0 {
		return fmt.Errorf("empty trajectory")
	}

	t := result.Times
	theta1 := column(result.States, dynamo.Theta1)
	theta2 := column(result.States, dynamo.Theta2)
	pos := column(result.States, dynamo.CartPos)

	if err := saveLinePlot(outDir, "link_angles.png", "Link Angles (0 = upright)", "time (s)", "theta (rad)",
		series{"theta1", t, theta1}, series{"theta2", t, theta2}); err != nil {
		return err
	}
	if err := saveLinePlot(outDir, "cart_position.png", "Cart Position x(t)", "time (s)", "x (m)",
		series{"x", t, pos}); err != nil {
		return err
	}

	// the trajectory records one more state sample than control samples
	if n := len(result.Controls); n > 0 && n <= len(t) {
		force := make([]float64, n)
		for i, c := range result.Controls {
			force[i] = c.Force()
		}
		if err := saveLinePlot(outDir, "control_force.png", "Control Force u(t)", "time (s)", "u (N)",
			series{"u", t[:n], force}); err != nil {
			return err
		}
	}

	if n := len(sigma); n > 0 && n <= len(t) {
		if err := saveLinePlot(outDir, "sliding_surface.png", "Sliding Surface sigma(t)", "time (s)", "sigma",
			series{"sigma", t[:n], sigma}); err != nil {
			return err
		}
	}
	return nil
}

// SaveConvergencePlot renders the optimizer's best-cost-per-iteration curve.
func SaveConvergencePlot(outDir string, history []float64) error {
	if len(history) == 0 {
		return fmt.Errorf("empty tuning history")
	}
	iters := make([]float64, len(history))
	for i := range iters {
		iters[i] = float64(i)
	}
	return saveLinePlot(outDir, "convergence.png", "Tuning Convergence", "iteration", "best cost",
		series{"best cost", iters, history})
}

func column(states []dynamo.State, idx int) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		if idx < len(x) {
			out[i] = x[idx]
		}
	}
	return out
}

type series struct {
	name   string
	xs, ys []float64
}

func saveLinePlot(outDir, filename, title, xlabel, ylabel string, lines ...series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	for i, s := range lines {
		if len(s.xs) != len(s.ys) || len(s.xs) == 0 {
			return fmt.Errorf("plot %s: series %s has invalid data", filename, s.name)
		}
		pts := make(plotter.XYs, len(s.xs))
		for j := range s.xs {
			pts[j].X = s.xs[j]
			pts[j].Y = s.ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2.0)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if len(lines) > 1 {
			p.Legend.Add(s.name, line)
		}
	}

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.TextStyle.Font.Size = vg.Points(13)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.Legend.Top = true
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
