package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/parallel"
)

type demoOptions struct {
	points   int
	optimize string
	metrics  bool
}

func newDemoCmd(root *options) *cobra.Command {
	d := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Record a sample function, optimize it and evaluate its gradient",
		Long: `demo records

  y = (x0 - 1)^2 + 100 (x1 - x0^2)^2 + min(x0, x1) + (x0 - 1)^2

optimizes the tape, then evaluates y and its gradient at a grid of points
on the configured number of workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), root, d)
		},
	}
	cmd.Flags().IntVar(&d.points, "points", 8, "number of evaluation points")
	cmd.Flags().StringVar(&d.optimize, "optimize", "", "optimizer options, default from config")
	cmd.Flags().BoolVar(&d.metrics, "metrics", false, "print engine counters")
	return cmd
}

func record() (x, y []autodiff.AD[float64]) {
	x = autodiff.Independent([]float64{0.5, 1.5})
	one := autodiff.Const(1.0)
	a := x[0].Sub(one)
	b := x[1].Sub(x[0].Mul(x[0]))
	lo := autodiff.CondExp(autodiff.Lt, x[0], x[1], x[0], x[1])
	// The second (x0 - 1)^2 is recorded again and removed by the optimizer.
	again := x[0].Sub(one)
	sum := a.Mul(a).Add(autodiff.Const(100.0).Mul(b.Mul(b))).Add(lo).Add(again.Mul(again))
	return x, []autodiff.AD[float64]{sum}
}

func runDemo(ctx context.Context, out io.Writer, root *options, d *demoOptions) error {
	if d.points < 1 {
		return errors.Errorf("demo: --points must be positive, got %d", d.points)
	}
	workers := root.cfg.Arena.Workers
	if err := autodiff.Setup(workers); err != nil {
		return err
	}

	x, y := record()
	f := autodiff.NewFunction(x, y, autodiff.WithConfig(root.cfg))
	defer f.Close()
	fmt.Fprintf(out, "recorded:  %d operators, %d variables, %d parameters\n", f.SizeOp(), f.SizeVar(), f.SizePar())
	f.Optimize(d.optimize)
	fmt.Fprintf(out, "optimized: %d operators, %d variables, %d parameters\n", f.SizeOp(), f.SizeVar(), f.SizePar())

	xs := make([][]float64, d.points)
	for i := range xs {
		t := float64(i) / float64(d.points)
		xs[i] = []float64{2*t - 1, 1 - t}
	}
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = workers
	cfg.Enabled = workers > 1

	ys, err := parallel.Forward(ctx, f, xs, cfg)
	if err != nil {
		return err
	}
	gs, err := parallel.Gradient(ctx, f, xs, []float64{1}, cfg)
	if err != nil {
		return err
	}
	for i := range xs {
		fmt.Fprintf(out, "x=(% .4f, % .4f)  y=% .6f  dy=(% .6f, % .6f)\n",
			xs[i][0], xs[i][1], ys[i][0], gs[i][0], gs[i][1])
	}

	if d.metrics {
		return printMetrics(out)
	}
	return nil
}

func printMetrics(out io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "adtape_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			if lp := m.GetLabel(); len(lp) > 0 {
				labels := make([]string, len(lp))
				for i, l := range lp {
					labels[i] = fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
				}
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(out, "%s %g\n", name, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(out, "%s_count %d\n", name, m.GetHistogram().GetSampleCount())
			}
		}
	}
	return nil
}
