package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/born-ml/attend/attention"
	"github.com/born-ml/attend/backend/cpu"
	"github.com/born-ml/attend/internal/config"
	"github.com/born-ml/attend/nn"
	"github.com/born-ml/attend/tensor"
)

type benchOptions struct {
	batch, length, iters int
	quiet                bool
}

func benchCmd(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	configPath := fs.String("config", "", "layer YAML file (default: dot attention, width 32)")
	var opts benchOptions
	fs.IntVar(&opts.batch, "batch", 8, "batch size")
	fs.IntVar(&opts.length, "len", 64, "sequence length of source and target")
	fs.IntVar(&opts.iters, "iters", 100, "number of forward passes")
	fs.BoolVar(&opts.quiet, "quiet", false, "hide the progress bar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.batch <= 0 || opts.length <= 0 || opts.iters <= 0 {
		return errors.New("bench: -batch, -len and -iters must be positive")
	}

	lf, err := loadLayer(*configPath)
	if err != nil {
		return err
	}
	if gpu := openWebGPU(lf); gpu != nil {
		defer gpu.Release()
		return bench(os.Stdout, gpu, lf, opts)
	}
	return bench(os.Stdout, cpu.New(), lf, opts)
}

// randomLengthMask returns a [batch, length, 1] mask whose rows have random
// valid lengths in [1, length].
func randomLengthMask[B tensor.Backend](backend B, rng *rand.Rand, batch, length int) (*tensor.Tensor[float32, B], error) {
	data := make([]float32, batch*length)
	for b := 0; b < batch; b++ {
		n := 1 + rng.Intn(length)
		for i := 0; i < n; i++ {
			data[b*length+i] = 1
		}
	}
	return tensor.FromSlice(data, tensor.Shape{batch, length, 1}, backend)
}

func bench[B tensor.Backend](w io.Writer, backend B, lf config.LayerFile, opts benchOptions) error {
	rng := rand.New(rand.NewSource(lf.Seed)) //nolint:gosec // G404: reproducible inputs.
	layer, err := attention.NewLayer(lf.Kind, lf.Spec(), backend, attention.WithRand(rng), attention.WithName("bench"))
	if err != nil {
		return err
	}

	src := tensor.Uniform[float32](tensor.Shape{opts.batch, opts.length, lf.SrcDim}, -1, 1, rng, backend)
	trg := tensor.Uniform[float32](tensor.Shape{opts.batch, opts.length, lf.TrgDim}, -1, 1, rng, backend)
	srcMask, err := randomLengthMask(backend, rng, opts.batch, opts.length)
	if err != nil {
		return err
	}
	trgMask, err := randomLengthMask(backend, rng, opts.batch, opts.length)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !opts.quiet {
		bar = progressbar.NewOptions(opts.iters,
			progressbar.OptionSetDescription(fmt.Sprintf("%s/%s", layer.Kind(), lf.ScoreType)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("passes"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish(),
		)
	}

	var outBytes int
	start := time.Now()
	for i := 0; i < opts.iters; i++ {
		out, _, err := layer.Forward(src, trg, srcMask, trgMask)
		if err != nil {
			return errors.Wrapf(err, "forward pass %d", i)
		}
		outBytes = out.NumElements() * 4
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	elapsed := time.Since(start)
	if bar != nil {
		_ = bar.Finish()
	}
	klog.V(1).Infof("bench finished %d passes in %s", opts.iters, elapsed)

	params := layer.Parameters()
	perPass := elapsed / time.Duration(opts.iters)
	fmt.Fprintf(w, "layer:       %s (%s) on %s\n", layer.Kind(), lf.ScoreType, backend.Name())
	fmt.Fprintf(w, "parameters:  %s (%s)\n", humanize.Comma(int64(nn.NumElements(params))),
		humanize.Bytes(uint64(nn.ByteSize(params)))) //nolint:gosec // G115: sizes are non-negative.
	fmt.Fprintf(w, "input:       batch %d, length %d\n", opts.batch, opts.length)
	fmt.Fprintf(w, "output:      %s per pass\n", humanize.Bytes(uint64(outBytes))) //nolint:gosec // G115: sizes are non-negative.
	fmt.Fprintf(w, "passes:      %s in %s\n", humanize.Comma(int64(opts.iters)), elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "per pass:    %s\n", perPass)
	fmt.Fprintf(w, "throughput:  %s sequences/s\n",
		humanize.CommafWithDigits(float64(opts.batch*opts.iters)/elapsed.Seconds(), 1))
	return nil
}
