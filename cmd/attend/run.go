package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/born-ml/attend/attention"
	"github.com/born-ml/attend/backend/cpu"
	"github.com/born-ml/attend/internal/config"
	"github.com/born-ml/attend/nn"
	"github.com/born-ml/attend/tensor"
	"github.com/born-ml/attend/tokenizer"
)

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "layer YAML file (default: dot attention, width 32)")
	question := fs.String("question", "", "question text, the attention target")
	passage := fs.String("passage", "", "passage text, the attention source")
	tokName := fs.String("tokenizer", "whitespace", "whitespace, tiktoken or a tiktoken encoding name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lf, err := loadLayer(*configPath)
	if err != nil {
		return err
	}
	if *passage == "" || (*question == "" && !lf.IsSelf) {
		return errors.New("run: -passage and -question are required")
	}
	tok, err := tokenizer.New(*tokName)
	if err != nil {
		return err
	}

	if gpu := openWebGPU(lf); gpu != nil {
		defer gpu.Release()
		return align(os.Stdout, gpu, lf, tok, *question, *passage)
	}
	return align(os.Stdout, cpu.New(), lf, tok, *question, *passage)
}

// align runs the layer described by lf with the passage as source and the
// question as target, then prints how the passage attends to the question.
// Self-attention layers align the passage with itself.
func align[B tensor.Backend](w io.Writer, backend B, lf config.LayerFile, tok tokenizer.Tokenizer, question, passage string) error {
	pIDs, err := tok.Encode(passage)
	if err != nil {
		return errors.Wrap(err, "tokenize passage")
	}
	qIDs := pIDs
	if !lf.IsSelf {
		if qIDs, err = tok.Encode(question); err != nil {
			return errors.Wrap(err, "tokenize question")
		}
	}
	if len(pIDs) == 0 || len(qIDs) == 0 {
		return errors.New("run: passage and question must contain at least one token")
	}

	layer, err := attention.NewLayer(lf.Kind, lf.Spec(), backend,
		attention.WithRand(rand.New(rand.NewSource(lf.Seed))), //nolint:gosec // G404: reproducible init.
		attention.WithName("attend"))
	if err != nil {
		return err
	}

	src, srcMask, _, err := embedBatch(backend, tok, [][]int32{pIDs}, lf.SrcDim, 0)
	if err != nil {
		return err
	}
	trg, trgMask, _, err := embedBatch(backend, tok, [][]int32{qIDs}, lf.TrgDim, 0)
	if err != nil {
		return err
	}

	out, _, weights, err := layer.ForwardWithWeights(src, trg, srcMask, trgMask)
	if err != nil {
		return err
	}

	params := layer.Parameters()
	fmt.Fprintf(w, "layer %s (%s) on %s: %s parameters (%s), output %v\n\n",
		layer.Kind(), lf.ScoreType, backend.Name(),
		humanize.Comma(int64(nn.NumElements(params))),
		humanize.Bytes(uint64(nn.ByteSize(params))), //nolint:gosec // G115: sizes are non-negative.
		[]int(out.Shape()))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if layer.Kind() == attention.KindMaxAttention {
		// Max attention pools the passage: one weight per passage token.
		fmt.Fprintf(tw, "PASSAGE TOKEN\tWEIGHT\n")
		for i, id := range pIDs {
			fmt.Fprintf(tw, "%s\t%.4f\n", quote(tok.Piece(id)), weights.At(0, 0, i))
		}
		return tw.Flush()
	}

	fmt.Fprintf(tw, "PASSAGE TOKEN\tBEST QUESTION TOKEN\tWEIGHT\n")
	for i, id := range pIDs {
		best, bestW := -1, float32(0)
		for j := range qIDs {
			if wij := weights.At(0, i, j); best < 0 || wij > bestW {
				best, bestW = j, wij
			}
		}
		target := "-"
		if bestW > 0 {
			target = quote(tok.Piece(qIDs[best]))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\n", quote(tok.Piece(id)), target, bestW)
	}
	return tw.Flush()
}

func quote(piece string) string {
	return fmt.Sprintf("%q", strings.TrimSpace(piece))
}
