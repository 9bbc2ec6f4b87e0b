package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/born-ml/attend/attention"
)

func variantsCmd(args []string) error {
	fs := flag.NewFlagSet("variants", flag.ExitOnError)
	src := fs.Int("src", 64, "source feature width")
	trg := fs.Int("trg", 64, "target feature width")
	att := fs.Int("att", 32, "hidden width of the nonlinear variants")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return printVariants(os.Stdout, attention.Dims{Src: *src, Trg: *trg, Att: *att})
}

// printVariants writes one row per score type. Variants that cannot be
// built for dims show the reason instead of a parameter count.
func printVariants(w io.Writer, dims attention.Dims) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SCORE TYPE\tPARAMETERS\tELEMENTS\n")
	for _, st := range attention.ScoreTypes() {
		cfg := attention.Config{ScoreType: st, SrcDim: dims.Src, TrgDim: dims.Trg, AttDim: dims.Att}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(tw, "%s\t-\t%v\n", st, err)
			continue
		}

		names := st.ParamNames()
		shapes := st.ParamShapes(dims)
		parts := make([]string, len(names))
		total := 0
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s%v", name, []int(shapes[i]))
			total += shapes[i].NumElements()
		}
		params := strings.Join(parts, " ")
		if params == "" {
			params = "(none)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", st, params, humanize.Comma(int64(total)))
	}
	return tw.Flush()
}
