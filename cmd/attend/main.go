// Package main provides the attend CLI: it lists the attention score
// variants, aligns a passage against a question with a configured layer and
// benchmarks forward passes.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "attend %s - attention scoring engine\n\n", version)
	fmt.Fprintln(out, "Usage: attend [klog flags] <command> [flags]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  variants   List score types with their parameter shapes")
	fmt.Fprintln(out, "  run        Align a passage against a question")
	fmt.Fprintln(out, "  bench      Time repeated forward passes")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Logging flags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "variants":
		err = variantsCmd(args[1:])
	case "run":
		err = runCmd(args[1:])
	case "bench":
		err = benchCmd(args[1:])
	case "version":
		fmt.Printf("attend %s\n", version)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "attend: unknown command %q\n\n", args[0])
		usage()
		klog.Flush()
		os.Exit(2)
	}
	if err != nil {
		klog.Flush()
		fmt.Fprintf(os.Stderr, "attend: %v\n", err)
		os.Exit(1)
	}
}
