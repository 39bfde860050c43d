// Command import-content converts floor sketches into floor YAML files.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/veilrun/internal/importer"
	"github.com/cory-johannsen/veilrun/internal/importer/sketch"
)

func main() {
	format := flag.String("format", "sketch", "source format: sketch")
	sourceDir := flag.String("source", "", "path to source sketch directory")
	outputDir := flag.String("output", "", "path to output floor directory")
	flag.Parse()

	if *sourceDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content [-format sketch] -source <dir> -output <dir>")
		os.Exit(1)
	}

	var src importer.Source
	switch *format {
	case "sketch":
		src = sketch.NewSource()
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: sketch)\n", *format)
		os.Exit(1)
	}

	start := time.Now()
	imp := importer.New(src, os.Stdout)
	if err := imp.Run(*sourceDir, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
