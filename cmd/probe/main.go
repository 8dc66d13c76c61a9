// Command probe prints the capabilities of the running machine: which
// external transcoder was discovered, which output formats are available,
// and, for any source files given, what each source can be converted to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"media-convert/internal/startup"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional)")
	flag.Parse()

	ctx := context.Background()
	env, err := startup.Initialize(ctx, *configPath)
	if err != nil {
		startup.LogFatal("Initialization failed: %v", err)
	}
	defer env.Close()

	if path, err := env.Finder.Find(); err == nil {
		fmt.Printf("External transcoder: %s\n\n", path)
	} else {
		fmt.Printf("External transcoder: not found\n\n")
	}

	printFormats(ctx, env)

	for _, source := range flag.Args() {
		printReport(ctx, env, source)
	}
}

func printFormats(ctx context.Context, env *startup.Environment) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEXT\tKIND\tBACKENDS")
	for _, f := range env.Catalog.OutputFormats(ctx) {
		var backends []string
		if !f.RequiresExternal() {
			backends = append(backends, "primary")
		}
		if f.ExternalSupported {
			backends = append(backends, "external")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.NormalizedID(), f.DisplayName, f.Extension, f.Kind, strings.Join(backends, ","))
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func printReport(ctx context.Context, env *startup.Environment, source string) {
	fmt.Printf("\n%s:\n", source)
	report, err := env.Analyzer.Analyze(ctx, source)
	if err != nil {
		fmt.Printf("  analysis failed: %v\n", err)
		return
	}
	if report.Err != nil {
		fmt.Printf("  unsupported: %v\n", report.Err)
		return
	}

	fmt.Printf("  kind: %s\n", report.Kind)
	if report.FrameCount > 0 {
		fmt.Printf("  frames: %d  alpha: %v\n", report.FrameCount, report.HasAlpha)
	}
	if report.Warning != "" {
		fmt.Printf("  warning: %s\n", report.Warning)
	}

	ids := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		ids = append(ids, f.NormalizedID())
	}
	fmt.Printf("  convertible to: %s\n", strings.Join(ids, ", "))
}
