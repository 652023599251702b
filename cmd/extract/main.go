// Command extract converts compressor telemetry PDFs into a single XLSX
// workbook, one sheet per compressor.
//
// Usage:
//
//	extract input.pdf
//	extract file1.pdf file2.pdf -o combined.xlsx
//	extract -d ./bundles -o combined.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/enerflow/compresor-report/internal/archive"
	"github.com/enerflow/compresor-report/internal/extract"
	"github.com/enerflow/compresor-report/internal/logging"
	"github.com/enerflow/compresor-report/internal/workbook"
)

func main() {
	var (
		dir      = flag.String("d", "", "process every PDF in this directory")
		output   = flag.String("o", "", "output XLSX path (required for multiple PDFs)")
		batch    = flag.Int("batch", workbook.DefaultBatchSize, "records buffered per sheet before a flush")
		rowLimit = flag.Int("rowlimit", workbook.MaxSheetRows, "max rows per sheet, header included")
		evict    = flag.Int("evict", extract.DefaultEvictInterval, "pages between page-cache evictions")
		logLevel = flag.String("log", "warn", "log level: debug, info, warn, error")
		quiet    = flag.Bool("q", false, "suppress per-document progress")
	)
	flag.Parse()

	logging.Setup(*logLevel, "text")

	if err := run(*dir, flag.Args(), *output, *batch, *rowLimit, *evict, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, args []string, output string, batch, rowLimit, evict int, quiet bool) error {
	paths, err := inputPaths(dir, args)
	if err != nil {
		return err
	}

	outPath, err := outputPath(output, paths)
	if err != nil {
		return err
	}

	docs := make([]extract.DocumentSource, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, extract.FileSource{Path: p})
	}

	writer, err := workbook.NewWriter(batch, rowLimit)
	if err != nil {
		return err
	}
	defer writer.Close()

	fmt.Printf("Processing %d PDF file(s)...\n", len(docs))
	fmt.Printf("Output file: %s\n\n", outPath)

	var progress extract.ProgressFunc
	if !quiet {
		progress = func(done, total int, res extract.DocumentResult) {
			switch res.Status {
			case extract.StatusSuccess:
				fmt.Printf("[%d/%d] %s → %s: %d pages, %d rows\n",
					done, total, res.Name, res.Key, res.Pages, res.Rows)
			default:
				fmt.Printf("[%d/%d] %s: FAILED: %s\n", done, total, res.Name, res.Error)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, runErr := extract.Run(ctx, docs, writer, extract.Options{
		EvictEvery: evict,
		Progress:   progress,
	})
	if rep == nil {
		return runErr
	}

	if err := writer.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	printSummary(rep, outPath)

	if runErr != nil {
		return runErr
	}
	if rep.Succeeded == 0 {
		return fmt.Errorf("no documents processed successfully")
	}
	return nil
}

// inputPaths resolves the PDF list from the -d directory or positional
// arguments.
func inputPaths(dir string, args []string) ([]string, error) {
	if dir != "" {
		paths, err := archive.FindPDFs(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no PDF files found in %s", dir)
		}
		return paths, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("no input PDFs; pass file paths or -d <directory>")
	}
	for _, p := range args {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("input not found: %s", p)
		}
	}
	return args, nil
}

// outputPath picks the workbook destination: explicit -o, or the single
// input's name with an .xlsx extension.
func outputPath(output string, inputs []string) (string, error) {
	if output != "" {
		return output, nil
	}
	if len(inputs) > 1 {
		return "", fmt.Errorf("-o is required when processing multiple PDFs")
	}
	in := inputs[0]
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".xlsx", nil
}

func printSummary(rep *extract.Report, outPath string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("PROCESSING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total PDFs processed: %d\n", len(rep.Documents))
	fmt.Printf("  Successful: %d\n", rep.Succeeded)
	fmt.Printf("  Failed: %d\n", rep.Failed)
	fmt.Printf("Total rows written: %d\n", rep.TotalRows)
	fmt.Printf("Skipped lines: %d\n", rep.SkippedLines)
	fmt.Printf("Total processing time: %s\n", rep.Elapsed.Round(10*time.Millisecond))
	if rep.Pages.Pages > 0 {
		fmt.Printf("Pages extracted: %d (avg %s/page, slowest page %d at %s)\n",
			rep.Pages.Pages, rep.Pages.Avg().Round(time.Millisecond),
			rep.Pages.SlowestPage, rep.Pages.Max.Round(time.Millisecond))
	}
	fmt.Printf("Output file: %s\n", outPath)

	if len(rep.RowsByKey) > 0 {
		keys := make([]string, 0, len(rep.RowsByKey))
		for key := range rep.RowsByKey {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Println()
		fmt.Println("Rows per compressor:")
		for _, key := range keys {
			fmt.Printf("  %s: %d rows\n", key, rep.RowsByKey[key])
		}
	}

	var failed []extract.DocumentResult
	for _, res := range rep.Documents {
		if res.Status == extract.StatusFailed {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, res := range failed {
			fmt.Printf("  - %s: %s\n", res.Name, res.Error)
		}
	}

	if len(rep.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, warn := range rep.Warnings {
			fmt.Printf("  - %s\n", warn)
		}
	}
}
