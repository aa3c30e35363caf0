package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ternhq/tern/pkg/compatibility"
)

func newBatchCheckCommand() *Command {
	return &Command{
		Name:        "batch-check",
		Description: "Check every contract in a directory against its previous version",
		Flags:       flag.NewFlagSet("batch-check", flag.ExitOnError),
		Run:         runBatchCheck,
	}
}

func runBatchCheck(args []string) error {
	flags := flag.NewFlagSet("batch-check", flag.ExitOnError)
	oldDir := flags.String("old-dir", "", "Directory with the old contract files (required)")
	newDir := flags.String("new-dir", "", "Directory with the new contract files (required)")
	format := flags.String("format", "", "Contract format (default: inferred per file from extension)")
	mode := flags.String("mode", "BACKWARD", "Compatibility mode applied to every pair")
	concurrency := flags.Int("concurrency", 4, "Number of comparisons to run in parallel")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return batchCheck(context.Background(), *oldDir, *newDir, *format, *mode, *concurrency, os.Stdout)
}

type batchVerdict struct {
	name   string
	result *compatibility.Result
	err    error
}

func batchCheck(ctx context.Context, oldDir, newDir, format, modeName string, concurrency int, out io.Writer) error {
	if oldDir == "" || newDir == "" {
		return fmt.Errorf("both --old-dir and --new-dir are required")
	}
	mode, err := compatibility.ParseMode(modeName)
	if err != nil {
		return err
	}

	pairs, err := matchContractPairs(oldDir, newDir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no matching contract files in %s and %s", oldDir, newDir)
	}

	cache, err := newResultCache(256)
	if err != nil {
		return err
	}
	engine := compatibility.NewEngine()

	var mu sync.Mutex
	verdicts := make(map[string]batchVerdict, len(pairs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range pairs {
		name := name
		g.Go(func() error {
			result, err := cache.compare(engine,
				filepath.Join(oldDir, name), filepath.Join(newDir, name), format)
			mu.Lock()
			verdicts[name] = batchVerdict{name: name, result: result, err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	incompatible := 0
	failed := 0
	for _, name := range pairs {
		v := verdicts[name]
		switch {
		case v.err != nil:
			failed++
			fmt.Fprintf(out, "ERROR  %-30s %v\n", name, v.err)
		case compatibility.Check(v.result, mode) != nil:
			incompatible++
			fmt.Fprintf(out, "FAIL   %-30s level=%s changes=%d\n", name, v.result.Level, len(v.result.Findings))
		default:
			fmt.Fprintf(out, "OK     %-30s level=%s\n", name, v.result.Level)
		}
	}
	fmt.Fprintf(out, "\n%d checked, %d incompatible, %d errors\n", len(pairs), incompatible, failed)

	if failed > 0 {
		return fmt.Errorf("%d contract(s) could not be checked", failed)
	}
	if incompatible > 0 {
		return fmt.Errorf("%w: %d contract(s) violate %s", ErrIncompatible, incompatible, mode)
	}
	return nil
}

// matchContractPairs returns the sorted file names present in both
// directories. Files only on one side are additions or removals of whole
// contracts and are out of scope for a pairwise check.
func matchContractPairs(oldDir, newDir string) ([]string, error) {
	oldNames, err := contractFileNames(oldDir)
	if err != nil {
		return nil, err
	}
	newNames, err := contractFileNames(newDir)
	if err != nil {
		return nil, err
	}

	var pairs []string
	for name := range oldNames {
		if newNames[name] {
			pairs = append(pairs, name)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

func contractFileNames(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names[e.Name()] = true
	}
	return names, nil
}
