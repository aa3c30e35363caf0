package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ternhq/tern/pkg/diff"
)

func newDiffCommand() *Command {
	return &Command{
		Name:        "diff",
		Description: "Show the structural differences between two contract versions",
		Flags:       flag.NewFlagSet("diff", flag.ExitOnError),
		Run:         runDiff,
	}
}

func runDiff(args []string) error {
	flags := flag.NewFlagSet("diff", flag.ExitOnError)
	oldPath := flags.String("old", "", "File containing the old contract (required)")
	newPath := flags.String("new", "", "File containing the new contract (required)")
	format := flags.String("format", "", "Contract format (default: inferred from extension)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return runDiffFiles(*oldPath, *newPath, *format, os.Stdout)
}

func runDiffFiles(oldPath, newPath, format string, out io.Writer) error {
	if oldPath == "" || newPath == "" {
		return fmt.Errorf("both --old and --new are required")
	}

	oldModel, _, err := loadModel(oldPath, format)
	if err != nil {
		return err
	}
	newModel, _, err := loadModel(newPath, format)
	if err != nil {
		return err
	}

	changes := diff.New(oldModel.Format).Compare(oldModel, newModel)
	if len(changes) == 0 {
		fmt.Fprintln(out, "No differences.")
		return nil
	}

	for _, c := range changes {
		fmt.Fprintf(out, "%-20s %s", c.Kind, c.Path)
		if oldV, newV := c.OldValue(), c.NewValue(); oldV != "" || newV != "" {
			fmt.Fprintf(out, "  (%s => %s)", oldV, newV)
		}
		if c.Note != "" {
			fmt.Fprintf(out, "  [%s]", c.Note)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\n%d change(s)\n", len(changes))
	return nil
}
