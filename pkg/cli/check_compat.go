package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ternhq/tern/pkg/compatibility"
	"github.com/ternhq/tern/pkg/report"
)

func newCheckCompatCommand() *Command {
	cmd := &Command{
		Name:        "check-compat",
		Description: "Check compatibility between two contract versions",
		Flags:       flag.NewFlagSet("check-compat", flag.ExitOnError),
		Run:         runCheckCompat,
	}
	return cmd
}

func runCheckCompat(args []string) error {
	flags := flag.NewFlagSet("check-compat", flag.ExitOnError)
	oldPath := flags.String("old", "", "File containing the old contract (required)")
	newPath := flags.String("new", "", "File containing the new contract (required)")
	format := flags.String("format", "", "Contract format: protobuf, avro, openapi, graphql, jsonschema, sql (default: inferred from extension)")
	mode := flags.String("mode", "BACKWARD", "Compatibility mode: NONE, BACKWARD, FORWARD, FULL, or a _TRANSITIVE variant")
	output := flags.String("output", "text", "Output format: text, json, markdown")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return checkCompat(*oldPath, *newPath, *format, *mode, *output, os.Stdout)
}

func checkCompat(oldPath, newPath, format, modeName, output string, out io.Writer) error {
	if oldPath == "" || newPath == "" {
		return fmt.Errorf("both --old and --new are required")
	}

	outputFormat, err := report.ParseFormat(output)
	if err != nil {
		return err
	}
	mode, err := compatibility.ParseMode(modeName)
	if err != nil {
		return err
	}

	oldModel, _, err := loadModel(oldPath, format)
	if err != nil {
		return err
	}
	newModel, _, err := loadModel(newPath, format)
	if err != nil {
		return err
	}

	result, err := compatibility.NewEngine().Compare(oldModel, newModel)
	if err != nil {
		return err
	}

	rendered, err := report.Render(result, outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rendered)

	if err := compatibility.Check(result, mode); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	return nil
}
