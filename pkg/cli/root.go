package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
)

// ErrIncompatible marks a completed check whose verdict is negative. Callers
// map it to exit code 1, keeping exit code 2 for operational failures.
var ErrIncompatible = errors.New("contracts are incompatible")

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "tern",
		Description: "Tern - Contract Compatibility Checker",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("tern", flag.ExitOnError),
	}

	root.Subcommands["check-compat"] = newCheckCompatCommand()
	root.Subcommands["diff"] = newDiffCommand()
	root.Subcommands["push"] = newPushCommand()
	root.Subcommands["history"] = newHistoryCommand()
	root.Subcommands["batch-check"] = newBatchCheckCommand()
	root.Subcommands["watch"] = newWatchCommand()
	root.Subcommands["serve"] = newServeCommand()

	return root
}

// Execute runs the command
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
