package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ternhq/tern/pkg/storage"
)

func newHistoryCommand() *Command {
	return &Command{
		Name:        "history",
		Description: "List the stored versions of a contract",
		Flags:       flag.NewFlagSet("history", flag.ExitOnError),
		Run:         runHistory,
	}
}

func runHistory(args []string) error {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	registry := flags.String("registry", "http://localhost:8080", "Registry URL")
	contract := flags.String("contract", "", "Contract name (required)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return history(*registry, *contract, os.Stdout)
}

func history(registry, contract string, out io.Writer) error {
	if contract == "" {
		return fmt.Errorf("--contract is required")
	}

	url := fmt.Sprintf("%s/api/v1/contracts/%s/versions", registry, contract)
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("querying registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("contract not found: %s", contract)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("registry error (%s): %s", resp.Status, detail)
	}

	var listed struct {
		Contract string             `json:"contract"`
		Versions []*storage.Version `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Fprintf(out, "%-16s %-10s %-18s %s\n", "VERSION", "FORMAT", "HASH", "CREATED")
	for _, v := range listed.Versions {
		fmt.Fprintf(out, "%-16s %-10s %-18s %s\n",
			v.Version, v.Format, v.Hash, v.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
