package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ternhq/tern/pkg/storage"
)

func newPushCommand() *Command {
	return &Command{
		Name:        "push",
		Description: "Push a contract version to the registry",
		Flags:       flag.NewFlagSet("push", flag.ExitOnError),
		Run:         runPush,
	}
}

func runPush(args []string) error {
	flags := flag.NewFlagSet("push", flag.ExitOnError)
	registry := flags.String("registry", "http://localhost:8080", "Registry URL")
	contract := flags.String("contract", "", "Contract name (required)")
	version := flags.String("version", "", "Version, e.g. 1.2.0 (required)")
	format := flags.String("format", "", "Contract format (default: inferred from extension)")
	file := flags.String("file", "", "Contract file to push (required)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return push(*registry, *contract, *version, *format, *file, os.Stdout)
}

func push(registry, contract, version, format, file string, out io.Writer) error {
	if contract == "" || version == "" || file == "" {
		return fmt.Errorf("--contract, --version and --file are required")
	}

	detected, err := detectFormat(file, format)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	body, err := json.Marshal(map[string]string{
		"version": version,
		"format":  string(detected),
		"content": string(content),
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/contracts/%s/versions", registry, contract)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pushing to registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("registry rejected push (%s): %s", resp.Status, bytes.TrimSpace(detail))
	}

	var pushed storage.Version
	if err := json.NewDecoder(resp.Body).Decode(&pushed); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	fmt.Fprintf(out, "Pushed %s version %s (%s, hash %s)\n", contract, version, detected, pushed.Hash)
	return nil
}
