package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/sanitize"
)

var (
	sanitizeMode string
	pushClarify  bool
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Run a raw model reply from stdin through the pipeline",
	Long: `Reads one raw model reply (JSON object, JSON string or plain text)
from stdin and prints the resulting response with its outcome.`,
	Args: cobra.NoArgs,
	RunE: runSanitize,
}

var enforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Apply the rewriting rules of a mode to text from stdin",
	Args:  cobra.NoArgs,
	RunE:  runEnforce,
}

type sanitizeOutput struct {
	Outcome  sanitize.Outcome  `json:"outcome"`
	Stage    sanitize.Stage    `json:"stage"`
	Reason   string            `json:"reason,omitempty"`
	Response sanitize.Response `json:"response"`
}

func runSanitize(cmd *cobra.Command, _ []string) error {
	mode, err := modeFlag()
	if err != nil {
		return err
	}
	in, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}

	s := sanitize.New(contract.NewTable(contract.Options{PushAllowClarify: pushClarify}))
	res := s.Sanitize(mode, sanitize.RawText(string(in)))

	out := sanitizeOutput{Outcome: res.Outcome, Stage: res.Stage, Response: res.Response}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runEnforce(cmd *cobra.Command, _ []string) error {
	mode, err := modeFlag()
	if err != nil {
		return err
	}
	in, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}

	c := contract.Default().Get(mode)
	fmt.Fprintln(cmd.OutOrStdout(), sanitize.EnforceText(c, string(in)))
	return nil
}

// modeFlag is strict: the HTTP API falls back to guide, the CLI does not.
func modeFlag() (contract.Mode, error) {
	m := contract.Mode(sanitizeMode)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", sanitizeMode)
	}
	return m, nil
}
