package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"envgate/internal/envdef"
	"envgate/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <payload-file>",
		Short: "Store an environment definition",
		Long: `Store an environment definition payload.

Reads a JSON or YAML payload (by file extension; "-" reads JSON from
stdin), derives its content-addressed ids and stores it. Saving the
same content twice is a no-op that reports the existing id.

Example:
  envgate save environment.yaml
  echo '{"image":"x:1"}' | envgate save -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	return cmd
}

func runSave(opts *SaveOptions, path string, cmd *cobra.Command) error {
	payload, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read payload", err)
	}

	def, err := envdef.New(payload)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to derive definition ids", err)
	}

	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	inserted, err := s.SaveDefinition(cmd.Context(), def)
	if err != nil {
		if store.IsShortIDCollision(err) {
			return WrapExitError(ExitFailure, "short id collision", err)
		}
		return WrapExitError(ExitCommandError, "save failed", err)
	}

	f := formatter(opts.RootOptions, cmd)
	if f.Format == "json" {
		return f.JSON(map[string]any{"env_id": def.ShortID, "created": inserted})
	}
	if inserted {
		f.Textf("saved %s", def.ShortID)
	} else {
		f.Textf("already stored as %s", def.ShortID)
	}
	return nil
}

// readPayload loads a payload document from a file or stdin.
// YAML files (.yaml/.yml) are converted to the same in-memory shape a
// JSON payload parses to, so identity derivation is format-agnostic.
func readPayload(path string, stdin io.Reader) (envdef.Payload, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return payloadFromYAML(data)
	default:
		return envdef.ParsePayload(data)
	}
}

// payloadFromYAML decodes YAML and re-parses it through the canonical
// JSON path, so YAML and JSON inputs with the same content get the
// same ids.
func payloadFromYAML(data []byte) (envdef.Payload, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML payload: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert YAML payload: %w", err)
	}
	return envdef.ParsePayload(jsonBytes)
}
