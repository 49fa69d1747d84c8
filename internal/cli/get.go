package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <env-id>",
		Short: "Fetch an environment definition by id",
		Long: `Fetch an environment definition by its short id and print its payload.

Example:
  envgate get abc12345`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	return cmd
}

func runGet(opts *GetOptions, envID string, cmd *cobra.Command) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	def, err := s.GetDefinition(cmd.Context(), envID)
	if err != nil {
		return WrapExitError(ExitCommandError, "get failed", err)
	}
	if def == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("definition %q not found", envID))
	}

	f := formatter(opts.RootOptions, cmd)
	if f.Format == "json" {
		return f.JSON(map[string]any{
			"env_id":  def.ShortID,
			"long_id": def.LongID,
			"payload": def.Payload,
		})
	}

	f.Textf("env_id:  %s", def.ShortID)
	f.Textf("long_id: %s", def.LongID)
	payloadJSON, err := json.MarshalIndent(def.Payload, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render payload", err)
	}
	f.Textf("payload: %s", payloadJSON)
	return nil
}
