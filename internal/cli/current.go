package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CurrentOptions holds flags for the current command.
type CurrentOptions struct {
	*RootOptions
}

// NewCurrentCommand creates the current command.
func NewCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CurrentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "current <app> <env>",
		Short: "Show the currently bound definition for a pair",
		Long: `Show what an (app, env) pair is currently bound to: the most recently
appended binding for that pair, with its definition payload resolved.

Example:
  envgate current checkout prod`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurrent(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCurrent(opts *CurrentOptions, app, env string, cmd *cobra.Command) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	binding, err := s.CurrentBinding(cmd.Context(), app, env)
	if err != nil {
		return WrapExitError(ExitCommandError, "current binding lookup failed", err)
	}
	if binding == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("%s/%s has never been bound", app, env))
	}

	f := formatter(opts.RootOptions, cmd)
	if f.Format == "json" {
		return f.JSON(map[string]any{
			"app":     binding.App,
			"env":     binding.Env,
			"env_id":  binding.Definition.ShortID,
			"payload": binding.Definition.Payload,
		})
	}

	f.Textf("%s/%s -> %s", binding.App, binding.Env, binding.Definition.ShortID)
	payloadJSON, err := json.MarshalIndent(binding.Definition.Payload, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render payload", err)
	}
	f.Textf("payload: %s", payloadJSON)
	return nil
}
