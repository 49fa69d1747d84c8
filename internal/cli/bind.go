package cli

import (
	"github.com/spf13/cobra"

	"envgate/internal/store"
)

// BindOptions holds flags for the bind command.
type BindOptions struct {
	*RootOptions
}

// NewBindCommand creates the bind command.
func NewBindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bind <app> <env> <env-id>",
		Short: "Point an application environment at a definition",
		Long: `Append a binding pointing an (app, env) pair at a stored definition.

Bindings are append-only: rebinding a pair adds a new history entry,
it never rewrites the old one. The definition must already exist.

Example:
  envgate bind checkout prod abc12345`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(opts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func runBind(opts *BindOptions, app, env, envID string, cmd *cobra.Command) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	seq, err := s.Bind(cmd.Context(), app, env, envID)
	if err != nil {
		if store.IsReferentialViolation(err) {
			return WrapExitError(ExitFailure, "unknown definition", err)
		}
		return WrapExitError(ExitCommandError, "bind failed", err)
	}

	f := formatter(opts.RootOptions, cmd)
	if f.Format == "json" {
		return f.JSON(map[string]any{"app": app, "env": env, "env_id": envID, "seq": seq})
	}
	f.Textf("bound %s/%s -> %s", app, env, envID)
	f.VerboseLog("history sequence %d", seq)
	return nil
}
