package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"envgate/internal/envdef"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the current binding for every pair",
		Long: `List the currently bound definition id for every (app, env) pair that
has ever been bound.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	current, err := s.ListCurrentBindings(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "list failed", err)
	}

	keys := make([]envdef.BindingKey, 0, len(current))
	for key := range current {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App != keys[j].App {
			return keys[i].App < keys[j].App
		}
		return keys[i].Env < keys[j].Env
	})

	f := formatter(opts.RootOptions, cmd)
	if f.Format == "json" {
		list := make([]map[string]string, 0, len(keys))
		for _, key := range keys {
			list = append(list, map[string]string{
				"app":    key.App,
				"env":    key.Env,
				"env_id": current[key],
			})
		}
		return f.JSON(list)
	}

	for _, key := range keys {
		f.Textf("%s/%s -> %s", key.App, key.Env, current[key])
	}
	return nil
}
