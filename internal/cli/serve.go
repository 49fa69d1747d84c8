package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"envgate/internal/server"
	"envgate/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the envgate HTTP API.

Configuration is read from the environment (ENVGATE_ADDR, ENVGATE_DB),
optionally loaded from a .env file. Flags override environment values.

Example:
  envgate serve --addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (defaults to ENVGATE_ADDR or :8080)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if opts.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found")
	}
	cfg := server.FromEnv()
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	// An explicit --db wins over ENVGATE_DB
	if cmd.Flags().Changed("db") || cmd.InheritedFlags().Changed("db") {
		cfg.DBPath = opts.DBPath
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	srv := server.New(st, logger)
	logger.Info().Str("addr", cfg.Addr).Str("db", cfg.DBPath).Msg("starting envgate API")
	return srv.ListenAndServe(cfg.Addr)
}
