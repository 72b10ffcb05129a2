package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/boutinf/internal/store"
)

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Database string `json:"database"`
	Loaded   int    `json:"loaded"`
	Total    int    `json:"total"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <fixture>",
		Short: "Load fixture messages into the store",
		Long: `Load messages from a YAML, JSON or CUE fixture into the store.

The fixture holds a top-level messages list. The whole file is loaded in
one transaction; a number that already exists aborts the load.

Examples:
  boutinf load --db ./bout.db ./testdata/fixtures/board.yaml
  boutinf load --db ./bout.db ./fixtures/board.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts)
	ctx := commandContext(cmd)

	msgs, err := LoadFixtureFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}
	out.VerboseLog("parsed %d message(s) from %s", len(msgs), path)

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AddMessages(ctx, msgs); err != nil {
		if errors.Is(err, store.ErrMessageExists) {
			return WrapExitError(ExitFailure, "fixture conflicts with stored messages", err)
		}
		return WrapExitError(ExitCommandError, "failed to store messages", err)
	}

	total, err := st.Len(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count messages", err)
	}

	result := LoadResult{Database: opts.Database, Loaded: len(msgs), Total: total}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Loaded %d message(s) into %s (%d total)\n", result.Loaded, result.Database, result.Total)
	})
}
