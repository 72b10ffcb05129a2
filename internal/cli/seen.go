package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/store"
)

// SeenOptions holds flags for the seen command.
type SeenOptions struct {
	*RootOptions
	Unseen bool
}

// SeenResult is the JSON payload of the seen command.
type SeenResult struct {
	Numbers []ir.MsgNumber `json:"numbers"`
	Seen    bool           `json:"seen"`
}

// NewSeenCommand creates the seen command.
func NewSeenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seen <number>...",
		Short: "Mark messages as seen or unseen",
		Long: `Set the seen flag of stored messages. The flag is matched by
{equal: {seen: true}} predicates.

Examples:
  boutinf seen 4 2
  boutinf seen --unseen 4`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeen(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Unseen, "unseen", false, "clear the seen flag instead")
	return cmd
}

func runSeen(opts *SeenOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	ctx := commandContext(cmd)

	numbers := make([]ir.MsgNumber, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n < 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid message number %q", arg))
		}
		numbers = append(numbers, ir.MsgNumber(n))
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	seen := !opts.Unseen
	for _, n := range numbers {
		if err := st.MarkSeen(ctx, n, seen); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return WrapExitError(ExitFailure, fmt.Sprintf("message %d", n), err)
			}
			return WrapExitError(ExitCommandError, "failed to update message",
				&LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		out.VerboseLog("message %d seen=%t", n, seen)
	}

	result := SeenResult{Numbers: numbers, Seen: seen}
	return out.Success(result, func(w io.Writer) {
		state := "seen"
		if !seen {
			state = "unseen"
		}
		fmt.Fprintf(w, "Marked %d message(s) %s\n", len(numbers), state)
	})
}
