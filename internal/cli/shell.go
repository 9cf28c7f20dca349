package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kumarlokesh/trie-server/internal/types"
)

const shellHelp = `Enter one operation per line, with or without the leading dashes:
  add WORD | delete WORD | search WORD | autocomplete WORD | display | reset
  help                          shows this message
  exit                          leaves the shell
`

// lineReader is the part of *readline.Instance the shell loop needs
type lineReader interface {
	Readline() (string, error)
}

func newShellCommand(opts *rootOptions, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session against the trie server",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			r, err := opts.newRunner(c.Flags(), out, errOut)
			if err != nil {
				reportError(errOut, err)
				return err
			}

			completer := readline.NewPrefixCompleter(
				readline.PcItem("add"),
				readline.PcItem("delete"),
				readline.PcItem("search"),
				readline.PcItem("autocomplete"),
				readline.PcItem("display"),
				readline.PcItem("reset"),
				readline.PcItem("help"),
				readline.PcItem("exit"),
			)
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "trie> ",
				AutoComplete:    completer,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          out,
				Stderr:          errOut,
			})
			if err != nil {
				err = fmt.Errorf("failed to start shell: %w", err)
				reportError(errOut, err)
				return err
			}
			defer rl.Close()

			fmt.Fprint(out, shellHelp)
			return runShell(c.Context(), rl, r)
		},
	}
}

// runShell reads operations line by line until exit or end of input.
// Malformed lines and unreachable servers are reported and the loop continues.
func runShell(ctx context.Context, lines lineReader, r *runner) error {
	for {
		line, err := lines.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.TrimLeft(fields[0], "-") {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprint(r.out, shellHelp)
			continue
		}

		op, word, err := parseShellLine(fields)
		if err != nil {
			if errors.Is(err, errNoOperation) {
				fmt.Fprint(r.out, shellHelp)
				continue
			}
			reportMalformed(r.errOut, err)
			fmt.Fprint(r.errOut, shellHelp)
			continue
		}

		// run has already reported any failure
		_ = r.run(ctx, op, word)
	}
}

// parseShellLine applies the same flag rules as the command line, accepting
// bare operation names such as "add word".
func parseShellLine(fields []string) (types.Operation, string, error) {
	fs := pflag.NewFlagSet("shell", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ops := bindOperationFlags(fs)

	args := append([]string(nil), fields...)
	if _, err := types.ParseOperation(args[0]); err == nil {
		args[0] = "--" + args[0]
	}

	if err := fs.Parse(args); err != nil {
		return "", "", fmt.Errorf("%w: Please enter an allowed command", ErrMalformed)
	}
	return ops.resolve(fs.Args())
}
