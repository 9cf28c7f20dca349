// Package cli implements the trie command-line front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kumarlokesh/trie-server/internal/client"
	"github.com/kumarlokesh/trie-server/internal/config"
	"github.com/kumarlokesh/trie-server/internal/logging"
	"github.com/kumarlokesh/trie-server/internal/types"
)

var (
	// ErrMalformed is returned for an unknown flag, several operation flags at
	// once or a missing word. No operation is executed.
	ErrMalformed = errors.New("malformed command")

	// errNoOperation means no operation flag was given and help should be shown
	errNoOperation = errors.New("no operation selected")
)

var operationUsage = map[types.Operation]string{
	types.OperationAdd:          "adds a word to the trie",
	types.OperationDelete:       "deletes a word from the trie",
	types.OperationSearch:       "searches a trie for a word",
	types.OperationAutocomplete: "gives a list of prefix included words in the trie given a prefix",
	types.OperationDisplay:      "prints the trie out",
	types.OperationReset:        "removes all words from the trie and starts off with no nodes",
}

const helpText = `Commands are done by --COMMAND WORD for all commands except display and reset
All Possible Commands For The Trie:
  --add WORD                    adds a word to the trie
  --delete WORD                 deletes a word from the trie
  --search WORD                 searches a trie for a word
  --autocomplete WORD           gives a list of prefix included words in the trie given a prefix
  --display                     prints the trie out
  --reset                       removes all words from the trie and starts off with no nodes
`

// operationFlags holds one boolean flag per trie operation
type operationFlags map[types.Operation]*bool

func bindOperationFlags(fs *pflag.FlagSet) operationFlags {
	flags := make(operationFlags, len(types.Operations))
	for _, op := range types.Operations {
		flags[op] = fs.Bool(string(op), false, operationUsage[op])
	}
	return flags
}

// resolve picks the single selected operation and its word from the
// remaining positional arguments.
func (f operationFlags) resolve(args []string) (types.Operation, string, error) {
	var selected []types.Operation
	for _, op := range types.Operations {
		if *f[op] {
			selected = append(selected, op)
		}
	}

	switch {
	case len(selected) > 1:
		return "", "", fmt.Errorf("%w: Please enter 1 allowed command at a time", ErrMalformed)
	case len(selected) == 0:
		return "", "", errNoOperation
	}

	op := selected[0]
	if len(args) > 1 {
		return "", "", fmt.Errorf("%w: Please enter a single word with operation %s", ErrMalformed, op)
	}
	if op.NeedsWord() && (len(args) == 0 || args[0] == "") {
		return "", "", fmt.Errorf("%w: Please include a word with operation %s", ErrMalformed, op)
	}

	var word string
	if op.NeedsWord() {
		word = args[0]
	}
	return op, word, nil
}

type rootOptions struct {
	configPath string
	serverURL  string
	timeout    time.Duration
	verbose    bool
}

// NewRootCommand builds the trie command writing results to out and
// diagnostics to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "trie [--OPERATION] [WORD]",
		Short: "Add, delete, search and autocomplete words in a shared trie",
		Long:  helpText,
		// A trailing word is the only positional argument
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.CompletionOptions.DisableDefaultCmd = true

	ops := bindOperationFlags(cmd.Flags())

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	pf.StringVar(&opts.serverURL, "server", "", "trie server URL (overrides client.server_url)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "request timeout (overrides client.timeout)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(errOut, "Error : Please enter an allowed command")
		fmt.Fprintln(errOut)
		fmt.Fprint(errOut, helpText)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	})

	cmd.RunE = func(c *cobra.Command, args []string) error {
		op, word, err := ops.resolve(args)
		if errors.Is(err, errNoOperation) {
			fmt.Fprintln(out)
			fmt.Fprint(out, helpText)
			return nil
		}
		if err != nil {
			reportMalformed(errOut, err)
			return err
		}

		runner, err := opts.newRunner(c.Flags(), out, errOut)
		if err != nil {
			reportError(errOut, err)
			return err
		}
		return runner.run(c.Context(), op, word)
	}

	cmd.AddCommand(newShellCommand(opts, out, errOut))
	return cmd
}

// newRunner resolves configuration and builds the client for one invocation
func (o *rootOptions) newRunner(flags *pflag.FlagSet, out, errOut io.Writer) (*runner, error) {
	path := o.configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.LoadConfig(path, nil)
	if err != nil {
		return nil, err
	}
	if flags.Changed("server") {
		cfg.Client.ServerURL = o.serverURL
	}
	if flags.Changed("timeout") {
		cfg.Client.Timeout = o.timeout
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}

	logCfg := config.LogConfig{Level: "warn", Format: "console"}
	if o.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg, errOut)
	if err != nil {
		return nil, err
	}

	return &runner{
		client: client.New(cfg.Client.ServerURL, cfg.Client.Timeout),
		server: cfg.Client.ServerURL,
		logger: logger,
		out:    out,
		errOut: errOut,
	}, nil
}

// runner executes operations against the server and prints their outcome
type runner struct {
	client *client.Client
	server string
	logger zerolog.Logger
	out    io.Writer
	errOut io.Writer
}

func (r *runner) run(ctx context.Context, op types.Operation, word string) error {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Executing operation %s...\n", op)
	r.logger.Debug().Str("server", r.server).Str("operation", string(op)).Str("word", word).Msg("sending request")

	resp, err := r.client.Do(ctx, op, word)
	if err != nil {
		r.logger.Debug().Err(err).Msg("request failed")
		if errors.Is(err, client.ErrUnreachable) {
			fmt.Fprintln(r.errOut, "Error : Was not able to connect to the server")
		} else {
			fmt.Fprintf(r.errOut, "Error : %v\n", err)
		}
		return err
	}

	r.logger.Debug().Str("status", resp.Status).Bool("succeeded", resp.Succeeded).Msg("response received")
	printResponse(r.out, op, resp)
	return nil
}

func printResponse(out io.Writer, op types.Operation, resp *types.Response) {
	if resp.Succeeded {
		fmt.Fprintf(out, "Trie Operation %s Succeeded\n", op)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, resp.Message)
	for _, w := range resp.Words {
		fmt.Fprintln(out, w)
	}
}

// reportError prints a setup failure such as a bad config file or server URL
func reportError(errOut io.Writer, err error) {
	fmt.Fprintf(errOut, "Error : %v\n", err)
}

func reportMalformed(errOut io.Writer, err error) {
	fmt.Fprintln(errOut)
	fmt.Fprintf(errOut, "Error : %s\n", strings.TrimPrefix(err.Error(), ErrMalformed.Error()+": "))
}
