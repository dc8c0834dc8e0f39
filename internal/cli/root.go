// Package cli implements the mdmerge command-line interface.
//
// mdmerge concatenates and includes multiple markdown files into a
// single document. The command is built with cobra; merge semantics
// live in pkg/merge. Logging goes to stderr via charmbracelet/log and
// is passed to the merge engine through context, so merged output on
// stdout stays clean.
//
// # Example
//
//	import "github.com/JeNeSuisPasDave/MarkdownTools/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/buildinfo"
	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/merge"
)

// exportTargets maps the --export-target choices to the extension
// substituted for a trailing wildcard marker on transclusion targets.
var exportTargets = map[string]string{
	"html":  ".html",
	"latex": ".tex",
	"lyx":   ".lyx",
	"opml":  ".opml",
	"rtf":   ".rtf",
	"odf":   ".odf",
}

// runOptions holds the command-line flags for a merge run.
type runOptions struct {
	exportTarget        string // wildcard substitution target
	ignoreTransclusions bool   // leave {{path}} lines untouched
	justRaw             bool   // process only raw passthrough markers
	leanpub             bool   // treat book.txt as an index
	book                bool   // treat stdin as an index
	outFile             string // output file path (stdout if empty)
}

// Execute runs the mdmerge CLI and returns an error if the merge fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// Warnings (missing index entries, heading depth) never affect the
// error result; the caller maps a non-nil error to a non-zero exit.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := &runOptions{exportTarget: "html"}

	root := &cobra.Command{
		Use:   "mdmerge [flags] [inputs...]",
		Short: "Concatenate and include multiple markdown files into a single file",
		Long: `mdmerge assembles one output document from a tree of markdown files
connected by inline include and transclusion directives.

Inputs are merged in order, separated by blank lines. A file may be an
index: an ordered list of further inputs, one per line, with leading
indentation selecting a heading offset. Pass '-' as the sole input to
read from stdin.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, args, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().StringVar(&opts.exportTarget, "export-target", "html",
		fmt.Sprintf("guide wildcard extension substitution (%s)", strings.Join(exportTargetNames(), ", ")))
	root.Flags().BoolVar(&opts.ignoreTransclusions, "ignore-transclusions", false,
		"leave {{path}} transclusion specifications untouched")
	root.Flags().BoolVar(&opts.justRaw, "just-raw", false,
		"process only raw include specifications")
	root.Flags().BoolVar(&opts.leanpub, "leanpub", false,
		"treat any file called 'book.txt' as an index file")
	root.Flags().BoolVar(&opts.book, "book", false,
		"treat stdin as an index file")
	root.Flags().StringVarP(&opts.outFile, "outfile", "o", "",
		"write the merged document to this path instead of stdout")

	err := root.ExecuteContext(ctx)
	if err != nil {
		printError("%v", err)
	}
	return err
}

// runMerge validates inputs, builds the merger, and expands each
// top-level input into the output sink in order.
func runMerge(cmd *cobra.Command, args []string, opts *runOptions) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfig(cmd.Flags(), opts, cfg)

	inputs, useStdin, err := validateInputs(args)
	if err != nil {
		return err
	}

	ext, ok := exportTargets[opts.exportTarget]
	if !ok {
		return errors.New(errors.ErrCodeInvalidExportTarget,
			"unknown export target %q (choose one of %s)", opts.exportTarget, strings.Join(exportTargetNames(), ", "))
	}

	merger, err := merge.New(merge.Options{
		ExportExtension:     ext,
		BookNameIsIndex:     opts.leanpub,
		StdinIsIndex:        opts.book,
		IgnoreTransclusions: opts.ignoreTransclusions,
		RawOnly:             opts.justRaw,
		Logger: func(format string, args ...any) {
			logger.Warnf(format, args...)
		},
	})
	if err != nil {
		return err
	}

	out := io.Writer(cmd.OutOrStdout())
	if opts.outFile != "" {
		abs, err := validateOutput(opts.outFile)
		if err != nil {
			return err
		}
		f, err := os.Create(abs)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot create output %s", abs)
		}
		defer f.Close()
		out = f
	}

	prog := newProgress(logger)
	if useStdin {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "cannot determine working directory")
		}
		node := merge.NewStdinRoot(wd)
		if err := merger.Merge(node, out, false); err != nil {
			return err
		}
		logger.Debug("merged stdin")
	} else {
		for i, input := range inputs {
			if i > 0 {
				// blank line between independently-specified inputs
				if _, err := io.WriteString(out, "\n"); err != nil {
					return err
				}
			}
			node := merge.NewRoot(input)
			if err := merger.Merge(node, out, i > 0); err != nil {
				return err
			}
			logger.Debugf("merged %s", input)
		}
	}

	if opts.outFile != "" {
		printSuccess("wrote %s", opts.outFile)
	}
	prog.done(fmt.Sprintf("Merged %d input(s)", max(len(inputs), 1)))
	return nil
}

func exportTargetNames() []string {
	names := make([]string, 0, len(exportTargets))
	for name := range exportTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
