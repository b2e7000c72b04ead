// Package main is the entry point for the docmark CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tsawler/docmark"
	"github.com/tsawler/docmark/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// flagKeys maps command-line flags to config keys. A flag given on the
// command line overrides the config file and environment.
var flagKeys = map[string]string{
	"log-format":          "log.format",
	"log-level":           "log.level",
	"preserve-formatting": "conversion.preserve_formatting",
	"include-images":      "conversion.include_images",
	"max-image-size":      "conversion.max_image_size",
	"table-format":        "conversion.table_format",
	"ocr":                 "pdf.ocr",
	"ocr-language":        "pdf.ocr_language",
	"addr":                "server.addr",
	"max-upload-bytes":    "server.max_upload_bytes",
	"max-connections":     "server.max_connections",
	"workers":             "server.workers",
	"allowed-origins":     "server.allowed_origins",
}

// app carries state shared by all commands for one invocation.
type app struct {
	configFile string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

// load reads configuration for cmd, binding its flags, and builds the
// logger.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}
	if a.verbose {
		v.Set("log.level", "debug")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}

// engine builds a conversion engine from the loaded configuration.
func (a *app) engine() *docmark.Engine {
	return docmark.New(
		docmark.WithLogger(a.logger),
		docmark.WithPDFConfig(a.cfg.PDFConfig()),
		docmark.WithWorkers(a.cfg.Server.Workers),
	)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "docmark",
		Short: "Convert DOCX, PDF, TXT and RTF documents to Markdown",
		Long: `docmark converts office documents to Markdown while keeping their
structure: headings, paragraphs, lists, tables, inline formatting and images.

Each subcommand covers one task: convert files, list supported formats,
inspect a file, or serve the converter over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./docmark.yaml or ~/.config/docmark/docmark.yaml)")
	pf.String("log-format", "text", "log output format: text or json")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug logging)")

	root.AddCommand(
		newConvertCmd(a),
		newFormatsCmd(),
		newInfoCmd(a),
		newServeCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		return docmark.ExitCode(err)
	}
	return docmark.ExitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
