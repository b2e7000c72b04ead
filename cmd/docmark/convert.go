package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/tsawler/docmark"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert documents to Markdown",
		Long: `Convert reads each FILE and writes its Markdown next to it as <name>.md.

With a single FILE, --output names the destination; "-" writes to standard
output. With several files, --output names a directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.cfg.MarkdownOptions()
			if err != nil {
				return &docmark.OptionsError{Err: err}
			}

			// Reject unsupported inputs before reading anything.
			for _, in := range args {
				if !docmark.IsSupported(in) {
					return &docmark.UnsupportedError{
						Filename:  in,
						Extension: strings.ToLower(filepath.Ext(in)),
					}
				}
			}

			jobs := make([]docmark.Job, 0, len(args))
			for _, in := range args {
				data, err := os.ReadFile(in)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", in, err)
				}
				jobs = append(jobs, docmark.Job{Filename: in, Data: data, Options: opts})
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results := a.engine().ConvertAll(ctx, jobs)

			var errs []error
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", color.Red.Sprint("✗"), res.Filename, res.Err)
					errs = append(errs, res.Err)
					continue
				}
				dest, err := outputPath(res.Filename, output, len(args) > 1)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), dest, res.Markdown); err != nil {
					errs = append(errs, err)
					continue
				}
				if dest != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s → %s\n",
						color.Green.Sprint("✓"), res.Filename, color.Cyan.Sprint(dest))
				}
			}
			return errors.Join(errs...)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", `output file, "-" for stdout, or a directory with several inputs`)
	f.Bool("preserve-formatting", true, "keep bold, italic, underline, strikethrough and links")
	f.Bool("include-images", true, "embed images as data URIs")
	f.Int("max-image-size", 1024, "largest image edge in pixels")
	f.String("table-format", "grid", "table dialect: grid, pipe or simple")
	f.Bool("ocr", false, "recognize text on scanned PDF pages (needs an ocr build)")
	f.String("ocr-language", "eng", "Tesseract language for OCR")
	return cmd
}

// outputPath decides where the Markdown for input goes.
func outputPath(input, output string, many bool) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".md"
	switch {
	case output == "":
		return filepath.Join(filepath.Dir(input), stem), nil
	case !many:
		return output, nil
	case output == "-":
		return "-", nil
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", output, err)
	}
	return filepath.Join(output, stem), nil
}

func writeOutput(stdout io.Writer, dest, content string) error {
	if dest == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
