package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/tsawler/docmark"
	"github.com/tsawler/docmark/format"
	"github.com/tsawler/docmark/model"
)

// fileInfo is what info reports about one file.
type fileInfo struct {
	Name      string     `yaml:"name"`
	Size      int64      `yaml:"size"`
	Extension string     `yaml:"extension"`
	Format    string     `yaml:"format,omitempty"`
	Supported bool       `yaml:"supported"`
	Title     string     `yaml:"title,omitempty"`
	Author    string     `yaml:"author,omitempty"`
	Pages     int        `yaml:"pages,omitempty"`
	Structure *structure `yaml:"structure,omitempty"`
}

type structure struct {
	Headings   int `yaml:"headings"`
	Paragraphs int `yaml:"paragraphs"`
	Lists      int `yaml:"lists"`
	Tables     int `yaml:"tables"`
	Images     int `yaml:"images"`
	CodeBlocks int `yaml:"code_blocks"`
}

func newInfoCmd(a *app) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Show information about a file",
		Long: `Info prints the file's name, size and extension and whether it can be
converted. Supported files are parsed and their structure is summarised.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := inspect(a, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				data, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("encoding info: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			supported := color.Red.Sprint("no")
			if info.Supported {
				supported = color.Green.Sprint("yes")
			}
			fmt.Fprintf(out, "File:      %s\n", info.Name)
			fmt.Fprintf(out, "Size:      %d bytes\n", info.Size)
			fmt.Fprintf(out, "Extension: %s\n", info.Extension)
			fmt.Fprintf(out, "Supported: %s\n", supported)
			if info.Format != "" {
				fmt.Fprintf(out, "Format:    %s\n", info.Format)
			}
			if info.Title != "" {
				fmt.Fprintf(out, "Title:     %s\n", info.Title)
			}
			if info.Author != "" {
				fmt.Fprintf(out, "Author:    %s\n", info.Author)
			}
			if info.Pages > 0 {
				fmt.Fprintf(out, "Pages:     %d\n", info.Pages)
			}
			if s := info.Structure; s != nil {
				fmt.Fprintln(out, "Structure:")
				fmt.Fprintf(out, "  headings:    %d\n", s.Headings)
				fmt.Fprintf(out, "  paragraphs:  %d\n", s.Paragraphs)
				fmt.Fprintf(out, "  lists:       %d\n", s.Lists)
				fmt.Fprintf(out, "  tables:      %d\n", s.Tables)
				fmt.Fprintf(out, "  images:      %d\n", s.Images)
				fmt.Fprintf(out, "  code blocks: %d\n", s.CodeBlocks)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

// inspect gathers file facts and, for supported files, parses the
// document. A parse failure is returned as an error.
func inspect(a *app, path string) (*fileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	info := &fileInfo{
		Name:      filepath.Base(path),
		Size:      st.Size(),
		Extension: filepath.Ext(path),
		Supported: docmark.IsSupported(path),
	}
	if !info.Supported {
		return info, nil
	}
	info.Format = format.Detect(path).String()

	doc, err := docmark.Open(path).Using(a.engine()).Document()
	if err != nil {
		return nil, err
	}
	fillDocumentInfo(info, doc)
	return info, nil
}

func fillDocumentInfo(info *fileInfo, doc *model.Document) {
	info.Title = doc.Metadata.Title
	info.Author = doc.Metadata.Author
	info.Pages = doc.Metadata.PageCount

	st := doc.Stats()
	info.Structure = &structure{
		Headings:   st.Headings,
		Paragraphs: st.Paragraphs,
		Lists:      st.Lists,
		Tables:     st.Tables,
		Images:     st.Images,
		CodeBlocks: st.CodeBlocks,
	}
}
