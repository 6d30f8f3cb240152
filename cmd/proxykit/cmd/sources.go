package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/funvibe/proxykit/internal/config"
	"github.com/funvibe/proxykit/internal/report"
	"github.com/funvibe/proxykit/internal/sources"
)

// sourceFlags are the contract source flags shared by catalog and make.
// Set flags replace the matching config file entries.
type sourceFlags struct {
	proto       []string
	importPaths []string
	goPatterns  []string
	dir         string
	format      string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.proto, "proto", nil, ".proto files to load services from")
	cmd.Flags().StringSliceVar(&f.importPaths, "import-path", nil, "directories .proto imports resolve against")
	cmd.Flags().StringSliceVar(&f.goPatterns, "go", nil, "Go package patterns to load interfaces from")
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory sources resolve in")
	cmd.Flags().StringVar(&f.format, "format", config.DefaultFormat, "output format: "+config.FormatText+" or "+config.FormatYAML)
}

func (f *sourceFlags) sources(cmd *cobra.Command) config.Sources {
	s := cfg.Sources
	if cmd.Flags().Changed("proto") {
		s.Proto = f.proto
	}
	if cmd.Flags().Changed("import-path") {
		s.ImportPaths = f.importPaths
	}
	if cmd.Flags().Changed("go") {
		s.Go = f.goPatterns
	}
	if cmd.Flags().Changed("dir") {
		s.Dir = f.dir
	}
	return s
}

// load loads the contracts, keeping only those named in args when any are.
func (f *sourceFlags) load(ctx context.Context, cmd *cobra.Command, args []string) ([]*sources.Contract, error) {
	s := f.sources(cmd)
	if len(s.Proto) == 0 && len(s.Go) == 0 {
		return nil, fmt.Errorf("no contract sources: use --proto or --go, or list them in %s", config.FileName)
	}
	cs, err := sources.Load(ctx, s)
	if err != nil {
		return nil, err
	}
	slog.Debug("contracts loaded", "count", len(cs), "proto", len(s.Proto), "go", len(s.Go))
	if len(args) == 0 {
		return cs, nil
	}
	var out []*sources.Contract
	for _, name := range args {
		c := sources.Find(cs, name)
		if c == nil {
			return nil, fmt.Errorf("contract %q not found", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *sourceFlags) write(cmd *cobra.Command, r *report.Report) error {
	out := cmd.OutOrStdout()
	color := false
	if file, ok := out.(*os.File); ok {
		color = report.ColorEnabled(file)
	}
	return report.Write(out, r, f.format, color)
}

func (f *sourceFlags) validate() error {
	if !slices.Contains([]string{config.FormatText, config.FormatYAML}, f.format) {
		return fmt.Errorf("--format must be %s or %s", config.FormatText, config.FormatYAML)
	}
	return nil
}
