package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/proxykit/internal/report"
	"github.com/funvibe/proxykit/internal/sources"
	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

var catalogFlags sourceFlags

var catalogCmd = &cobra.Command{
	Use:   "catalog [contract...]",
	Short: "List the proxyable methods of contracts and the rules' decisions",
	Long: `Load contracts and list every method a proxy of each would offer to
its policy, marking the ones the configured rules intercept.

Without arguments every loaded contract is listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalogFlags.validate(); err != nil {
			return err
		}
		match, err := cfg.Matcher()
		if err != nil {
			return err
		}
		cs, err := catalogFlags.load(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}

		r := &report.Report{}
		for _, c := range cs {
			cands, err := proxy.Collect(nil, []*meta.Type{c.Type})
			if err != nil {
				return fmt.Errorf("contract %s: %w", c.Type.Name(), err)
			}
			rc := report.Contract{
				Name:    c.Type.Name(),
				Source:  string(c.Kind),
				Methods: report.Methods(cands, match),
			}
			switch c.Kind {
			case sources.Proto:
				rc.Skipped = c.Service.Skipped
			case sources.Go:
				rc.Lossy = c.Interface.Lossy
			}
			r.Contracts = append(r.Contracts, rc)
		}
		return catalogFlags.write(cmd, r)
	},
}

func init() {
	catalogFlags.register(catalogCmd)
	rootCmd.AddCommand(catalogCmd)
}
