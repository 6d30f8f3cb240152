package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/funvibe/proxykit/internal/report"
	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/policy"
	"github.com/funvibe/proxykit/pkg/proxy"
)

var makeFlags sourceFlags

var makeCmd = &cobra.Command{
	Use:   "make [contract...]",
	Short: "Synthesize a proxy per contract",
	Long: `Synthesize a proxy type for each contract with the configured strategy
and a passthrough policy under the configured rules, instantiate it once,
and print the generated type and its intercepted methods.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := makeFlags.validate(); err != nil {
			return err
		}
		match, err := cfg.Matcher()
		if err != nil {
			return err
		}
		cs, err := makeFlags.load(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}

		maker := proxy.NewMaker(
			proxy.WithStrategy(cfg.ProxyStrategy()),
			proxy.WithLogger(slog.Default().With("component", "proxy")),
		)
		r := &report.Report{}
		for _, c := range cs {
			d, err := maker.Make(nil, []*meta.Type{c.Type}, policy.New(match, policy.Passthrough))
			if err != nil {
				return err
			}
			if _, err := d.NewInstance(); err != nil {
				return fmt.Errorf("contract %s: %w", c.Type.Name(), err)
			}
			r.Proxies = append(r.Proxies, report.ForDescriptor(c.Type.Name(), d))
		}
		return makeFlags.write(cmd, r)
	},
}

func init() {
	makeFlags.register(makeCmd)
	rootCmd.AddCommand(makeCmd)
}
