// Package sources loads the contracts listed in a config file.
package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/proxykit/internal/config"
	"github.com/funvibe/proxykit/internal/gocontract"
	"github.com/funvibe/proxykit/internal/protocontract"
	"github.com/funvibe/proxykit/pkg/meta"
)

// Kind names where a contract came from.
type Kind string

const (
	Proto Kind = "proto"
	Go    Kind = "go"
)

// Contract is a loaded contract and its origin.
type Contract struct {
	Type *meta.Type
	Kind Kind

	// Service is set for proto contracts.
	Service *protocontract.Service

	// Interface is set for Go contracts.
	Interface *gocontract.Contract
}

// Load loads the proto and Go sources concurrently. Proto contracts come
// first, then Go contracts; each group keeps its loader's order.
//
// Relative import paths resolve against s.Dir. Without import paths, proto
// files resolve against s.Dir itself.
func Load(ctx context.Context, s config.Sources) ([]*Contract, error) {
	var protos, gos []*Contract
	g, ctx := errgroup.WithContext(ctx)

	if len(s.Proto) > 0 {
		g.Go(func() error {
			paths := slices.Clone(s.ImportPaths)
			if len(paths) == 0 {
				paths = []string{"."}
			}
			for i, p := range paths {
				if !filepath.IsAbs(p) && s.Dir != "" {
					paths[i] = filepath.Join(s.Dir, p)
				}
			}
			svcs, err := protocontract.Load(paths, s.Proto...)
			if err != nil {
				return err
			}
			for _, svc := range svcs {
				protos = append(protos, &Contract{Type: svc.Contract, Kind: Proto, Service: svc})
			}
			return nil
		})
	}

	if len(s.Go) > 0 {
		g.Go(func() error {
			cs, err := gocontract.Load(ctx, s.Dir, s.Go...)
			if err != nil {
				return err
			}
			for _, c := range cs {
				gos = append(gos, &Contract{Type: c.Type, Kind: Go, Interface: c})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading contracts: %w", err)
	}
	return append(protos, gos...), nil
}

// Find returns the contract with the given name, or nil.
func Find(cs []*Contract, name string) *Contract {
	for _, c := range cs {
		if c.Type.Name() == name {
			return c
		}
	}
	return nil
}

// Types returns the contract types of cs.
func Types(cs []*Contract) []*meta.Type {
	out := make([]*meta.Type, len(cs))
	for i, c := range cs {
		out[i] = c.Type
	}
	return out
}
