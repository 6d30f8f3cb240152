// Package report renders catalog and synthesis results for the CLI.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/proxykit/internal/config"
	"github.com/funvibe/proxykit/pkg/policy"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// Report is the output of one CLI run.
type Report struct {
	Contracts []Contract `yaml:"contracts,omitempty"`
	Proxies   []Proxy    `yaml:"proxies,omitempty"`
}

// Contract is a loaded contract and its catalog.
type Contract struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Methods []Method `yaml:"methods"`

	// Skipped lists source methods with no contract method.
	Skipped []string `yaml:"skipped,omitempty"`

	// Lossy lists methods with types widened to any.
	Lossy []string `yaml:"lossy,omitempty"`
}

// Method is one catalog candidate and the rules' decision on it.
type Method struct {
	Signature   string `yaml:"signature"`
	Declaring   string `yaml:"declaring"`
	Origin      string `yaml:"origin"`
	Intercepted bool   `yaml:"intercepted"`
}

// Proxy is a synthesized proxy type.
type Proxy struct {
	Contract    string   `yaml:"contract"`
	Type        string   `yaml:"type"`
	Strategy    string   `yaml:"strategy"`
	Intercepted []string `yaml:"intercepted"`
}

// Methods reports each candidate with the decision of m.
func Methods(cands []*proxy.Candidate, m policy.Matcher) []Method {
	out := make([]Method, len(cands))
	for i, c := range cands {
		out[i] = Method{
			Signature:   signature(c),
			Declaring:   c.DeclaringType().Name(),
			Origin:      c.Origin.String(),
			Intercepted: m(c),
		}
	}
	return out
}

// ForDescriptor reports a synthesized proxy of the named contract.
func ForDescriptor(contract string, d *proxy.Descriptor) Proxy {
	p := Proxy{
		Contract: contract,
		Type:     d.GeneratedType().Name(),
		Strategy: d.Strategy().String(),
	}
	for _, c := range d.Methods() {
		p.Intercepted = append(p.Intercepted, signature(c))
	}
	return p
}

func signature(c *proxy.Candidate) string {
	var b strings.Builder
	b.WriteString(c.Name())
	b.WriteByte('(')
	for i, p := range c.Params() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if r := c.Result(); r != nil {
		b.WriteByte(' ')
		b.WriteString(r.String())
	}
	return b.String()
}

// Write renders r in format to w. Text output is colored when color is set.
func Write(w io.Writer, r *Report, format string, color bool) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	case config.FormatText, "":
		return writeText(w, r, color)
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, config.FormatText, config.FormatYAML)
	}
}

// ColorEnabled reports whether f is a terminal that should get colors.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
)

type textWriter struct {
	w     io.Writer
	color bool
	err   error
}

func (t *textWriter) printf(style, format string, args ...any) {
	if t.err != nil {
		return
	}
	s := fmt.Sprintf(format, args...)
	if t.color && style != "" {
		s = style + s + ansiReset
	}
	_, t.err = io.WriteString(t.w, s)
}

func writeText(w io.Writer, r *Report, color bool) error {
	t := &textWriter{w: w, color: color}
	for i, c := range r.Contracts {
		if i > 0 {
			t.printf("", "\n")
		}
		t.printf(ansiBold, "%s", c.Name)
		t.printf("", " (%s)\n", c.Source)
		for _, m := range c.Methods {
			if m.Intercepted {
				t.printf(ansiGreen, "  + %s", m.Signature)
			} else {
				t.printf(ansiDim, "  - %s", m.Signature)
			}
			if m.Origin == proxy.FromBase.String() || m.Declaring != c.Name {
				t.printf(ansiDim, "  [%s, %s]", m.Origin, m.Declaring)
			}
			t.printf("", "\n")
		}
		if len(c.Skipped) > 0 {
			t.printf(ansiDim, "  skipped: %s\n", strings.Join(c.Skipped, ", "))
		}
		if len(c.Lossy) > 0 {
			t.printf(ansiDim, "  widened to any: %s\n", strings.Join(c.Lossy, ", "))
		}
	}
	for i, p := range r.Proxies {
		if i > 0 || len(r.Contracts) > 0 {
			t.printf("", "\n")
		}
		t.printf(ansiBold, "%s", p.Type)
		t.printf("", " proxies %s (%s)\n", p.Contract, p.Strategy)
		if len(p.Intercepted) == 0 {
			t.printf(ansiDim, "  no intercepted methods\n")
		}
		for _, s := range p.Intercepted {
			t.printf(ansiGreen, "  + %s\n", s)
		}
	}
	return t.err
}
