package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/proxykit/internal/report"
)

const kvProto = `
syntax = "proto3";
package kv.v1;

message Key { string key = 1; }
message Value { string value = 1; }

service KV {
  rpc Get(Key) returns (Value);
  rpc Put(Value) returns (Key);
  rpc Watch(Key) returns (stream Value);
}
`

const kvConfig = `
strategy: reflective
sources:
  proto: [kv.proto]
rules:
  - methods: ["Get"]
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kv.proto"), []byte(kvProto), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "proxykit.yaml")
	if err := os.WriteFile(path, []byte(kvConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logLevel = ""
	catalogFlags.format = "text"
	makeFlags.format = "text"
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalog_YAML(t *testing.T) {
	path := setup(t)
	out, err := run(t, "catalog", "--config", path, "--format", "yaml")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	var r report.Report
	if err := yaml.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(r.Contracts) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(r.Contracts))
	}
	c := r.Contracts[0]
	if c.Name != "kv.v1.KV" || c.Source != "proto" {
		t.Errorf("contract = %s (%s)", c.Name, c.Source)
	}
	if len(c.Skipped) != 1 || c.Skipped[0] != "Watch" {
		t.Errorf("skipped = %v", c.Skipped)
	}
	var intercepted []string
	for _, m := range c.Methods {
		if m.Intercepted {
			intercepted = append(intercepted, m.Signature)
		}
	}
	if len(intercepted) != 1 || !strings.HasPrefix(intercepted[0], "Get(") {
		t.Errorf("intercepted = %v, want only Get", intercepted)
	}
}

func TestMake_Text(t *testing.T) {
	path := setup(t)
	out, err := run(t, "make", "--config", path, "kv.v1.KV")
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	if !strings.Contains(out, "proxies kv.v1.KV (reflective)") {
		t.Errorf("output missing proxy line:\n%s", out)
	}
	if !strings.Contains(out, "+ Get(") || strings.Contains(out, "+ Put(") {
		t.Errorf("expected only Get to be intercepted:\n%s", out)
	}
}

func TestErrors(t *testing.T) {
	path := setup(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown contract", []string{"make", "--config", path, "nope.Service"}, `contract "nope.Service" not found`},
		{"bad format", []string{"make", "--config", path, "--format", "json"}, "--format must be"},
		{"bad log level", []string{"catalog", "--config", path, "--log-level", "loud"}, "invalid log level"},
		{"missing config", []string{"catalog", "--config", filepath.Join(t.TempDir(), "none.yaml")}, "failed to load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
