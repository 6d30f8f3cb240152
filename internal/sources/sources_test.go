package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/proxykit/internal/config"
)

const greeterProto = `
syntax = "proto3";
package greet.v1;

message Hello { string name = 1; }

service Greeter {
  rpc Greet(Hello) returns (Hello);
}
`

const kvSource = `package kv

type KV interface {
	Get(key string) (string, error)
}
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"api/greet.proto": greeterProto,
		"go.mod":          "module example.com/kv\n\ngo 1.22\n",
		"kv/kv.go":        kvSource,
	})

	cs, err := Load(context.Background(), config.Sources{
		Proto:       []string{"greet.proto"},
		ImportPaths: []string{"api"},
		Go:          []string{"./kv"},
		Dir:         dir,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(cs))
	}
	if cs[0].Kind != Proto || cs[0].Type.Name() != "greet.v1.Greeter" || cs[0].Service == nil {
		t.Errorf("cs[0] = %+v", cs[0])
	}
	if cs[1].Kind != Go || cs[1].Type.Name() != "kv.KV" || cs[1].Interface == nil {
		t.Errorf("cs[1] = %+v", cs[1])
	}

	if Find(cs, "kv.KV") != cs[1] {
		t.Error("Find did not return kv.KV")
	}
	if Find(cs, "missing") != nil {
		t.Error("Find returned a contract for a missing name")
	}
	if types := Types(cs); len(types) != 2 || types[0] != cs[0].Type {
		t.Errorf("Types = %v", types)
	}
}

func TestLoad_Empty(t *testing.T) {
	cs, err := Load(context.Background(), config.Sources{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 0 {
		t.Errorf("expected no contracts, got %d", len(cs))
	}
}

func TestLoad_Error(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(context.Background(), config.Sources{Proto: []string{"missing.proto"}, Dir: dir})
	if err == nil {
		t.Fatal("expected error")
	}
}
