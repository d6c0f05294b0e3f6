package app

import (
	"flag"
	"testing"
)

func TestConfigBindAndOptions(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("dla", flag.ContinueOnError)
	cfg.Bind(fs)
	err := fs.Parse([]string{
		"-sim", "dla-nearest",
		"-seed", "7",
		"-config", "run.toml",
		"-set", "stickyness=0.5",
		"-set", " growth_rate = 20 ",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Sim != "dla-nearest" || cfg.Seed != 7 || len(cfg.Sets) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	want := map[string]string{"config": "run.toml", "stickyness": "0.5", "growth_rate": "20"}
	for k, v := range want {
		if opts[k] != v {
			t.Fatalf("option %s = %q, want %q", k, opts[k], v)
		}
	}
}

func TestConfigOptionsRejectsMalformedSet(t *testing.T) {
	cfg := NewConfig()
	cfg.Sets = KVList{"stickyness"}
	if _, err := cfg.Options(); err == nil {
		t.Fatal("expected error for missing '='")
	}
}
