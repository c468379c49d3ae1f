package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAskArgsReorder(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			"flags trailing the question move first",
			[]string{"what is the notice period", "-output", "json"},
			[]string{"-output", "json", "what is the notice period"},
		},
		{
			"flags already first stay put",
			[]string{"-output", "json", "what is the notice period"},
			[]string{"-output", "json", "what is the notice period"},
		},
		{
			"question without flags is untouched",
			[]string{"what is the notice period"},
			[]string{"what is the notice period"},
		},
		{
			"empty input is untouched",
			[]string{},
			[]string{},
		},
		{
			"several words before the flags",
			[]string{"severance", "pay", "-server", ""},
			[]string{"-server", "", "severance", "pay"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := askArgsReorder(c.in); !reflect.DeepEqual(got, c.want) {
				t.Errorf("askArgsReorder(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestQuestionFromArgs(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want string
	}{
		{"single argument", []string{"severance"}, "severance"},
		{"words are joined", []string{"how", "is", "overtime", "paid"}, "how is overtime paid"},
		{"quoted phrase stays whole", []string{"how is overtime paid"}, "how is overtime paid"},
		{"no arguments", nil, ""},
		{"blank arguments", []string{"  ", " "}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := questionFromArgs(c.in); got != c.want {
				t.Errorf("questionFromArgs(%v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jai.yaml")
		content := `
server:
  host: "127.0.0.1"
  port: 9000
embedding:
  provider: "mock"
  dimensions: 64
storage:
  database_path: "jai.db"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, resolved, err := loadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if resolved != path {
			t.Errorf("resolved = %s, want %s", resolved, path)
		}
		if cfg.Server.Port != 9000 || cfg.Embedding.Provider != "mock" {
			t.Errorf("config values not applied: %+v", cfg)
		}
	})

	t.Run("default path falls back to cwd config.yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
debug: true
storage:
  database_path: "jai.db"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)

		cfg, resolved, err := loadConfig(defaultConfigPath)
		if err != nil {
			t.Fatal(err)
		}
		// t.TempDir can sit behind a symlink; compare resolved paths.
		wantPath, _ := filepath.EvalSymlinks(path)
		gotPath, _ := filepath.EvalSymlinks(resolved)
		if gotPath != wantPath {
			t.Errorf("resolved = %s, want %s", resolved, path)
		}
		if !cfg.Debug {
			t.Error("debug from cwd config.yaml should be set")
		}
	})
}
