package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
)

type memConfig struct {
	recs    map[string]models.ConfigRecord
	deleted []string
}

func (m *memConfig) Get(_ context.Context, name string) (models.ConfigRecord, error) {
	if rec, ok := m.recs[name]; ok {
		return rec, nil
	}
	return models.ConfigRecord{Name: name, Data: map[string]string{}}, nil
}

func (m *memConfig) Save(_ context.Context, rec models.ConfigRecord) error {
	m.recs[rec.Name] = rec
	return nil
}

func (m *memConfig) Exists(_ context.Context, name string) (bool, error) {
	_, ok := m.recs[name]
	return ok, nil
}

func (m *memConfig) Delete(_ context.Context, name string) error {
	delete(m.recs, name)
	m.deleted = append(m.deleted, name)
	return nil
}

type memSingletons struct {
	types []string
	nodes map[string]int64 // "type/lang" -> id
	err   error
}

func (m *memSingletons) AvailableContentTypes(context.Context) ([]string, error) {
	return m.types, m.err
}

func (m *memSingletons) ExistsSingletonOfType(_ context.Context, ct, lang string) (int64, bool, error) {
	id, ok := m.nodes[ct+"/"+lang]
	return id, ok, nil
}

func run(t *testing.T, cfg *memConfig, single *memSingletons, args ...string) (string, error) {
	t.Helper()
	connect := func(context.Context, *Options) (*Deps, func(), error) {
		return &Deps{Config: cfg, Singletons: single}, func() {}, nil
	}
	cmd := NewRootCmd(connect)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newConfig(values map[string]string) *memConfig {
	return &memConfig{recs: map[string]models.ConfigRecord{
		models.ExceptionConfigName: {Name: models.ExceptionConfigName, Data: values},
	}}
}

func TestSettingsGet(t *testing.T) {
	cfg := newConfig(map[string]string{"404": "Missing"})
	out, err := run(t, cfg, &memSingletons{}, "settings", "get")
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	if !strings.Contains(out, "404  Missing") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "403  (default)") {
		t.Errorf("output = %q", out)
	}
}

func TestSettingsGet_Resolve(t *testing.T) {
	cfg := newConfig(map[string]string{"404": "Missing"})
	single := &memSingletons{nodes: map[string]int64{"Missing/en": 17, "Missing/fr": 18}}

	out, err := run(t, cfg, single, "settings", "get", "--resolve", "--languages", "en,fr,de", "--base-url", "https://example.org/")
	if err != nil {
		t.Fatalf("settings get --resolve: %v", err)
	}
	for _, want := range []string{
		"https://example.org/node/17\n",
		"https://example.org/node/18?lang=fr",
		"(default, no node)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsSet_OnlyChangedFlags(t *testing.T) {
	cfg := newConfig(map[string]string{"40x": "Oops", "403": "Denied", "404": "Missing"})
	single := &memSingletons{types: []string{"Denied", "Gone", "Missing", "Oops"}}

	if _, err := run(t, cfg, single, "settings", "set", "--404", "Gone", "--403", ""); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	got := models.ExceptionSettingsFromRecord(cfg.recs[models.ExceptionConfigName])
	if got.ClientError != "Oops" || got.AccessDenied != "" || got.NotFound != "Gone" {
		t.Errorf("settings = %+v", got)
	}
	if got.UpdatedByName != "exceptionctl" {
		t.Errorf("UpdatedByName = %q", got.UpdatedByName)
	}
}

func TestSettingsSet_RejectsUnknownType(t *testing.T) {
	cfg := newConfig(map[string]string{})
	single := &memSingletons{types: []string{"Missing"}}

	if _, err := run(t, cfg, single, "settings", "set", "--404", "Article"); err == nil {
		t.Fatal("expected error for a type that is not only-one")
	}
	if v := cfg.recs[models.ExceptionConfigName].Data["404"]; v != "" {
		t.Errorf("404 = %q after rejected set", v)
	}

	if _, err := run(t, cfg, single, "settings", "set", "--404", "Article", "--force"); err != nil {
		t.Fatalf("--force: %v", err)
	}
	if v := cfg.recs[models.ExceptionConfigName].Data["404"]; v != "Article" {
		t.Errorf("404 = %q after forced set", v)
	}
}

func TestSettingsSet_NoFlags(t *testing.T) {
	if _, err := run(t, newConfig(nil), &memSingletons{}, "settings", "set"); err == nil {
		t.Error("expected error when no flag is given")
	}
}

func TestSettingsReset(t *testing.T) {
	cfg := newConfig(map[string]string{"404": "Missing"})
	out, err := run(t, cfg, &memSingletons{}, "settings", "reset")
	if err != nil {
		t.Fatalf("settings reset: %v", err)
	}
	if len(cfg.deleted) != 1 || !strings.Contains(out, "cleared") {
		t.Errorf("deleted = %v, out = %q", cfg.deleted, out)
	}

	out, err = run(t, cfg, &memSingletons{}, "settings", "reset")
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if len(cfg.deleted) != 1 || !strings.Contains(out, "defaults already apply") {
		t.Errorf("second reset deleted = %v, out = %q", cfg.deleted, out)
	}
}

func TestTypesList(t *testing.T) {
	out, err := run(t, newConfig(nil), &memSingletons{types: []string{"Denied", "Missing"}}, "types", "list")
	if err != nil {
		t.Fatalf("types list: %v", err)
	}
	if out != "Denied\nMissing\n" {
		t.Errorf("output = %q", out)
	}

	_, err = run(t, newConfig(nil), &memSingletons{err: errors.New("down")}, "types", "list")
	if err == nil {
		t.Error("expected store error to surface")
	}
}
