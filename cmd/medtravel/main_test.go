package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/provider"
)

const landing = `<html><body><header><p>Menu</p></header><main><h1>Hello</h1><p>Our doctors</p></main></body></html>`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "medtravel") {
		t.Errorf("expected version output, got: %s", out)
	}
}

func TestTranslate_MissingLang(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "index.html", landing)

	_, _, err := execute(t, "translate", "--prefs", filepath.Join(dir, "prefs.json"), input)
	if err == nil || !strings.Contains(err.Error(), "--lang is required") {
		t.Fatalf("expected '--lang is required', got: %v", err)
	}
}

func TestTranslate_MissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "index.html", landing)

	_, _, err := execute(t, "translate", "--lang", "fr", "--prefs", filepath.Join(dir, "prefs.json"), "-o", filepath.Join(dir, "out.html"), input)
	if err == nil || !strings.Contains(err.Error(), "API key required") {
		t.Fatalf("expected API key error, got: %v", err)
	}
}

func TestTranslate_MockProviderRemembersLanguage(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "index.html", landing)
	prefs := filepath.Join(dir, "prefs.json")
	snapshot := filepath.Join(dir, "cache.json")
	output := filepath.Join(dir, "index.fr.html")

	_, _, err := execute(t, "translate", "--provider", "mock", "--lang", "fr_FR", "--quiet",
		"--prefs", prefs, "--cache-file", snapshot, "-o", output, input)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"<h1>Bonjour</h1>", "<p>Nos médecins</p>", "<p>Menu</p>", `lang="fr"`} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}

	// No --lang: the remembered language and the saved cache are used.
	out, _, err := execute(t, "translate", "--provider", "mock", "--json", "--quiet",
		"--prefs", prefs, "--cache-file", snapshot, input)
	if err != nil {
		t.Fatalf("second translate failed: %v", err)
	}
	var result translateOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\n%s", err, out)
	}
	if result.Language != "fr" {
		t.Errorf("language = %q, want fr", result.Language)
	}
	if result.CacheHits != 2 || result.Fetched != 0 {
		t.Errorf("expected 2 cache hits and no fetches, got %+v", result)
	}
}

func TestTranslate_Endpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req provider.APIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		out := make([]string, len(req.Texts))
		for i, t := range req.Texts {
			out[i] = strings.ToUpper(t) + " (" + req.TargetLang + ")"
		}
		_ = json.NewEncoder(w).Encode(provider.APIResponse{Success: true, TranslatedTexts: out})
	}))
	defer srv.Close()

	dir := t.TempDir()
	input := writeFile(t, dir, "index.html", landing)

	out, _, err := execute(t, "translate", "--endpoint", srv.URL, "--lang", "de", "--quiet",
		"--prefs", filepath.Join(dir, "prefs.json"), input)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(out, "<h1>HELLO (de)</h1>") {
		t.Errorf("expected endpoint translation, got: %s", out)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "test.html", "<p>Hello</p><p>World</p>")

	out, _, err := execute(t, "scan", input)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "World") {
		t.Errorf("scan should list both texts, got: %s", out)
	}
	if !strings.Contains(out, "2 translatable") {
		t.Errorf("scan should show node count, got: %s", out)
	}
}

func TestScan_JSON(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "test.html", landing)

	out, _, err := execute(t, "scan", "--json", input)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var result struct {
		NodeCount int      `json:"node_count"`
		Texts     []string `json:"texts"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if result.NodeCount != 2 || result.Texts[0] != "Hello" || result.Texts[1] != "Our doctors" {
		t.Errorf("unexpected scan result: %+v", result)
	}
}

func TestScan_Diff(t *testing.T) {
	dir := t.TempDir()
	prev := writeFile(t, dir, "old.html", "<main><h1>Hello</h1><p>Our doctors</p></main>")
	cur := writeFile(t, dir, "new.html", "<main><h1>Hello</h1><p>Our surgeons</p><p>Book now</p></main>")

	out, _, err := execute(t, "scan", "--diff", prev, "--json", cur)
	if err != nil {
		t.Fatalf("scan --diff failed: %v", err)
	}
	var result struct {
		Needs []string `json:"needs_translation"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(result.Needs) != 2 {
		t.Errorf("expected 2 strings to translate, got %v", result.Needs)
	}

	out, _, err = execute(t, "scan", "--diff", prev, prev)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No changes detected") {
		t.Errorf("identical pages should report no changes, got: %s", out)
	}
}

func TestCacheInspect(t *testing.T) {
	dir := t.TempDir()
	mem := cache.NewMemory(0)
	_ = mem.Set("fr", "Hello", "Bonjour")
	_ = mem.Set("fr", "Our doctors", "Nos médecins")
	_ = mem.Set("ar", "Hello", "مرحبا")
	path := filepath.Join(dir, "snap.json")
	if _, err := cache.NewExporter(mem).ExportToFile(path, nil); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "cache", "inspect", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"Entries:   3", "fr     2", "ar     1"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheImport_RequiresRedis(t *testing.T) {
	t.Setenv("MEDTRAVEL_TRANSLATION_REDIS_URL", "")
	_, _, err := execute(t, "cache", "import", filepath.Join(t.TempDir(), "snap.json"))
	if err == nil || !strings.Contains(err.Error(), "redis_url") {
		t.Fatalf("expected redis_url error, got: %v", err)
	}
}
