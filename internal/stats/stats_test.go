package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

const testKeyStr = "aaaaaaaa-bbbb-1ccc-8ddd-eeeeeeeeeeee"

func testKey(t *testing.T) player.Key {
	t.Helper()
	key, err := player.ParseKey(testKeyStr)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	return key
}

func writeWorldFile(t *testing.T, serverDir, subdir, name, content string) {
	t.Helper()
	dir := filepath.Join(serverDir, "world", subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoad_Modern(t *testing.T) {
	serverDir := t.TempDir()
	writeWorldFile(t, serverDir, "stats", testKeyStr+".json",
		`{"stats":{"minecraft:mined":{"minecraft:stone":42}},"DataVersion":3700}`)

	r := NewReader(serverDir)
	result := r.Load(testKey(t))

	if !result.OK() {
		t.Fatalf("Degraded = %q, want clean read", result.Degraded)
	}
	mined, ok := result.Merged["mined"].(map[string]any)
	if !ok {
		t.Fatalf("merged mined category missing: %v", result.Merged)
	}
	if mined["stone"] != float64(42) {
		t.Errorf("mined.stone = %v, want 42", mined["stone"])
	}
	// The raw source document is preserved alongside the merged view.
	if _, ok := result.Source["stats"]; !ok {
		t.Error("source document not preserved")
	}
}

func TestLoad_Missing(t *testing.T) {
	r := NewReader(t.TempDir())
	result := r.Load(testKey(t))

	if result.Degraded != DegradedMissing {
		t.Errorf("Degraded = %q, want %q", result.Degraded, DegradedMissing)
	}
	if result.Merged == nil || len(result.Merged) != 0 {
		t.Errorf("Merged = %v, want empty map", result.Merged)
	}
	if result.Source == nil || len(result.Source) != 0 {
		t.Errorf("Source = %v, want empty map", result.Source)
	}
}

func TestLoad_Malformed(t *testing.T) {
	serverDir := t.TempDir()
	writeWorldFile(t, serverDir, "stats", testKeyStr+".json", "{nope")

	r := NewReader(serverDir)
	result := r.Load(testKey(t))

	if result.Degraded != DegradedMalformed {
		t.Errorf("Degraded = %q, want %q", result.Degraded, DegradedMalformed)
	}
	if len(result.Merged) != 0 || len(result.Source) != 0 {
		t.Error("malformed stats should degrade to empty maps")
	}
}

func TestLoadAdvancements(t *testing.T) {
	serverDir := t.TempDir()
	writeWorldFile(t, serverDir, "advancements", testKeyStr+".json",
		`{"minecraft:story/mine_stone":{"done":true},"DataVersion":3700}`)

	r := NewReader(serverDir)
	adv := r.LoadAdvancements(testKey(t))

	if !adv.OK() {
		t.Fatalf("Degraded = %q, want clean read", adv.Degraded)
	}
	if _, ok := adv.Data["minecraft:story/mine_stone"]; !ok {
		t.Error("advancement entry missing")
	}
	if _, ok := adv.Data["DataVersion"]; ok {
		t.Error("DataVersion should be stripped")
	}
}

func TestLoadAdvancements_Missing(t *testing.T) {
	r := NewReader(t.TempDir())
	adv := r.LoadAdvancements(testKey(t))

	if adv.Degraded != DegradedMissing {
		t.Errorf("Degraded = %q, want %q", adv.Degraded, DegradedMissing)
	}
	if adv.Data == nil || len(adv.Data) != 0 {
		t.Errorf("Data = %v, want empty map", adv.Data)
	}
}
