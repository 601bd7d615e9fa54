package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RobinMarchart/roll-bot/app/dice"
	"github.com/RobinMarchart/roll-bot/app/hist"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func TestFingerprintFile(t *testing.T) {
	first := writeArtifact(t, "a.npy", "same content")
	second := writeArtifact(t, "b.npy", "same content")
	third := writeArtifact(t, "c.npy", "other content")

	fpFirst, err := FingerprintFile(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpSecond, err := FingerprintFile(second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fpThird, err := FingerprintFile(third)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fpFirst) != 64 {
		t.Errorf("expected a 64 character hex digest, got %q", fpFirst)
	}
	if fpFirst != fpSecond {
		t.Errorf("expected identical fingerprints for identical content, got %q and %q", fpFirst, fpSecond)
	}
	if fpFirst == fpThird {
		t.Errorf("expected different fingerprints for different content, got %q twice", fpFirst)
	}
}

func TestFingerprintFileMissing(t *testing.T) {
	if _, err := FingerprintFile(filepath.Join(t.TempDir(), "missing.npy")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBuildAndWrite(t *testing.T) {
	labeled, err := dice.Parse("2d6+3 # damage")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	artifact := writeArtifact(t, "rolls.npy", "artifact bytes")
	stats := hist.Stats{Events: 10, Mean: 10.2, StdDev: 2.4, Entropy: 1.5}

	rep, err := Build(labeled, 10, stats, artifact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(rep.RunID); err != nil {
		t.Errorf("expected a UUID run id, got %q", rep.RunID)
	}
	if rep.Expression != "2d6 + 3" {
		t.Errorf("expected expression %q, got %q", "2d6 + 3", rep.Expression)
	}
	if rep.Label != "damage" {
		t.Errorf("expected label %q, got %q", "damage", rep.Label)
	}
	if len(rep.Artifacts) != 1 || len(rep.Artifacts[0].Fingerprint) != 64 {
		t.Fatalf("expected one fingerprinted artifact, got %+v", rep.Artifacts)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := rep.WriteFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := oj.ParseString(string(b))
	if err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("expected a JSON object, got %T", parsed)
	}
	if m["run_id"] != rep.RunID {
		t.Errorf("expected run id %q, got %v", rep.RunID, m["run_id"])
	}
	if m["rolls"] != int64(10) {
		t.Errorf("expected 10 rolls, got %v", m["rolls"])
	}
	statsObj, ok := m["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected a stats object, got %v", m["stats"])
	}
	if statsObj["events"] != int64(10) {
		t.Errorf("expected 10 events, got %v", statsObj["events"])
	}
}

func TestBuildMissingArtifact(t *testing.T) {
	labeled, err := dice.Parse("d6")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := Build(labeled, 1, hist.Stats{}, filepath.Join(t.TempDir(), "missing.npy")); err == nil {
		t.Error("expected an error for a missing artifact")
	}
}
