// Package report builds the optional JSON run report of the generator.
package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/RobinMarchart/roll-bot/app/dice"
	"github.com/RobinMarchart/roll-bot/app/hist"
	"github.com/google/uuid"
	"github.com/minio/highwayhash"
	"github.com/ohler55/ojg/oj"
)

// fingerprintKey is the hardcoded key used for artifact fingerprints.
// A fixed key keeps identical file content at the same fingerprint across runs.
var fingerprintKey = []byte("roll-bot artifact key\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")

// Artifact identifies one written file by path and content fingerprint.
type Artifact struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Report describes one generator run.
type Report struct {
	RunID      string     `json:"run_id"`
	Expression string     `json:"expression"`
	Label      string     `json:"label,omitempty"`
	Rolls      int64      `json:"rolls"`
	Stats      hist.Stats `json:"stats"`
	Artifacts  []Artifact `json:"artifacts"`
}

// Build assembles a report for a finished run, fingerprinting every artifact.
func Build(labeled *dice.Labeled, rolls int64, stats hist.Stats, artifacts ...string) (*Report, error) {
	r := &Report{
		RunID:      uuid.New().String(),
		Expression: labeled.Expression.String(),
		Label:      labeled.Label,
		Rolls:      rolls,
		Stats:      stats,
		Artifacts:  make([]Artifact, 0, len(artifacts)),
	}
	for _, path := range artifacts {
		fp, err := FingerprintFile(path)
		if err != nil {
			return nil, err
		}
		r.Artifacts = append(r.Artifacts, Artifact{Path: path, Fingerprint: fp})
	}
	return r, nil
}

// FingerprintFile calculates a HighwayHash of the file content using the hardcoded key.
func FingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash, err := highwayhash.New(fingerprintKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}

	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// WriteFile writes the report as JSON.
func (r *Report) WriteFile(path string) error {
	b, err := oj.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
