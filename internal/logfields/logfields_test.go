package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Stage", KeyStage, "prepare_logos", Stage("prepare_logos")},
		{"Item", KeyItem, "Kubernetes", Item("Kubernetes")},
		{"Logo", KeyLogo, "kubernetes.svg", Logo("kubernetes.svg")},
		{"Digest", KeyDigest, "abc", Digest("abc")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "https://example.com", URL("https://example.com")},
		{"Collector", KeyCollector, "github", Collector("github")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s key mismatch: got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s value mismatch: got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected count attr: %v", a)
	}
	if a := Concurrency(20); a.Key != KeyConcurrency || a.Value.Int64() != 20 {
		t.Fatalf("unexpected concurrency attr: %v", a)
	}
	if a := Status(404); a.Key != KeyStatus || a.Value.Int64() != 404 {
		t.Fatalf("unexpected status attr: %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", a)
	}
}
