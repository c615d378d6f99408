package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyItem        = "item"
	KeyItems       = "items"
	KeyLogo        = "logo"
	KeyDigest      = "digest"
	KeyPath        = "path"
	KeyURL         = "url"
	KeyCollector   = "collector"
	KeyCount       = "count"
	KeyConcurrency = "concurrency"
	KeyAttempt     = "attempt"
	KeyStatus      = "status"
	KeyError       = "error"
	KeySubject     = "subject"
	KeyBucket      = "bucket"
	KeyEvent       = "event"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Item(name string) slog.Attr      { return slog.String(KeyItem, name) }
func Items(names []string) slog.Attr  { return slog.Any(KeyItems, names) }
func Logo(ref string) slog.Attr       { return slog.String(KeyLogo, ref) }
func Digest(d string) slog.Attr       { return slog.String(KeyDigest, d) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Collector(name string) slog.Attr { return slog.String(KeyCollector, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Concurrency(n int) slog.Attr     { return slog.Int(KeyConcurrency, n) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Bucket(b string) slog.Attr       { return slog.String(KeyBucket, b) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
