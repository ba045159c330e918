// Package security validates the file paths the CLI writes reports and
// chart exports to.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/hydro.report/internal/water"
)

// canonical resolves symlinks in path. For a path that does not exist yet
// the nearest existing ancestor is resolved and the rest re-attached, so a
// symlinked parent cannot smuggle a new file out of the directory.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rest, _ := filepath.Rel(dir, abs)
			return filepath.Join(resolved, rest), nil
		}
		if dir == filepath.Dir(dir) {
			return abs, nil
		}
	}
}

// ValidatePathWithinDirectory rejects filePath when it resolves outside
// dir, following symlinks on both sides.
func ValidatePathWithinDirectory(filePath, dir string) error {
	target, err := canonical(filePath)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory path: %w", err)
	}
	root, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return fmt.Errorf("path is outside %s: %w", dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s escapes %s", filePath, dir)
	}
	return nil
}

// ExportPath joins name onto dir and validates the result stays inside dir.
// An absolute name is accepted only when it already lies within dir.
func ExportPath(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty export file name")
	}
	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(dir, name)
	}
	if err := ValidatePathWithinDirectory(path, dir); err != nil {
		return "", err
	}
	return path, nil
}

// ReportBaseName builds a file name stem for a report about p, e.g.
// "hydro_12.50000N_76.50000E_20251102T0900".
func ReportBaseName(p water.Point, at time.Time) string {
	ns, ew := "N", "E"
	lat, lng := p.Lat, p.Lng
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lng < 0 {
		ew, lng = "W", -lng
	}
	return SanitizeFilename(fmt.Sprintf("hydro_%.5f%s_%.5f%s_%s", lat, ns, lng, ew, at.UTC().Format("20060102T1504")))
}

// SanitizeFilename keeps ASCII letters, digits, '.', '_' and '-', replacing
// every other run of characters with one underscore. The result is at most
// 128 bytes and never empty.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-'
		if !ok {
			pendingUnderscore = true
			continue
		}
		if pendingUnderscore && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingUnderscore = false
		if b.Len() >= maxLen {
			break
		}
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	if out == "" {
		return "unknown"
	}
	return out
}
