package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/unzip"
)

// ExtractBundle unpacks a zip bundle of data files into destDir, creating it
// if needed, and returns the extraction directory. Bundles let a whole data
// set (index, contracts, bars) ship as one artifact.
func ExtractBundle(bundlePath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("extract %s: %w", bundlePath, err)
	}
	if err := unzip.Extract(bundlePath, destDir); err != nil {
		return "", fmt.Errorf("extract %s: %w", bundlePath, err)
	}
	return destDir, nil
}

// BundlePath resolves a data file name against an extracted bundle
// directory. An already-absolute name is returned unchanged.
func BundlePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
