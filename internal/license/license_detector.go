// Package license detects licenses from LICENSE files in project roots.
package license

import (
	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"
)

// Detector handles file-based license detection
type Detector struct{}

// NewDetector creates a license detector
func NewDetector() *Detector {
	return &Detector{}
}

// DetectInDirectory returns the highest-confidence license detected from
// LICENSE files in a directory, or "" when nothing clears the 0.9
// confidence bar.
func (d *Detector) DetectInDirectory(dirPath string) string {
	fs, err := filer.FromDirectory(dirPath)
	if err != nil {
		return ""
	}

	matches, err := licensedb.Detect(fs)
	if err != nil {
		return ""
	}

	best := ""
	var bestConfidence float32
	for licenseID, match := range matches {
		if match.Confidence > 0.9 && match.Confidence > bestConfidence {
			best = licenseID
			bestConfidence = match.Confidence
		}
	}

	return best
}
