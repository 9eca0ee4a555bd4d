package apk

import (
	"math"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// Confidence levels for extracted metadata
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// AssessQuality scores how many of the critical identity fields were recovered
func AssessQuality(meta *models.ApkMetadata) *models.Quality {
	q := &models.Quality{Detected: []string{}, Missing: []string{}}
	if meta == nil {
		meta = models.NewApkMetadata()
	}

	critical := []struct {
		name  string
		value string
	}{
		{"package", meta.Package},
		{"app_label", meta.AppLabel},
		{"version_name", meta.VersionName},
		{"version_code", meta.VersionCode},
		{"target_sdk", meta.TargetSDK},
	}

	for _, field := range critical {
		if models.IsDetected(field.value) {
			q.Detected = append(q.Detected, field.name)
		} else {
			q.Missing = append(q.Missing, field.name)
		}
	}

	pct := float64(len(q.Detected)) / float64(len(critical)) * 100
	q.Percentage = math.Round(pct*10) / 10

	switch {
	case q.Percentage >= 80:
		q.Confidence = ConfidenceHigh
	case q.Percentage >= 50:
		q.Confidence = ConfidenceMedium
	default:
		q.Confidence = ConfidenceLow
	}
	q.Reliable = q.Percentage >= 60

	return q
}
