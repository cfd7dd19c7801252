package domain

import "strings"

const (
	// FeatureCount is the input width of the productivity classifier.
	FeatureCount = 5
	// ClassCount is the output width: 0 = unproductive, 1 = productive.
	ClassCount = 2

	LabelUnproductive = 0
	LabelProductive   = 1

	longSessionSeconds = 300
)

// Sample is one local training example. Samples stay on the device.
type Sample struct {
	Features [FeatureCount]float64 `json:"features"`
	Label    int                   `json:"label"`
}

// ExtractFeatures converts an application session into classifier features:
// productive app, entertainment app, long session, name complexity, browser.
func ExtractFeatures(appName string, durationSeconds int) Sample {
	lower := strings.ToLower(appName)
	productive := strings.Contains(lower, "code") || strings.Contains(lower, "studio")

	s := Sample{
		Features: [FeatureCount]float64{
			indicator(productive),
			indicator(strings.Contains(lower, "youtube") || strings.Contains(lower, "netflix")),
			indicator(durationSeconds > longSessionSeconds),
			float64(len(appName)) / 20.0,
			indicator(strings.Contains(lower, "chrome")),
		},
		Label: LabelUnproductive,
	}
	if productive {
		s.Label = LabelProductive
	}
	return s
}

// SampleFromActivity extracts features from a tracked activity.
func SampleFromActivity(a *Activity) Sample {
	return ExtractFeatures(a.AppName, a.DurationSeconds)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
