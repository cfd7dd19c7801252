package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	MaxAppNameLen     = 50
	MaxWindowTitleLen = 200
	DefaultFLScore    = 0.5

	// MaxDurationSeconds is the largest duration the INTEGER column holds.
	MaxDurationSeconds = math.MaxInt32

	// DashboardWindow is how far back dashboards look.
	DashboardWindow = 24 * time.Hour
)

// Activity is one focused application session of a student.
type Activity struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AppName         string    `json:"app_name"`
	WindowTitle     string    `json:"window_title"`
	DurationSeconds int       `json:"duration_seconds"`
	FLScore         float64   `json:"fl_score"`
	TimestampStart  time.Time `json:"timestamp_start"`
	TimestampEnd    time.Time `json:"timestamp_end"`
}

// Validate checks the activity and normalises truncated fields in place.
func (a *Activity) Validate() error {
	if a.UserID <= 0 {
		return ErrInvalidUserID
	}
	a.AppName = strings.TrimSpace(a.AppName)
	if a.AppName == "" {
		return ErrInvalidAppName
	}
	if a.DurationSeconds < 0 || a.DurationSeconds > MaxDurationSeconds {
		return ErrInvalidDuration
	}
	if !a.TimestampStart.IsZero() && !a.TimestampEnd.IsZero() && a.TimestampStart.After(a.TimestampEnd) {
		return ErrInvalidTimeRange
	}
	a.AppName = truncate(a.AppName, MaxAppNameLen)
	a.WindowTitle = truncate(a.WindowTitle, MaxWindowTitleLen)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	// window title beats process name for browser-hosted apps
	titleDisplayNames = []struct{ match, name string }{
		{"youtube", "YouTube"},
		{"youtu.be", "YouTube"},
		{"perplexity", "Perplexity"},
		{"netflix", "Netflix"},
	}

	appDisplayNames = []struct{ match, name string }{
		{"youtube.com", "YouTube"},
		{"chrome", "Chrome"},
		{"whatsapp", "WhatsApp"},
		{"instagram.com", "Instagram"},
		{"telegram", "Telegram"},
		{"discord", "Discord"},
		{"code", "VS Code"},
		{"spotify.com", "Spotify"},
	}

	productiveKeywords = []string{"code", "vscode", "studio", "notepad", "word", "excel"}
)

// DisplayName maps a raw process name and window title to the name shown on dashboards.
func DisplayName(rawApp, windowTitle string) string {
	if rawApp == "" {
		return "Unknown"
	}
	rawLower := strings.ToLower(rawApp)
	titleLower := strings.ToLower(windowTitle)

	for _, m := range titleDisplayNames {
		if strings.Contains(titleLower, m.match) {
			return m.name
		}
	}
	for _, m := range appDisplayNames {
		if strings.Contains(rawLower, m.match) {
			return m.name
		}
	}

	base := rawApp
	if i := strings.LastIndex(base, `\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".exe")
	return titleCase(base)
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range strings.ToLower(s) {
		isLetter := ('a' <= r && r <= 'z') || r > 127
		if isLetter && start {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
		start = !isLetter
	}
	return b.String()
}

// IsProductive reports whether a display name counts as productive time.
func IsProductive(displayName string) bool {
	lower := strings.ToLower(displayName)
	for _, k := range productiveKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// MergedActivity is the per-app total shown on a dashboard.
type MergedActivity struct {
	AppName      string  `json:"app_name"`
	TotalMinutes float64 `json:"total_minutes"`
	IsProductive bool    `json:"is_productive"`
}

// MergeActivities sums durations by display name, longest first.
func MergeActivities(activities []*Activity) []MergedActivity {
	totals := make(map[string]int)
	for _, a := range activities {
		totals[DisplayName(a.AppName, a.WindowTitle)] += a.DurationSeconds
	}

	merged := make([]MergedActivity, 0, len(totals))
	for name, secs := range totals {
		merged = append(merged, MergedActivity{
			AppName:      name,
			TotalMinutes: roundTenth(float64(secs) / 60),
			IsProductive: IsProductive(name),
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].TotalMinutes != merged[j].TotalMinutes {
			return merged[i].TotalMinutes > merged[j].TotalMinutes
		}
		return merged[i].AppName < merged[j].AppName
	})
	return merged
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// StudentDashboard summarises one student's recent activity.
type StudentDashboard struct {
	UserID            int64            `json:"user_id"`
	Since             time.Time        `json:"since"`
	ActivityCount     int              `json:"activity_count"`
	TotalMinutes      float64          `json:"total_duration_minutes"`
	ProductiveMinutes float64          `json:"productive_minutes"`
	MergedActivities  []MergedActivity `json:"merged_activities"`
	Activities        []*Activity      `json:"activities"`
}

// NewStudentDashboard builds a dashboard from activities already filtered to the window.
func NewStudentDashboard(userID int64, since time.Time, activities []*Activity) *StudentDashboard {
	merged := MergeActivities(activities)

	totalSecs := 0
	for _, a := range activities {
		totalSecs += a.DurationSeconds
	}
	productive := 0.0
	for _, m := range merged {
		if m.IsProductive {
			productive += m.TotalMinutes
		}
	}

	if activities == nil {
		activities = []*Activity{}
	}
	return &StudentDashboard{
		UserID:            userID,
		Since:             since,
		ActivityCount:     len(activities),
		TotalMinutes:      float64(totalSecs) / 60,
		ProductiveMinutes: roundTenth(productive),
		MergedActivities:  merged,
		Activities:        activities,
	}
}

// StudentStat is one row of the classroom overview.
type StudentStat struct {
	UserID        int64   `json:"user_id"`
	TotalMinutes  float64 `json:"total_minutes"`
	ActivityCount int     `json:"activity_count"`
}

// ClassroomStats is the classroom overview for the dashboard window.
type ClassroomStats struct {
	Since              time.Time     `json:"since"`
	Students           []StudentStat `json:"students"`
	TotalClassroomTime float64       `json:"total_classroom_minutes"`
}
