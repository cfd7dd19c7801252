package services

import (
	"context"
	"time"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/ports/output"
)

// ActivityService stores tracked sessions and builds the classroom dashboards.
type ActivityService struct {
	repo ports.ActivityRepository
	now  func() time.Time
}

func NewActivityService(repo ports.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

func (s *ActivityService) Track(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if err := activity.Validate(); err != nil {
		return nil, err
	}
	if activity.TimestampEnd.IsZero() {
		activity.TimestampEnd = s.now().UTC()
	}
	if activity.TimestampStart.IsZero() {
		activity.TimestampStart = activity.TimestampEnd.Add(-time.Duration(activity.DurationSeconds) * time.Second)
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *ActivityService) List(ctx context.Context, filter ports.ActivityListFilter) ([]*domain.Activity, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// StudentDashboard summarises a student's activity over the last 24 hours.
func (s *ActivityService) StudentDashboard(ctx context.Context, userID int64) (*domain.StudentDashboard, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidUserID
	}

	since := s.now().UTC().Add(-domain.DashboardWindow)
	activities, _, err := s.repo.List(ctx, ports.ActivityListFilter{UserID: userID, Since: since})
	if err != nil {
		return nil, err
	}
	return domain.NewStudentDashboard(userID, since, activities), nil
}

// ClassroomStats returns per-student totals over the last 24 hours.
func (s *ActivityService) ClassroomStats(ctx context.Context) (*domain.ClassroomStats, error) {
	since := s.now().UTC().Add(-domain.DashboardWindow)
	stats, err := s.repo.StudentStats(ctx, since)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.StudentStat{}
	}

	total := 0.0
	for _, st := range stats {
		total += st.TotalMinutes
	}
	return &domain.ClassroomStats{
		Since:              since,
		Students:           stats,
		TotalClassroomTime: total,
	}, nil
}
