package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-word-finder/model"
)

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func TestAnalyticsService_TrackFindEvent(t *testing.T) {
	service := NewService(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = fixedClock(now)

	event := model.FindEvent{
		Root:     "/data",
		Words:    []string{"alpha", "beta"},
		Found:    true,
		Mode:     "sync",
		Duration: 5 * time.Millisecond,
	}
	service.TrackFindEvent(event)

	if len(service.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(service.events))
	}

	stored := service.events[0]
	if stored.Root != event.Root {
		t.Errorf("Expected Root %s, got %s", event.Root, stored.Root)
	}
	if !stored.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp to default to now, got %v", stored.Timestamp)
	}
}

func TestAnalyticsService_EventLimit(t *testing.T) {
	service := NewService(nil)
	for i := 0; i < maxEventsToKeep+5; i++ {
		service.TrackFindEvent(model.FindEvent{Root: "/data", FilesScanned: i})
	}

	require.Equal(t, maxEventsToKeep, service.EventCount())
	assert.Equal(t, 5, service.retained()[0].FilesScanned, "oldest events should be dropped first")
}

func TestAnalyticsService_EventTrimIsBatched(t *testing.T) {
	service := NewService(nil)
	for i := 0; i < 2*maxEventsToKeep-1; i++ {
		service.TrackFindEvent(model.FindEvent{Root: "/data", FilesScanned: i})
	}

	// Below the trim threshold the backing slice keeps growing
	assert.Len(t, service.events, 2*maxEventsToKeep-1)
	assert.Equal(t, maxEventsToKeep, service.EventCount())

	service.TrackFindEvent(model.FindEvent{Root: "/data", FilesScanned: 2*maxEventsToKeep - 1})

	require.Len(t, service.events, maxEventsToKeep)
	assert.Equal(t, maxEventsToKeep, service.events[0].FilesScanned)
	assert.Equal(t, 2*maxEventsToKeep-1, service.events[maxEventsToKeep-1].FilesScanned)
	assert.Equal(t, maxEventsToKeep, service.GetDashboardData().EventsRetained)
}

func TestAnalyticsService_GetDashboardData(t *testing.T) {
	service := NewService(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = fixedClock(now)

	events := []model.FindEvent{
		{Root: "/a", Words: []string{"alpha", "beta"}, Found: true, Duration: 5 * time.Millisecond, FilesScanned: 2, TokensRead: 10, Timestamp: now.Add(-1 * time.Hour)},
		{Root: "/a", Words: []string{"alpha"}, Found: false, Duration: 50 * time.Millisecond, FilesScanned: 4, TokensRead: 30, FilesSkipped: 1, Timestamp: now.Add(-2 * time.Hour)},
		{Root: "/b", Words: []string{"gamma"}, Found: true, Duration: 2 * time.Second, FilesScanned: 6, Timestamp: now.Add(-3 * time.Hour)},
		// Previous day, counts only towards trends and weekly stats
		{Root: "/b", Words: []string{"gamma"}, Found: true, Duration: time.Millisecond, Timestamp: now.Add(-30 * time.Hour)},
	}
	for _, event := range events {
		service.TrackFindEvent(event)
	}

	dashboard := service.GetDashboardData()

	assert.Equal(t, 3, dashboard.TotalFinds)
	assert.InDelta(t, 200.0, dashboard.FindsChangePercent, 0.001)
	assert.InDelta(t, 2.0/3.0, dashboard.FoundRate, 0.001)
	assert.Equal(t, 12, dashboard.TotalFilesScanned)
	assert.Equal(t, 40, dashboard.TotalTokensRead)
	assert.Equal(t, 1, dashboard.TotalFilesSkipped)
	assert.InDelta(t, 4.0, dashboard.AvgFilesPerFind, 0.001)
	assert.Equal(t, 4, dashboard.EventsRetained)
	assert.Equal(t, "up", dashboard.DurationChange)

	if len(dashboard.FindPerformance24h) != 24 {
		t.Errorf("Expected 24 hourly performance entries, got %d", len(dashboard.FindPerformance24h))
	}

	require.NotEmpty(t, dashboard.PopularWords)
	assert.Equal(t, "alpha", dashboard.PopularWords[0].Word)
	assert.Equal(t, 2, dashboard.PopularWords[0].FindCount)

	require.Len(t, dashboard.RootUsage, 2)
	assert.Equal(t, "/a", dashboard.RootUsage[0].Root)
	assert.InDelta(t, 0.5, dashboard.RootUsage[0].FoundRate, 0.001)
	assert.InDelta(t, 1.0, dashboard.RootUsage[1].FoundRate, 0.001)

	dist := dashboard.DurationDistribution
	assert.Equal(t, 1, dist.Bucket0To10ms)
	assert.Equal(t, 1, dist.Bucket10To100ms)
	assert.Equal(t, 1, dist.Bucket1000msPlus)
}

func TestAnalyticsService_EmptyDashboard(t *testing.T) {
	dashboard := NewService(nil).GetDashboardData()

	assert.Equal(t, 0, dashboard.TotalFinds)
	assert.Equal(t, 0.0, dashboard.FoundRate)
	assert.Equal(t, "stable", dashboard.DurationChange)
	assert.Empty(t, dashboard.PopularWords)
	assert.Empty(t, dashboard.RootUsage)
}
