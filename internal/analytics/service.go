package analytics

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/internal/logging"
	"github.com/gcbaptista/go-word-finder/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	topWordsLimit   = 10
)

// Service tracks completed finds in memory and summarizes them.
// Nothing is written to disk; the history is lost on restart.
type Service struct {
	mutex  sync.RWMutex
	events []model.FindEvent
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a new analytics service
func NewService(logger *zap.Logger) *Service {
	return &Service{
		events: make([]model.FindEvent, 0),
		now:    time.Now,
		logger: logging.OrNop(logger).Named("analytics"),
	}
}

// TrackFindEvent records a completed find. A zero Timestamp is set to now.
func (s *Service) TrackFindEvent(event model.FindEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Trim in batches once the backlog reaches twice the limit
	if len(s.events) >= 2*maxEventsToKeep {
		dropped := len(s.events) - maxEventsToKeep
		s.events = append(make([]model.FindEvent, 0, 2*maxEventsToKeep), s.events[dropped:]...)
		s.logger.Debug("dropped old find events", zap.Int("count", dropped))
	}
}

// retained returns the newest maxEventsToKeep events. Callers must hold the lock.
func (s *Service) retained() []model.FindEvent {
	if len(s.events) > maxEventsToKeep {
		return s.events[len(s.events)-maxEventsToKeep:]
	}
	return s.events
}

// EventCount returns the number of retained events
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.retained())
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)
	dayBefore := yesterday.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	events := s.retained()
	last24hEvents := filterEventsByTimeRange(events, yesterday, now.Add(time.Nanosecond))
	prev24hEvents := filterEventsByTimeRange(events, dayBefore, yesterday)
	lastWeekEvents := filterEventsByTimeRange(events, lastWeek, now.Add(time.Nanosecond))

	dashboard := model.AnalyticsDashboard{
		TotalFinds:           len(last24hEvents),
		FindsChangePercent:   calculateChangePercent(len(last24hEvents), len(prev24hEvents)),
		FoundRate:            foundRate(last24hEvents),
		AvgDuration:          calculateAvgDuration(last24hEvents),
		DurationChange:       calculateDurationChange(last24hEvents, prev24hEvents),
		EventsRetained:       len(events),
		FindPerformance24h:   hourlyPerformance(last24hEvents),
		PopularWords:         popularWords(lastWeekEvents),
		RootUsage:            rootUsage(lastWeekEvents),
		DurationDistribution: durationDistribution(last24hEvents),
	}

	for _, event := range last24hEvents {
		dashboard.TotalFilesScanned += event.FilesScanned
		dashboard.TotalTokensRead += event.TokensRead
		dashboard.TotalFilesSkipped += event.FilesSkipped
	}
	if len(last24hEvents) > 0 {
		dashboard.AvgFilesPerFind = float64(dashboard.TotalFilesScanned) / float64(len(last24hEvents))
	}

	return dashboard
}

// filterEventsByTimeRange returns events in [start, end)
func filterEventsByTimeRange(events []model.FindEvent, start, end time.Time) []model.FindEvent {
	var filtered []model.FindEvent
	for _, event := range events {
		if !event.Timestamp.Before(start) && event.Timestamp.Before(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

func foundRate(events []model.FindEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	found := 0
	for _, event := range events {
		if event.Found {
			found++
		}
	}
	return float64(found) / float64(len(events))
}

// calculateAvgDuration returns the average find duration in milliseconds
func calculateAvgDuration(events []model.FindEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.Duration
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// calculateDurationChange reports whether finds got slower ("up"), faster ("down") or neither
func calculateDurationChange(current, previous []model.FindEvent) string {
	currentAvg := calculateAvgDuration(current)
	previousAvg := calculateAvgDuration(previous)

	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	if change > 0.1 {
		return "up"
	} else if change < -0.1 {
		return "down"
	}
	return "stable"
}

// hourlyPerformance buckets events by hour of day
func hourlyPerformance(events []model.FindEvent) []model.FindPerformanceHourly {
	hourlyData := make(map[int][]model.FindEvent)
	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.FindPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		events := hourlyData[hour]
		performance = append(performance, model.FindPerformanceHourly{
			Hour:        hour,
			FindCount:   len(events),
			AvgDuration: calculateAvgDuration(events),
		})
	}
	return performance
}

// popularWords returns the most requested target words
func popularWords(events []model.FindEvent) []model.PopularWord {
	counts := make(map[string]int)
	for _, event := range events {
		for _, word := range event.Words {
			counts[word]++
		}
	}

	popular := make([]model.PopularWord, 0, len(counts))
	for word, count := range counts {
		popular = append(popular, model.PopularWord{Word: word, FindCount: count})
	}

	// Sort by count descending, then alphabetically for a stable order
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].FindCount != popular[j].FindCount {
			return popular[i].FindCount > popular[j].FindCount
		}
		return popular[i].Word < popular[j].Word
	})

	if len(popular) > topWordsLimit {
		popular = popular[:topWordsLimit]
	}
	return popular
}

// rootUsage returns usage statistics for each searched root
func rootUsage(events []model.FindEvent) []model.RootStats {
	type counter struct{ finds, found int }
	perRoot := make(map[string]*counter)
	for _, event := range events {
		c, ok := perRoot[event.Root]
		if !ok {
			c = &counter{}
			perRoot[event.Root] = c
		}
		c.finds++
		if event.Found {
			c.found++
		}
	}

	usage := make([]model.RootStats, 0, len(perRoot))
	for root, c := range perRoot {
		usage = append(usage, model.RootStats{
			Root:      root,
			FindCount: c.finds,
			FoundRate: float64(c.found) / float64(c.finds),
		})
	}

	sort.Slice(usage, func(i, j int) bool {
		if usage[i].FindCount != usage[j].FindCount {
			return usage[i].FindCount > usage[j].FindCount
		}
		return usage[i].Root < usage[j].Root
	})
	return usage
}

// durationDistribution returns the find duration distribution
func durationDistribution(events []model.FindEvent) model.DurationDistribution {
	dist := model.DurationDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.Duration.Milliseconds()
		switch {
		case ms < 10:
			dist.Bucket0To10ms++
		case ms < 100:
			dist.Bucket10To100ms++
		case ms < 1000:
			dist.Bucket100To1000ms++
		default:
			dist.Bucket1000msPlus++
		}
	}

	dist.Percentage0To10 = float64(dist.Bucket0To10ms) / float64(total) * 100
	dist.Percentage10To100 = float64(dist.Bucket10To100ms) / float64(total) * 100
	dist.Percentage100To1k = float64(dist.Bucket100To1000ms) / float64(total) * 100
	dist.Percentage1000Plus = float64(dist.Bucket1000msPlus) / float64(total) * 100

	return dist
}
