package model

import "time"

// FindEvent records one completed find for analytics tracking
type FindEvent struct {
	Root         string        `json:"root"`
	Words        []string      `json:"words"`
	Found        bool          `json:"found"`
	Mode         string        `json:"mode"` // "sync" or "async"
	Duration     time.Duration `json:"duration"`
	FilesScanned int           `json:"files_scanned"`
	TokensRead   int           `json:"tokens_read"`
	FilesSkipped int           `json:"files_skipped"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularWord represents how often a word appeared in target word lists
type PopularWord struct {
	Word      string `json:"word"`
	FindCount int    `json:"find_count"`
}

// RootStats represents find statistics for one search root
type RootStats struct {
	Root      string  `json:"root"`
	FindCount int     `json:"find_count"`
	FoundRate float64 `json:"found_rate"`
}

// DurationDistribution represents find duration distribution buckets
type DurationDistribution struct {
	Bucket0To10ms      int     `json:"bucket_0_10ms"`
	Bucket10To100ms    int     `json:"bucket_10_100ms"`
	Bucket100To1000ms  int     `json:"bucket_100_1000ms"`
	Bucket1000msPlus   int     `json:"bucket_1000ms_plus"`
	Percentage0To10    float64 `json:"percentage_0_10"`
	Percentage10To100  float64 `json:"percentage_10_100"`
	Percentage100To1k  float64 `json:"percentage_100_1000"`
	Percentage1000Plus float64 `json:"percentage_1000_plus"`
}

// FindPerformanceHourly represents hourly find performance data
type FindPerformanceHourly struct {
	Hour        int   `json:"hour"`
	FindCount   int   `json:"find_count"`
	AvgDuration int64 `json:"avg_duration"` // in milliseconds
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	// Summary metrics (last 24 hours)
	TotalFinds         int     `json:"total_finds"`
	FindsChangePercent float64 `json:"finds_change_percent"`
	FoundRate          float64 `json:"found_rate"`
	AvgDuration        int64   `json:"avg_duration"` // in milliseconds
	DurationChange     string  `json:"duration_change"`
	TotalFilesScanned  int     `json:"total_files_scanned"`
	TotalTokensRead    int     `json:"total_tokens_read"`
	TotalFilesSkipped  int     `json:"total_files_skipped"`
	AvgFilesPerFind    float64 `json:"avg_files_per_find"`
	EventsRetained     int     `json:"events_retained"`

	// Detailed analytics
	FindPerformance24h   []FindPerformanceHourly `json:"find_performance_24h"`
	PopularWords         []PopularWord           `json:"popular_words"`
	RootUsage            []RootStats             `json:"root_usage"`
	DurationDistribution DurationDistribution    `json:"duration_distribution"`
}
