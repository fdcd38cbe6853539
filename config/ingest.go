package config

import "time"

type IngestConfig struct {
	// Worker counts per lane. The summarize lane is always single-worker.
	FileWorkers  int `env:"INGEST_FILE_WORKERS"`
	FetchWorkers int `env:"INGEST_FETCH_WORKERS"`

	// FetchTimeoutSeconds bounds every network fetch.
	FetchTimeoutSeconds int `env:"INGEST_FETCH_TIMEOUT_SECONDS"`

	// SummarizeIntervalSeconds is the minimum spacing between remote
	// summarizer calls. SummarizeQueueCap is the queue-depth ceiling;
	// requests beyond it are dropped, not queued.
	SummarizeIntervalSeconds int `env:"INGEST_SUMMARIZE_INTERVAL_SECONDS"`
	SummarizeQueueCap        int `env:"INGEST_SUMMARIZE_QUEUE_CAP"`

	// Chat-history walk parameters.
	HistoryPageSize      int    `env:"INGEST_HISTORY_PAGE_SIZE"`
	HistoryMaxPerChannel int    `env:"INGEST_HISTORY_MAX_PER_CHANNEL"`
	HistorySchedule      string `env:"INGEST_HISTORY_SCHEDULE"`
}

func NewIngestConfig() *IngestConfig {
	return &IngestConfig{
		FileWorkers:              5,
		FetchWorkers:             3,
		FetchTimeoutSeconds:      20,
		SummarizeIntervalSeconds: 20,
		SummarizeQueueCap:        100,
		HistoryPageSize:          100,
		HistoryMaxPerChannel:     1000,
		HistorySchedule:          "0 */6 * * *",
	}
}

func (c *IngestConfig) Resolve() error {
	return resolveConfig(c)
}

func (c *IngestConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *IngestConfig) SummarizeInterval() time.Duration {
	return time.Duration(c.SummarizeIntervalSeconds) * time.Second
}
