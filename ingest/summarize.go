package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/summarizer"
)

// SummarizeLane is the single-worker AI lane: it asks the remote
// summarizer to condense a text into Q/A pairs and stores whatever
// parses. Calls are spaced by a rate limiter and memoized through the
// store's summary cache, so an identical normalized input never reaches
// the remote endpoint twice.
type SummarizeLane struct {
	store      knowledge.Store
	summarizer summarizer.Summarizer
	valid      func(string) bool
	limiter    *rate.Limiter
	pool       *Pool
	logger     *slog.Logger
}

func NewSummarizeLane(
	store knowledge.Store,
	summ summarizer.Summarizer,
	valid func(string) bool,
	interval time.Duration,
	queueCap int,
	logger *slog.Logger,
) *SummarizeLane {
	return &SummarizeLane{
		store:      store,
		summarizer: summ,
		valid:      valid,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		pool:       NewPool("summarize", 1, queueCap, logger),
		logger:     logger,
	}
}

// Enqueue schedules a text for summarization. The call is a zero-cost
// skip unless a summarizer is configured, the text is valid, and it
// contains a question mark. Returns true only when the job was queued.
func (l *SummarizeLane) Enqueue(text, source string) bool {
	if l.summarizer == nil {
		return false
	}
	if !strings.Contains(text, "?") || !l.valid(text) {
		return false
	}

	return l.pool.Enqueue(func(ctx context.Context) {
		l.process(ctx, text, source)
	})
}

func (l *SummarizeLane) process(ctx context.Context, text, source string) {
	output, cached, err := l.store.CachedSummary(ctx, text)
	if err != nil {
		l.logger.Error("summary cache lookup failed", "source", source, "error", err)
		return
	}

	if !cached {
		if err := l.limiter.Wait(ctx); err != nil {
			return
		}

		output, err = l.summarizer.Summarize(ctx, text)
		if err != nil {
			// Nothing is cached on failure; a later attempt may succeed.
			l.logger.Error("remote summarize failed", "source", source, "error", err)
			return
		}

		if err := l.store.PutSummary(ctx, text, output); err != nil {
			l.logger.Error("failed to cache summary", "source", source, "error", err)
		}
	}

	pairs := knowledge.ParseTaggedQA(output, source)
	if len(pairs) == 0 {
		return
	}

	err = l.store.IngestDocument(ctx, &knowledge.Document{Source: source, Pairs: pairs})
	if err != nil {
		l.logger.Error("failed to store summarized pairs", "source", source, "error", err)
	}
}

func (l *SummarizeLane) Close() {
	l.pool.Close()
}
