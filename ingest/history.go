package ingest

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/archivista/archivist/errors"
)

type (
	// Channel is one readable chat channel, as seen by the history
	// crawler.
	Channel struct {
		ID   string
		Name string
	}

	// Message is one chat message from a history page, newest first.
	Message struct {
		ID       string
		AuthorID string
		Content  string
		IsBot    bool
	}

	// HistorySource is the chat-platform boundary for history crawling.
	// History pages backward: it returns up to limit messages strictly
	// older than beforeID (newest first); an empty beforeID starts at
	// the channel head.
	HistorySource interface {
		Channels(ctx context.Context) ([]Channel, error)
		CanReadHistory(channelID string) bool
		History(ctx context.Context, channelID, beforeID string, limit int) ([]Message, error)
	}

	// HistoryCrawler walks every accessible channel's history through
	// the pipeline, once at startup and then on a fixed schedule.
	HistoryCrawler struct {
		source   HistorySource
		pipeline *Pipeline

		pageSize      int
		maxPerChannel int
		schedule      string

		cron   *cron.Cron
		logger *slog.Logger
	}
)

func NewHistoryCrawler(
	source HistorySource,
	pipeline *Pipeline,
	pageSize, maxPerChannel int,
	schedule string,
	logger *slog.Logger,
) *HistoryCrawler {
	return &HistoryCrawler{
		source:        source,
		pipeline:      pipeline,
		pageSize:      pageSize,
		maxPerChannel: maxPerChannel,
		schedule:      schedule,
		cron:          cron.New(),
		logger:        logger,
	}
}

// Start runs one crawl immediately, then registers the periodic re-run.
func (c *HistoryCrawler) Start(ctx context.Context) error {
	c.Crawl(ctx)

	_, err := c.cron.AddFunc(c.schedule, func() {
		c.Crawl(ctx)
	})
	if err != nil {
		return errors.Wrapf(err, "invalid history schedule %q", c.schedule)
	}
	c.cron.Start()

	return nil
}

// Stop cancels the schedule and waits for a running crawl job to
// finish.
func (c *HistoryCrawler) Stop() {
	<-c.cron.Stop().Done()
}

// Crawl walks every channel once. Per-channel failures are logged and
// do not stop the walk.
func (c *HistoryCrawler) Crawl(ctx context.Context) {
	channels, err := c.source.Channels(ctx)
	if err != nil {
		c.logger.Error("failed to list channels", "error", err)
		return
	}

	for _, channel := range channels {
		if !c.source.CanReadHistory(channel.ID) {
			continue
		}
		if err := c.crawlChannel(ctx, channel); err != nil {
			c.logger.Warn("channel history crawl failed", "channel", channel.Name, "error", err)
		}
	}
}

// crawlChannel pages backward until the history ends, the per-channel
// ceiling is reached, or the context is cancelled.
func (c *HistoryCrawler) crawlChannel(ctx context.Context, channel Channel) error {
	var beforeID string
	total := 0

	for total < c.maxPerChannel {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		limit := min(c.pageSize, c.maxPerChannel-total)
		page, err := c.source.History(ctx, channel.ID, beforeID, limit)
		if err != nil {
			return errors.Wrapf(err, "failed to page history of %s", channel.Name)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			if msg.IsBot || msg.Content == "" {
				continue
			}
			if err := c.pipeline.IngestChatMessage(ctx, msg.AuthorID, msg.Content); err != nil {
				c.logger.Warn("failed to ingest history message",
					"channel", channel.Name,
					"message_id", msg.ID,
					"error", err,
				)
			}
		}

		total += len(page)
		beforeID = page[len(page)-1].ID

		// A short page means the history is exhausted.
		if len(page) < limit {
			break
		}
	}

	return nil
}
