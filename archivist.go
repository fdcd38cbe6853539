package archivist

import (
	"context"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/archivista/archivist/chat"
	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/decode"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/ingest"
	"github.com/archivista/archivist/internal/db"
	"github.com/archivista/archivist/internal/mylog"
	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/memory"
	"github.com/archivista/archivist/retrieval"
	"github.com/archivista/archivist/summarizer"
	"github.com/archivista/archivist/textnorm"
)

type (
	// Archivist assembles the ingestion pipeline, the knowledge store
	// and the retrieval engine into one handle. External collaborators
	// (chat adapter, learner, encyclopedia) plug in through options.
	Archivist struct {
		gdb      *gorm.DB
		store    *knowledge.SqliteStore
		memory   memory.Service
		pipeline *ingest.Pipeline
		engine   *retrieval.Engine
		handler  *chat.Handler
		settings *chat.SettingsFile
		crawler  *ingest.HistoryCrawler
		logger   *slog.Logger

		logConfig    *config.LogConfig
		storeConfig  *config.StoreConfig
		ingestConfig *config.IngestConfig
		rulesConfig  *config.RulesConfig
		openaiConfig *config.OpenAIConfig
		chatConfig   *config.ChatConfig

		summarizer   summarizer.Summarizer
		sink         ingest.TrainSink
		learner      retrieval.Learner
		encyclopedia retrieval.Encyclopedia
	}

	Option func(*Archivist)
)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Archivist) { a.logger = logger }
}

func WithStoreConfig(cfg *config.StoreConfig) Option {
	return func(a *Archivist) { a.storeConfig = cfg }
}

func WithIngestConfig(cfg *config.IngestConfig) Option {
	return func(a *Archivist) { a.ingestConfig = cfg }
}

func WithChatConfig(cfg *config.ChatConfig) Option {
	return func(a *Archivist) { a.chatConfig = cfg }
}

// WithSummarizer overrides the OpenAI summarizer, mainly for tests.
func WithSummarizer(s summarizer.Summarizer) Option {
	return func(a *Archivist) { a.summarizer = s }
}

// WithTrainSink attaches an external learner's training input.
func WithTrainSink(sink ingest.TrainSink) Option {
	return func(a *Archivist) { a.sink = sink }
}

// WithLearner attaches the opaque learner consulted on the retrieval
// fallback path.
func WithLearner(l retrieval.Learner) Option {
	return func(a *Archivist) { a.learner = l }
}

// WithEncyclopedia attaches the external reference lookup, tried before
// the learner when the store has no answer.
func WithEncyclopedia(e retrieval.Encyclopedia) Option {
	return func(a *Archivist) { a.encyclopedia = e }
}

func NewArchivist(ctx context.Context, optionFuncs ...Option) (*Archivist, error) {
	a := &Archivist{
		logConfig:    config.NewLogConfig(),
		storeConfig:  config.NewStoreConfig(),
		ingestConfig: config.NewIngestConfig(),
		rulesConfig:  config.NewRulesConfig(),
		openaiConfig: config.NewOpenAIConfig(),
		chatConfig:   config.NewChatConfig(),
	}
	for _, f := range optionFuncs {
		f(a)
	}

	for _, resolver := range []interface{ Resolve() error }{
		a.logConfig, a.storeConfig, a.ingestConfig, a.rulesConfig, a.openaiConfig, a.chatConfig,
	} {
		if err := resolver.Resolve(); err != nil {
			return nil, err
		}
	}

	if a.logger == nil {
		a.logger = mylog.NewLogger(a.logConfig.LogLevel, a.logConfig.LogHandler)
	}

	rules, err := a.rulesConfig.LoadRules()
	if err != nil {
		return nil, err
	}

	a.gdb, err = db.OpenDB(a.storeConfig.SqlitePath)
	if err != nil {
		return nil, err
	}

	a.store, err = knowledge.NewSqliteStore(a.gdb, a.logger)
	if err != nil {
		return nil, err
	}

	a.memory, err = memory.NewService(a.gdb, a.logger)
	if err != nil {
		return nil, err
	}

	validator := textnorm.NewValidator(rules, a.logger)
	decoder := decode.NewDecoder(a.logger)
	fetcher := ingest.NewFetcher(
		rules.DeniedHosts,
		a.storeConfig.PageCacheDir,
		a.ingestConfig.FetchTimeout(),
		a.logger,
	)

	// The AI lane only exists when a credential is configured.
	if a.summarizer == nil && a.openaiConfig.OpenAIApiKey != "" {
		a.summarizer, err = summarizer.NewOpenAISummarizer(a.openaiConfig)
		if err != nil {
			return nil, err
		}
	}

	var lane *ingest.SummarizeLane
	if a.summarizer != nil {
		lane = ingest.NewSummarizeLane(
			a.store,
			a.summarizer,
			validator.Valid,
			a.ingestConfig.SummarizeInterval(),
			a.ingestConfig.SummarizeQueueCap,
			a.logger,
		)
	}

	a.pipeline = ingest.NewPipeline(
		a.store,
		a.memory,
		validator,
		decoder,
		fetcher,
		a.ingestConfig.FileWorkers,
		a.ingestConfig.FetchWorkers,
		ingest.Options{Summarize: lane, Sink: a.sink},
		a.logger,
	)

	a.engine = retrieval.NewEngine(a.store, a.memory, a.encyclopedia, a.learner, a.logger)

	a.settings, err = chat.LoadSettings(a.chatConfig.SettingsPath)
	if err != nil {
		return nil, err
	}

	a.handler = chat.NewHandler(a.pipeline, a.engine, a.settings, a.chatConfig.MaxAnswerLen, a.logger)

	return a, nil
}

// OnMessage handles one chat event; the adapter sends the returned
// reply, if any.
func (a *Archivist) OnMessage(ctx context.Context, event chat.Event) (*chat.Reply, error) {
	return a.handler.OnMessage(ctx, event)
}

// Answer resolves a query for a user, empty when nothing is known.
func (a *Archivist) Answer(ctx context.Context, userID, query string) (string, error) {
	return a.engine.Answer(ctx, userID, query, a.chatConfig.MaxAnswerLen)
}

// IngestDirectory walks a directory tree through the file lane.
func (a *Archivist) IngestDirectory(ctx context.Context, root string) error {
	return a.pipeline.IngestDirectory(ctx, root)
}

// IngestText funnels one raw text directly.
func (a *Archivist) IngestText(ctx context.Context, raw, source string) error {
	return a.pipeline.IngestText(ctx, raw, source)
}

// IngestFile decodes and funnels a single file synchronously.
func (a *Archivist) IngestFile(ctx context.Context, path string) error {
	return a.pipeline.IngestFile(ctx, path)
}

// IngestURLList enqueues every link of a URL list document on the
// network lane, returning how many were queued.
func (a *Archivist) IngestURLList(content string) int {
	return a.pipeline.IngestURLList(content)
}

// EnqueueURL schedules one URL on the network lane, blocking until a
// queue slot frees.
func (a *Archivist) EnqueueURL(rawURL string) bool {
	return a.pipeline.EnqueueURL(rawURL)
}

// StartHistoryCrawler begins the periodic chat-history walk against the
// given platform source.
func (a *Archivist) StartHistoryCrawler(ctx context.Context, source ingest.HistorySource) error {
	if a.crawler != nil {
		return errors.Wrapf(errors.ErrInvalidParams, "history crawler already running")
	}

	a.crawler = ingest.NewHistoryCrawler(
		source,
		a.pipeline,
		a.ingestConfig.HistoryPageSize,
		a.ingestConfig.HistoryMaxPerChannel,
		a.ingestConfig.HistorySchedule,
		a.logger,
	)

	return a.crawler.Start(ctx)
}

// Settings exposes the persisted chat settings document.
func (a *Archivist) Settings() *chat.SettingsFile {
	return a.settings
}

// Store exposes the knowledge store for feedback and direct queries.
func (a *Archivist) Store() knowledge.Store {
	return a.store
}

// Close stops the crawler, drains every lane, flushes the train sink
// and closes the store. In-flight transactions complete before the
// database shuts down.
func (a *Archivist) Close() error {
	if a.crawler != nil {
		a.crawler.Stop()
	}
	a.pipeline.Close()

	// A sink holding an in-memory model checkpoint gets a final flush.
	if closer, ok := a.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("failed to flush train sink", "error", err)
		}
	}

	return a.store.Close()
}
