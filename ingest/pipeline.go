package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/archivista/archivist/decode"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/internal/msgutils"
	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/memory"
	"github.com/archivista/archivist/textnorm"
)

type (
	// Options carries the optional pipeline collaborators.
	Options struct {
		// Summarize enables the AI lane. Nil disables it.
		Summarize *SummarizeLane

		// Sink receives training samples. Nil disables training.
		Sink TrainSink
	}

	// Pipeline is the ingestion front door. Every source (directory
	// walk, URL fetch, chat transcript) funnels into IngestText, which
	// normalizes, validates and commits one document atomically.
	Pipeline struct {
		store     knowledge.Store
		memory    memory.Service
		validator *textnorm.Validator
		decoder   *decode.Decoder
		fetcher   *Fetcher
		summarize *SummarizeLane
		sink      TrainSink

		filePool *Pool
		netPool  *Pool

		logger *slog.Logger
	}
)

func NewPipeline(
	store knowledge.Store,
	mem memory.Service,
	validator *textnorm.Validator,
	decoder *decode.Decoder,
	fetcher *Fetcher,
	fileWorkers, fetchWorkers int,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		store:     store,
		memory:    mem,
		validator: validator,
		decoder:   decoder,
		fetcher:   fetcher,
		summarize: opts.Summarize,
		sink:      opts.Sink,
		filePool:  NewPool("file", fileWorkers, fileWorkers*16, logger),
		netPool:   NewPool("network", fetchWorkers, fetchWorkers*16, logger),
		logger:    logger,
	}
}

// IngestText is the common funnel. Tagged Q/A transcripts are parsed
// from the raw text before whitespace collapsing destroys the line
// structure; everything else goes through the sentence heuristic. A
// validation rejection is a silent skip, not an error.
func (p *Pipeline) IngestText(ctx context.Context, raw, source string) error {
	tagged := knowledge.ParseTaggedQA(raw, source)

	normalized := textnorm.Normalize(raw)
	contentValid := p.validator.Valid(normalized)

	doc := knowledge.Document{Source: source, Pairs: tagged}
	if contentValid {
		doc.Content = normalized
		doc.Terms = knowledge.ExtractTerms(normalized)
		if len(doc.Pairs) == 0 {
			doc.Pairs = knowledge.ExtractQAPairs(normalized, source, p.validator.Valid)
		}
	}

	if doc.Content == "" && len(doc.Pairs) == 0 {
		return nil
	}

	knowledge.AuditTermBias(p.logger, source, doc.Terms)

	if err := p.store.IngestDocument(ctx, &doc); err != nil {
		return errors.Wrapf(err, "failed to ingest document from %s", source)
	}

	if p.summarize != nil && contentValid {
		p.summarize.Enqueue(normalized, source)
	}
	p.train(ctx, &doc)

	return nil
}

// train forwards the committed document to the learner sink. Failures
// are logged; training never blocks ingestion.
func (p *Pipeline) train(ctx context.Context, doc *knowledge.Document) {
	if p.sink == nil {
		return
	}

	var samples []TrainSample
	if doc.Content != "" {
		samples = append(samples, TrainSample{Input: doc.Content, Output: doc.Content})
	}
	for _, pair := range doc.Pairs {
		samples = append(samples, TrainSample{Input: pair.Question, Output: pair.Answer})
	}

	if err := p.sink.Train(ctx, samples); err != nil {
		p.logger.Warn("learner training failed", "error", err)
	}
}

// IngestChatMessage funnels one chat message: context ring append,
// profile touch, knowledge ingestion, and any URLs inside the text are
// re-enqueued on the network lane.
func (p *Pipeline) IngestChatMessage(ctx context.Context, userID, text string) error {
	if err := p.memory.AppendContext(ctx, userID, text); err != nil {
		return err
	}
	if err := p.memory.TouchProfile(ctx, userID, nil); err != nil {
		return err
	}

	if err := p.IngestText(ctx, text, "chat:"+userID); err != nil {
		p.logger.Error("failed to ingest chat message", "user_id", userID, "error", err)
	}

	for _, rawURL := range msgutils.ExtractURLs(text) {
		p.EnqueueURL(rawURL)
	}

	return nil
}

// IngestDirectory walks a directory tree and submits every supported
// file to the file lane. The walk blocks when the lane is saturated;
// every supported file is ingested, the lane never sheds files.
// Unsupported and non-regular entries are skipped silently; per-file
// failures are logged and never abort the walk.
func (p *Pipeline) IngestDirectory(ctx context.Context, root string) error {
	return errors.WithStack(filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.logger.Warn("walk error, entry skipped", "path", path, "error", err)
			return nil
		}
		if !d.Type().IsRegular() || !p.decoder.Supported(path) {
			return nil
		}

		p.filePool.Submit(func(ctx context.Context) {
			p.ingestFile(ctx, path)
		})

		return nil
	}))
}

// IngestFile decodes and funnels a single file synchronously.
func (p *Pipeline) IngestFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	text, err := p.decoder.Decode(path, data)
	if err != nil {
		return err
	}

	return p.IngestText(ctx, text, path)
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("failed to read file", "path", path, "error", err)
		return
	}

	text, err := p.decoder.Decode(path, data)
	if err != nil {
		p.logger.Warn("failed to decode file", "path", path, "error", err)
		return
	}

	if err := p.IngestText(ctx, text, path); err != nil {
		p.logger.Error("failed to ingest file", "path", path, "error", err)
	}
}

// EnqueueURL schedules a URL on the network lane, blocking until a
// queue slot frees. Reports false only when the pipeline is shutting
// down.
func (p *Pipeline) EnqueueURL(rawURL string) bool {
	return p.netPool.Submit(func(ctx context.Context) {
		p.ingestURL(ctx, rawURL, true)
	})
}

// IngestURLList parses an operator URL list file and submits every
// link to the network lane, blocking for backpressure rather than
// shedding links.
func (p *Pipeline) IngestURLList(content string) int {
	queued := 0
	for _, link := range ParseURLList(content) {
		if p.EnqueueURL(link.URL) {
			queued++
		}
	}

	return queued
}

// ingestURL fetches one URL, decodes the cached body and funnels the
// text. For HTML pages the same-page sub-resources are each fetched and
// decoded once; they do not recurse further.
func (p *Pipeline) ingestURL(ctx context.Context, rawURL string, followSubResources bool) {
	if p.fetcher.Denied(rawURL) {
		p.logger.Info("denylisted url skipped", "url", rawURL)
		return
	}

	body, path, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.logger.Warn("fetch failed", "url", rawURL, "error", err)
		return
	}

	text, err := p.decoder.Decode(path, body)
	if errors.Is(err, errors.ErrUnsupported) {
		text, err = decode.HTMLText(body)
	}
	if err != nil {
		p.logger.Warn("failed to decode fetched page", "url", rawURL, "error", err)
		return
	}

	if err := p.IngestText(ctx, text, rawURL); err != nil {
		p.logger.Error("failed to ingest page", "url", rawURL, "error", err)
	}

	if !followSubResources {
		return
	}
	resources, err := SubResources(rawURL, body)
	if err != nil {
		p.logger.Warn("failed to scan sub-resources", "url", rawURL, "error", err)
		return
	}
	// Sub-resources run inside the page's own job: none is ever shed,
	// and a worker never blocks feeding its own saturated lane.
	for _, resource := range resources {
		if ctx.Err() != nil {
			return
		}
		p.ingestURL(ctx, resource, false)
	}
}

// Close drains the file and network lanes, then the summarize lane.
func (p *Pipeline) Close() {
	p.filePool.Close()
	p.netPool.Close()
	if p.summarize != nil {
		p.summarize.Close()
	}
}
