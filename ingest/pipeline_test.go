package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/decode"
	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/memory"
	"github.com/archivista/archivist/textnorm"
)

type memStore struct {
	knowledge.Store

	mu        sync.Mutex
	delay     time.Duration
	docs      []knowledge.Document
	summaries map[string]string
}

func newMemStore() *memStore {
	return &memStore{summaries: make(map[string]string)}
}

func (m *memStore) IngestDocument(_ context.Context, doc *knowledge.Document) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *memStore) CachedSummary(_ context.Context, input string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.summaries[input]
	return out, ok, nil
}

func (m *memStore) PutSummary(_ context.Context, input, output string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[input]; !ok {
		m.summaries[input] = output
	}
	return nil
}

type memMemory struct {
	memory.Service

	contexts []string
	touches  int
}

func (m *memMemory) AppendContext(_ context.Context, userID, message string) error {
	m.contexts = append(m.contexts, userID+": "+message)
	return nil
}

func (m *memMemory) TouchProfile(_ context.Context, _ string, _ *entity.Preferences) error {
	m.touches++
	return nil
}

func newTestPipeline(store knowledge.Store, mem memory.Service, opts Options) *Pipeline {
	logger := slog.Default()
	validator := textnorm.NewValidator(config.DefaultRules(), logger)
	fetcher := NewFetcher(nil, "", 0, logger)

	return NewPipeline(store, mem, validator, decode.NewDecoder(logger), fetcher, 1, 1, opts, logger)
}

func TestIngestText_TaggedTranscript(t *testing.T) {
	store := newMemStore()
	p := newTestPipeline(store, &memMemory{}, Options{})

	err := p.IngestText(context.Background(), "В: ку\nО: Привет! Рад тебя видеть.", "transcript")
	require.NoError(t, err)

	require.Len(t, store.docs, 1)
	require.Len(t, store.docs[0].Pairs, 1)
	assert.Equal(t, "ку", store.docs[0].Pairs[0].Question)
	assert.Equal(t, "Привет! Рад тебя видеть.", store.docs[0].Pairs[0].Answer)
}

func TestIngestText_InvalidTextIsSilentlySkipped(t *testing.T) {
	store := newMemStore()
	p := newTestPipeline(store, &memMemory{}, Options{})

	require.NoError(t, p.IngestText(context.Background(), "short", "x"))
	assert.Empty(t, store.docs)
}

func TestIngestText_HeuristicPairsRideAlongWithRecord(t *testing.T) {
	store := newMemStore()
	p := newTestPipeline(store, &memMemory{}, Options{})

	text := "What powers the backup generator? Diesel stored in tank four powers it."
	require.NoError(t, p.IngestText(context.Background(), text, "manual"))

	require.Len(t, store.docs, 1)
	assert.Equal(t, text, store.docs[0].Content)
	require.Len(t, store.docs[0].Pairs, 1)
	assert.Equal(t, "What powers the backup generator?", store.docs[0].Pairs[0].Question)
	assert.NotEmpty(t, store.docs[0].Terms)
}

func TestIngestText_FeedsTrainSink(t *testing.T) {
	store := newMemStore()
	var got []TrainSample
	sink := trainFunc(func(_ context.Context, samples []TrainSample) error {
		got = append(got, samples...)
		return nil
	})

	p := newTestPipeline(store, &memMemory{}, Options{Sink: sink})
	require.NoError(t, p.IngestText(context.Background(), "The cooling loop runs at half pressure overnight.", "manual"))

	require.Len(t, got, 1)
	assert.Equal(t, got[0].Input, got[0].Output)
}

type trainFunc func(ctx context.Context, samples []TrainSample) error

func (f trainFunc) Train(ctx context.Context, samples []TrainSample) error {
	return f(ctx, samples)
}

func TestIngestDirectory_KeepsEveryFileUnderBackpressure(t *testing.T) {
	store := newMemStore()
	store.delay = time.Millisecond
	p := newTestPipeline(store, &memMemory{}, Options{})

	// Far more files than the single-worker file lane can queue; the
	// walk has to wait for slots instead of shedding documents.
	dir := t.TempDir()
	const files = 60
	for i := range files {
		text := fmt.Sprintf("Pump station %d reports a steady flow reading every morning.", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("note-%03d.txt", i)), []byte(text), 0o644))
	}

	require.NoError(t, p.IngestDirectory(context.Background(), dir))
	p.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.docs, files)
}

func TestIngestChatMessage(t *testing.T) {
	store := newMemStore()
	mem := &memMemory{}
	p := newTestPipeline(store, mem, Options{})

	err := p.IngestChatMessage(context.Background(), "u1", "The night shift checks the valves twice.")
	require.NoError(t, err)

	assert.Equal(t, []string{"u1: The night shift checks the valves twice."}, mem.contexts)
	assert.Equal(t, 1, mem.touches)
	require.Len(t, store.docs, 1)
	assert.Equal(t, "chat:u1", store.docs[0].Source)
}
