package chat_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivista/archivist/chat"
	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/decode"
	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/ingest"
	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/memory"
	"github.com/archivista/archivist/retrieval"
	"github.com/archivista/archivist/textnorm"
)

type fakeStore struct {
	knowledge.Store

	mu    sync.Mutex
	docs  []knowledge.Document
	pairs []entity.QAPair
}

func (f *fakeStore) IngestDocument(_ context.Context, doc *knowledge.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeStore) SearchRecords(context.Context, []string, int) ([]entity.KnowledgeRecord, error) {
	return nil, nil
}

func (f *fakeStore) SearchQAPairs(context.Context, []string, int) ([]entity.QAPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs, nil
}

func (f *fakeStore) Synonyms(context.Context, string) ([]string, error) { return nil, nil }

type fakeMemory struct {
	memory.Service

	appended int
}

func (f *fakeMemory) AppendContext(context.Context, string, string) error {
	f.appended++
	return nil
}

func (f *fakeMemory) TouchProfile(context.Context, string, *entity.Preferences) error { return nil }

func (f *fakeMemory) RecentContext(context.Context, string, int) ([]entity.UserContextEntry, error) {
	return nil, nil
}

func newHandler(t *testing.T, store *fakeStore, mem *fakeMemory) *chat.Handler {
	t.Helper()

	logger := slog.Default()
	validator := textnorm.NewValidator(config.DefaultRules(), logger)
	fetcher := ingest.NewFetcher(nil, t.TempDir(), 0, logger)
	pipeline := ingest.NewPipeline(store, mem, validator, decode.NewDecoder(logger), fetcher, 1, 1, ingest.Options{}, logger)
	engine := retrieval.NewEngine(store, mem, nil, nil, logger)

	settings, err := chat.LoadSettings(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	return chat.NewHandler(pipeline, engine, settings, 1900, logger)
}

func TestOnMessage_IgnoresBots(t *testing.T) {
	store := &fakeStore{}
	mem := &fakeMemory{}
	handler := newHandler(t, store, mem)

	reply, err := handler.OnMessage(context.Background(), chat.Event{
		AuthorID: "bot", Text: "An automated status message.", IsBot: true, Addressed: true,
	})
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.Zero(t, mem.appended)
}

func TestOnMessage_IngestsWithoutAnsweringWhenNotAddressed(t *testing.T) {
	store := &fakeStore{}
	mem := &fakeMemory{}
	handler := newHandler(t, store, mem)

	reply, err := handler.OnMessage(context.Background(), chat.Event{
		AuthorID: "u1", ChannelID: "c1", Text: "The morning meeting moved to room four.",
	})
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.Equal(t, 1, mem.appended)
	assert.Len(t, store.docs, 1)
}

func TestOnMessage_AnswersWhenAddressed(t *testing.T) {
	store := &fakeStore{pairs: []entity.QAPair{
		{Question: "Where is the morning meeting?", Answer: "Room four, since Monday."},
	}}
	handler := newHandler(t, store, &fakeMemory{})

	reply, err := handler.OnMessage(context.Background(), chat.Event{
		AuthorID: "u1", ChannelID: "c1", Text: "where is the morning meeting held?", Addressed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "c1", reply.ChannelID)
	assert.Equal(t, "Room four, since Monday.", reply.Text)
}

type recordingClient struct {
	sent []string
}

func (r *recordingClient) SendReply(_ context.Context, channelID, text string) error {
	r.sent = append(r.sent, channelID+": "+text)
	return nil
}

func TestRespond_SendsThroughClient(t *testing.T) {
	store := &fakeStore{pairs: []entity.QAPair{
		{Question: "Where is the morning meeting?", Answer: "Room four, since Monday."},
	}}
	handler := newHandler(t, store, &fakeMemory{})
	client := &recordingClient{}

	err := handler.Respond(context.Background(), client, chat.Event{
		AuthorID: "u1", ChannelID: "c1", Text: "where is the morning meeting held?", Addressed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1: Room four, since Monday."}, client.sent)

	// No reply means nothing is sent.
	err = handler.Respond(context.Background(), client, chat.Event{
		AuthorID: "u1", ChannelID: "c1", Text: "An unaddressed remark about nothing.",
	})
	require.NoError(t, err)
	assert.Len(t, client.sent, 1)
}

func TestOnMessage_FixedMessageWhenNothingKnown(t *testing.T) {
	handler := newHandler(t, &fakeStore{}, &fakeMemory{})

	reply, err := handler.OnMessage(context.Background(), chat.Event{
		AuthorID: "u1", ChannelID: "c1", Text: "what about something unknown?", Addressed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, chat.NoAnswerMessage, reply.Text)
}
