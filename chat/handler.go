package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/ingest"
	"github.com/archivista/archivist/retrieval"
)

// NoAnswerMessage is the fixed reply when every retrieval fallback
// comes up empty. Queries that hit it are logged for human review.
const NoAnswerMessage = "I don't have an answer for that yet — could you rephrase or give me more to go on?"

type (
	// Client is the outbound half of the platform adapter.
	Client interface {
		SendReply(ctx context.Context, channelID, text string) error
	}

	// Event is one incoming chat message, as delivered by the platform
	// adapter.
	Event struct {
		MessageID string
		AuthorID  string
		ChannelID string
		GuildID   string
		Text      string
		IsBot     bool
		// Addressed is true when the bot was mentioned or replied to;
		// only addressed messages get an answer.
		Addressed bool
	}

	// Reply is what the adapter should send back, if anything.
	Reply struct {
		ChannelID string
		Text      string
	}

	// Handler wires incoming events into ingestion and retrieval.
	Handler struct {
		pipeline     *ingest.Pipeline
		engine       *retrieval.Engine
		settings     *SettingsFile
		maxAnswerLen int
		logger       *slog.Logger
	}
)

func NewHandler(
	pipeline *ingest.Pipeline,
	engine *retrieval.Engine,
	settings *SettingsFile,
	maxAnswerLen int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		pipeline:     pipeline,
		engine:       engine,
		settings:     settings,
		maxAnswerLen: maxAnswerLen,
		logger:       logger,
	}
}

// OnMessage processes one event: bot messages and disallowed channels
// are ignored, everything else is ingested, and addressed messages get
// an answer. A nil reply means there is nothing to send.
func (h *Handler) OnMessage(ctx context.Context, event Event) (*Reply, error) {
	if event.IsBot || strings.TrimSpace(event.Text) == "" {
		return nil, nil
	}
	if !h.settings.Allowed(event.GuildID, event.ChannelID) {
		return nil, nil
	}

	if err := h.pipeline.IngestChatMessage(ctx, event.AuthorID, event.Text); err != nil {
		h.logger.Error("failed to ingest chat message",
			"author_id", event.AuthorID,
			"message_id", event.MessageID,
			"error", err,
		)
	}

	if !event.Addressed {
		return nil, nil
	}

	answer, err := h.engine.Answer(ctx, event.AuthorID, event.Text, h.maxAnswerLen)
	if err != nil {
		return nil, err
	}
	if answer == "" {
		h.logger.Info("query exhausted all fallbacks", "author_id", event.AuthorID, "query", event.Text)
		answer = NoAnswerMessage
	}

	return &Reply{ChannelID: event.ChannelID, Text: answer}, nil
}

// Respond handles an event and sends the resulting reply, if any,
// through the client.
func (h *Handler) Respond(ctx context.Context, client Client, event Event) error {
	reply, err := h.OnMessage(ctx, event)
	if err != nil || reply == nil {
		return err
	}

	return errors.Wrapf(
		client.SendReply(ctx, reply.ChannelID, reply.Text),
		"failed to send reply to channel %s", reply.ChannelID,
	)
}
