package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mokiat/gog"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/knowledge"
	"github.com/archivista/archivist/memory"
)

const (
	// contextWindow is how many recent messages feed keyword expansion.
	contextWindow = 10

	// candidateCap bounds each store query independently.
	candidateCap = 5
)

type (
	// Learner is the opaque trainable model consulted when the store has
	// no answer.
	Learner interface {
		Predict(ctx context.Context, text string) (string, error)
	}

	// Encyclopedia is the external reference lookup, tried before the
	// learner on the fallback path.
	Encyclopedia interface {
		Lookup(ctx context.Context, query string) (string, error)
	}

	// Engine answers queries from the knowledge store, ranking
	// candidates by lexical overlap with the query.
	Engine struct {
		store        knowledge.Store
		memory       memory.Service
		encyclopedia Encyclopedia
		learner      Learner
		logger       *slog.Logger
	}

	candidate struct {
		text   string
		answer string
		score  float64
	}
)

func NewEngine(
	store knowledge.Store,
	mem memory.Service,
	encyclopedia Encyclopedia,
	learner Learner,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		store:        store,
		memory:       mem,
		encyclopedia: encyclopedia,
		learner:      learner,
		logger:       logger,
	}
}

// Answer resolves a query for a user. It returns the empty string when
// every source, fallbacks included, comes up empty; the caller owns the
// "no answer" message.
func (e *Engine) Answer(ctx context.Context, userID, query string, maxLen int) (string, error) {
	queryKeywords := Keywords(query)

	terms := e.expandTerms(ctx, userID, queryKeywords)

	candidates, err := e.collect(ctx, terms, queryKeywords)
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 {
		answer, err := e.fallback(ctx, query)
		if err != nil {
			return "", err
		}

		return Truncate(answer, maxLen), nil
	}

	// Stable sort keeps QA-before-record and insertion order on ties;
	// collect appends in exactly that precedence.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	return Truncate(candidates[0].answer, maxLen), nil
}

// QuickAnswer is the lighter path: the single best-rated QA hit for the
// query keywords, skipping context expansion and overlap ranking.
func (e *Engine) QuickAnswer(ctx context.Context, query string) (string, error) {
	pair, err := e.store.TopRatedQA(ctx, Keywords(query))
	if err != nil {
		return "", err
	}
	if pair == nil {
		return "", nil
	}

	return pair.Answer, nil
}

// expandTerms unions query keywords with keywords from the user's
// recent context, then folds in configured synonyms for each term.
// Expansion failures degrade to the narrower term set.
func (e *Engine) expandTerms(ctx context.Context, userID string, queryKeywords []string) []string {
	terms := make([]string, 0, len(queryKeywords))
	seen := make(map[string]struct{})

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, kw := range queryKeywords {
		add(kw)
	}

	if userID != "" {
		entries, err := e.memory.RecentContext(ctx, userID, contextWindow)
		if err != nil {
			e.logger.Warn("failed to load user context for expansion", "user_id", userID, "error", err)
		}
		for _, entry := range entries {
			for _, kw := range Keywords(entry.Message) {
				add(kw)
			}
		}
	}

	// range evaluates terms once, so synonym keywords added below are
	// not themselves expanded.
	for _, term := range terms {
		synonyms, err := e.store.Synonyms(ctx, term)
		if err != nil {
			e.logger.Warn("synonym lookup failed", "term", term, "error", err)
			continue
		}
		for _, synonym := range synonyms {
			for _, kw := range Keywords(synonym) {
				add(kw)
			}
		}
	}

	return terms
}

// collect queries both stores and scores every hit by the fraction of
// query keywords present whole-word in its text. Context and synonym
// terms widen the search but never influence the score.
func (e *Engine) collect(ctx context.Context, terms, queryKeywords []string) ([]candidate, error) {
	pairs, err := e.store.SearchQAPairs(ctx, terms, candidateCap)
	if err != nil {
		return nil, errors.Wrapf(err, "qa search failed")
	}
	records, err := e.store.SearchRecords(ctx, terms, candidateCap)
	if err != nil {
		return nil, errors.Wrapf(err, "record search failed")
	}

	candidates := gog.Map(pairs, func(pair entity.QAPair) candidate {
		return candidate{
			text:   pair.Question + " " + pair.Answer,
			answer: pair.Answer,
		}
	})
	candidates = append(candidates, gog.Map(records, func(record entity.KnowledgeRecord) candidate {
		return candidate{
			text:   record.Content,
			answer: record.Content,
		}
	})...)

	for i := range candidates {
		candidates[i].score = overlapScore(queryKeywords, candidates[i].text)
	}

	return candidates, nil
}

// fallback consults the encyclopedia, then the learner. Failures are
// logged and fall through; only an empty result reaches the caller.
func (e *Engine) fallback(ctx context.Context, query string) (string, error) {
	if e.encyclopedia != nil {
		answer, err := e.encyclopedia.Lookup(ctx, query)
		if err != nil {
			e.logger.Warn("encyclopedia lookup failed", "error", err)
		} else if answer != "" {
			return answer, nil
		}
	}

	if e.learner != nil {
		answer, err := e.learner.Predict(ctx, query)
		if err != nil {
			e.logger.Warn("learner prediction failed", "error", err)
		} else if answer != "" {
			return answer, nil
		}
	}

	return "", nil
}

// overlapScore is the fraction of query keywords literally present in
// the candidate text, whole-word and case-insensitive.
func overlapScore(queryKeywords []string, text string) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}

	words := wordSet(text)
	matched := 0
	for _, kw := range queryKeywords {
		if _, ok := words[kw]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(queryKeywords))
}
