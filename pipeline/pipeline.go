// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/observability"
)

var pipelineTracer = otel.Tracer("medequip/pipeline")

// errNotConfigured marks a collaborator that was never wired (lightweight
// mode); it degrades identically to an unreachable backend.
var errNotConfigured = errors.New("collaborator not configured")

// StructuredExecutor runs a parameterized template query against the
// operational store.
type StructuredExecutor interface {
	Execute(ctx context.Context, q *StructuredQuery) (*datatypes.StructuredResult, error)
}

// KnowledgeSearcher performs semantic retrieval over the knowledge corpus.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]datatypes.RetrievedPassage, error)
}

// Session is the per-conversation state the pipeline reads and appends to.
// Implemented by the session package; the pipeline never creates sessions.
type Session interface {
	ID() string
	Identity() *datatypes.Identity
	History() *datatypes.ConversationHistory
	AcquireTurn()
	ReleaseTurn()
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Reply      string
	Intent     datatypes.Intent
	DataPlan   datatypes.DataPlan
	AuthNeeded bool
	Entities   datatypes.EntitySet
	Passages   []datatypes.RetrievedPassage
}

// Options tunes pipeline behavior; zero values select the defaults below.
type Options struct {
	TopK              int
	StructuredTimeout time.Duration
	RetrievalTimeout  time.Duration
}

const (
	defaultTopK              = 3
	defaultStructuredTimeout = 5 * time.Second
	defaultRetrievalTimeout  = 10 * time.Second
)

// Pipeline processes conversation turns end to end.
//
// Either collaborator may be nil (lightweight mode): the corresponding leg
// then reports data-unavailable and the turn degrades exactly as it would
// for an unreachable backend.
type Pipeline struct {
	classifier *Classifier
	extractor  *Extractor
	composer   Composer
	executor   StructuredExecutor
	searcher   KnowledgeSearcher
	opts       Options
	logger     *slog.Logger
}

// New assembles a pipeline over the given collaborators.
func New(executor StructuredExecutor, searcher KnowledgeSearcher, opts Options, logger *slog.Logger) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.StructuredTimeout <= 0 {
		opts.StructuredTimeout = defaultStructuredTimeout
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = defaultRetrievalTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		classifier: NewClassifier(DefaultRules()),
		extractor:  NewExtractor(),
		composer:   NewComposer(),
		executor:   executor,
		searcher:   searcher,
		opts:       opts,
		logger:     logger,
	}
}

// ProcessTurn runs the full per-turn sequence: classify, extract, auth-gate,
// route, fetch, compose, and append the user/assistant pair to history.
//
// Turns on the same session are serialized; turns on different sessions run
// concurrently. A cancelled context aborts before the history append, so a
// session never records a turn whose reply was not delivered.
func (p *Pipeline) ProcessTurn(ctx context.Context, sess Session, text string) (*TurnResult, error) {
	sess.AcquireTurn()
	defer sess.ReleaseTurn()

	start := time.Now()
	ctx, span := pipelineTracer.Start(ctx, "pipeline.ProcessTurn")
	defer span.End()

	intent := p.classifier.Classify(text)
	entities := p.extractor.Extract(text)

	// The plan carries its own entity snapshot so nothing downstream can
	// mutate what the turn result reports back.
	plan := datatypes.QueryPlan{
		Intent:       intent,
		Entities:     entities.Clone(),
		Identity:     sess.Identity(),
		RequiresAuth: intent.RequiresAuth(),
		Plan:         intent.Plan(),
		RawText:      text,
	}
	span.SetAttributes(
		attribute.String("turn.intent", string(intent)),
		attribute.String("turn.data_plan", string(plan.Plan)),
	)

	result := &TurnResult{
		Intent:   intent,
		DataPlan: plan.Plan,
		Entities: entities,
	}

	// Auth gate: account-scoped intents short-circuit to the sign-in
	// prompt before any data source is touched.
	if plan.RequiresAuth && plan.Identity == nil {
		result.AuthNeeded = true
		result.Reply = AuthPromptReply
		observability.TurnsTotal.WithLabelValues(string(intent), "auth_required").Inc()
		return p.finishTurn(ctx, sess, text, result, start)
	}

	structured, passages, structuredErr, retrievalErr := p.fetch(ctx, plan)
	result.Passages = passages
	result.Reply = p.composer.Compose(plan, structured, passages, structuredErr, retrievalErr)

	status := "ok"
	if structuredErr != nil || retrievalErr != nil {
		status = "degraded"
		p.logger.Warn("turn degraded",
			"session_id", sess.ID(),
			"intent", intent,
			"structured_err", errString(structuredErr),
			"retrieval_err", errString(retrievalErr),
		)
	}
	observability.TurnsTotal.WithLabelValues(string(intent), status).Inc()

	return p.finishTurn(ctx, sess, text, result, start)
}

// finishTurn appends the turn pair unless the caller has already gone away.
func (p *Pipeline) finishTurn(ctx context.Context, sess Session, text string, result *TurnResult, start time.Time) (*TurnResult, error) {
	observability.TurnDurationSeconds.
		WithLabelValues(string(result.DataPlan)).
		Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess.History().Append(
		datatypes.Turn{Role: datatypes.RoleUser, Text: text, Timestamp: now},
		datatypes.Turn{Role: datatypes.RoleAssistant, Text: result.Reply, Timestamp: now},
	)
	return result, nil
}

// fetch runs the data legs the plan calls for. Under PlanBoth the legs run
// in parallel with independent timeouts; one leg failing or stalling never
// blocks the other.
func (p *Pipeline) fetch(ctx context.Context, plan datatypes.QueryPlan) (
	structured *datatypes.StructuredResult,
	passages []datatypes.RetrievedPassage,
	structuredErr, retrievalErr error,
) {
	switch plan.Plan {
	case datatypes.PlanStructured:
		structured, structuredErr = p.runStructured(ctx, plan)
	case datatypes.PlanUnstructured:
		passages, retrievalErr = p.runRetrieval(ctx, plan)
	case datatypes.PlanBoth:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			structured, structuredErr = p.runStructured(gctx, plan)
			return nil
		})
		g.Go(func() error {
			passages, retrievalErr = p.runRetrieval(gctx, plan)
			return nil
		})
		// Leg errors are carried out of band in structuredErr/retrievalErr.
		_ = g.Wait()
	}
	return structured, passages, structuredErr, retrievalErr
}

func (p *Pipeline) runStructured(ctx context.Context, plan datatypes.QueryPlan) (*datatypes.StructuredResult, error) {
	query, err := BuildStructuredQuery(plan)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, nil
	}
	if p.executor == nil {
		observability.CollaboratorErrorsTotal.WithLabelValues("structured-store", "unavailable").Inc()
		return nil, &datatypes.DataUnavailableError{Collaborator: "structured-store", Err: errNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.StructuredTimeout)
	defer cancel()

	result, err := p.executor.Execute(ctx, query)
	if err != nil {
		kind := "unavailable"
		if datatypes.IsQueryError(err) {
			kind = "query"
		}
		observability.CollaboratorErrorsTotal.WithLabelValues("structured-store", kind).Inc()
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) runRetrieval(ctx context.Context, plan datatypes.QueryPlan) ([]datatypes.RetrievedPassage, error) {
	if p.searcher == nil {
		observability.CollaboratorErrorsTotal.WithLabelValues("knowledge-base", "unavailable").Inc()
		return nil, &datatypes.DataUnavailableError{Collaborator: "knowledge-base", Err: errNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.RetrievalTimeout)
	defer cancel()

	passages, err := p.searcher.Search(ctx, plan.RawText, p.opts.TopK)
	if err != nil {
		observability.CollaboratorErrorsTotal.WithLabelValues("knowledge-base", "unavailable").Inc()
		return nil, err
	}
	return passages, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
