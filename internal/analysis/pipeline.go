// Package analysis takes custody of uploaded claim documents and runs them
// through the AI analyzer.
//
// Custody comes first: the document is stored and referenced on the claim
// before the analyzer is called, and analyzer failures only ever produce a
// degraded Result.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/ai"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/storage"
	"github.com/fra-atlas/atlas-backend/internal/store"
)

type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ClaimContext is the part of a claim the prompt is built from.
type ClaimContext struct {
	Title   string
	Address string
}

func ContextFor(c *models.Claim) ClaimContext {
	return ClaimContext{Title: c.Title, Address: c.Location.Address}
}

// Result is the analyzer output, or a failure note when Degraded is set.
type Result struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

type Outcome struct {
	Claim     *models.Claim
	Reference string
	Analysis  Result
}

type Pipeline struct {
	docs     storage.DocumentStore
	claims   store.ClaimStore
	analyzer ai.Analyzer
	timeout  time.Duration
	now      func() time.Time
}

func NewPipeline(docs storage.DocumentStore, claims store.ClaimStore, analyzer ai.Analyzer, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		docs:     docs,
		claims:   claims,
		analyzer: analyzer,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Process stores doc, appends its reference to the claim and records the
// analysis. An error means custody failed; analysis problems never do.
func (p *Pipeline) Process(ctx context.Context, claim *models.Claim, doc Document) (*Outcome, error) {
	key := storage.DocumentKey(claim.ID, doc.Filename)
	mimeType := ResolveMimeType(doc.Filename, doc.ContentType)
	ref, err := p.docs.Put(ctx, key, bytes.NewReader(doc.Data), int64(len(doc.Data)), mimeType)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	updated, err := p.claims.AppendDocument(ctx, claim.ID, ref, p.now())
	if err != nil {
		return nil, fmt.Errorf("append document: %w", err)
	}

	result := p.Analyze(ctx, doc, ContextFor(updated))
	if final, err := p.claims.SetAnalysis(ctx, claim.ID, result.Text, p.now()); err != nil {
		slog.Error("failed to record document analysis", "claim_id", claim.ID.String(), "error", err)
	} else {
		updated = final
	}

	return &Outcome{Claim: updated, Reference: ref, Analysis: result}, nil
}

// Analyze calls the analyzer with a bounded timeout.
func (p *Pipeline) Analyze(ctx context.Context, doc Document, cc ClaimContext) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = degraded(fmt.Errorf("analyzer panic: %v", r))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.analyzer.Send(callCtx, BuildPrompt(cc), Prepare(doc))
	if err != nil {
		res = degraded(err)
		slog.Warn("document analysis degraded", "title", cc.Title, "error", res.Text)
		return res
	}
	return Result{Text: text}
}

func degraded(err error) Result {
	return Result{Text: "AI analysis failed: " + ai.FailureNote(err), Degraded: true}
}

// BuildPrompt asks for the five analysis categories.
func BuildPrompt(cc ClaimContext) string {
	title := cc.Title
	if title == "" {
		title = "Forest Rights"
	}
	address := cc.Address
	if address == "" {
		address = "Unknown location"
	}
	return fmt.Sprintf(`You are an AI assistant specialized in analyzing FRA (Forest Rights Act) claim documents.

Analyze this FRA claim document and extract the following information:
1. Claimant details (name, address, community)
2. Land details (area, location, forest type)
3. Evidence of traditional occupation
4. Document authenticity indicators
5. Any missing information or red flags

Context: This claim is for %s in %s.

Provide a structured analysis in JSON format.`, title, address)
}
