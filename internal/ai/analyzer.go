// Package ai talks to external text-generation models.
//
// Callers only see Analyzer: a prompt (and optionally one document) goes in,
// opaque text comes out. Responses are never parsed here.
package ai

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoProvider = errors.New("no AI provider configured")

// Attachment is a document forwarded alongside a prompt. Text holds an
// extracted plain-text rendition for providers that cannot read Data.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
	Text     string
}

func (a *Attachment) IsImage() bool {
	return a != nil && len(a.Data) > 0 && len(a.MimeType) > 6 && a.MimeType[:6] == "image/"
}

// Analyzer sends a prompt to a model and returns its raw text.
type Analyzer interface {
	Send(ctx context.Context, prompt string, attachment *Attachment) (string, error)
}

// Chain tries each analyzer in order and returns the first success.
type Chain []Analyzer

func (ch Chain) Send(ctx context.Context, prompt string, attachment *Attachment) (string, error) {
	if len(ch) == 0 {
		return "", ErrNoProvider
	}
	var errs []error
	for i, a := range ch {
		text, err := a.Send(ctx, prompt, attachment)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// Disabled always fails. Used when no provider key is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, string, *Attachment) (string, error) {
	return "", ErrNoProvider
}
