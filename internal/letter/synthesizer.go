// Package letter drafts dispute letters from a category template, the
// disputed items and retrieved regulation text.
package letter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 2 * time.Minute

// Config configures a Synthesizer.
type Config struct {
	Instructions        map[model.Category]string
	Format              Format
	GroundingNamespaces []string
	GroundingK          int
	Timeout             time.Duration
}

// Synthesizer turns a dispute batch into letter text.
type Synthesizer struct {
	generator    service.Generator
	templates    service.TemplateStore
	searcher     service.RegulationSearcher
	logger       *slog.Logger
	prompt       *template.Template
	instructions map[model.Category]string
	format       Format
	namespaces   []string
	k            int
	timeout      time.Duration
}

// NewSynthesizer wires a synthesizer. A nil templates store selects the
// embedded family for cfg.Format; a nil searcher disables grounding.
func NewSynthesizer(
	generator service.Generator,
	templates service.TemplateStore,
	searcher service.RegulationSearcher,
	cfg Config,
	logger *slog.Logger,
) (*Synthesizer, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: letter synthesis requires a generator", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Format == "" {
		cfg.Format = FormatMarkdown
	}
	if templates == nil {
		templates = NewEmbeddedStore(cfg.Format)
	}
	if len(cfg.GroundingNamespaces) == 0 {
		cfg.GroundingNamespaces = DefaultGroundingNamespaces
	}
	if cfg.GroundingK <= 0 {
		cfg.GroundingK = DefaultGroundingK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Instructions == nil {
		cfg.Instructions = DefaultInstructions()
	}

	prompt, err := loadPromptTemplate("letter_prompt")
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		generator:    generator,
		templates:    templates,
		searcher:     searcher,
		logger:       logger,
		prompt:       prompt,
		instructions: cfg.Instructions,
		format:       cfg.Format,
		namespaces:   cfg.GroundingNamespaces,
		k:            cfg.GroundingK,
		timeout:      cfg.Timeout,
	}, nil
}

// Format reports the output format of generated letters.
func (s *Synthesizer) Format() Format {
	return s.format
}

// Generate drafts a letter and returns the generator's text verbatim.
// Grounding failures only shrink the prompt; a missing generic template and
// generation failures are returned. Generation is never retried here.
func (s *Synthesizer) Generate(
	ctx context.Context,
	details model.AccountDetails,
	category model.Category,
	items []model.LineItem,
) (string, error) {
	tmpl, err := s.selectTemplate(ctx, category)
	if err != nil {
		return "", err
	}

	grounding := s.retrieveGrounding(ctx, GroundingQuery(category, details))

	prompt, err := renderPrompt(s.prompt, promptData{
		Details:      details,
		DetailKeys:   details.SortedKeys(),
		Category:     category,
		TemplateID:   tmpl.ID,
		Template:     tmpl.Content,
		FormatName:   formatName(s.format),
		ItemTable:    RenderItems(items, s.format),
		Grounding:    FormatGrounding(grounding),
		Instructions: s.instructions[category],
	})
	if err != nil {
		return "", err
	}

	var text string
	err = common.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var genErr error
		text, genErr = s.generator.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		return "", &common.SynthesisError{Category: string(category), Err: err}
	}

	s.logger.Debug("Generated dispute letter",
		"category", category,
		"template", tmpl.ID,
		"items", len(items),
		"grounding_matches", len(grounding))
	return text, nil
}

// selectTemplate loads the category template, falling back to the generic
// one. Only a missing generic template is an error.
func (s *Synthesizer) selectTemplate(ctx context.Context, category model.Category) (*model.Template, error) {
	id := TemplateID(category)
	tmpl, err := s.templates.Load(ctx, id)
	if err == nil {
		return tmpl, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, common.ErrTemplateNotFound) {
		s.logger.Warn("Template load failed, using generic template",
			"template", id,
			"error", err)
	}

	tmpl, err = s.templates.Load(ctx, GenericTemplateID)
	if err != nil {
		return nil, fmt.Errorf("load fallback template %s: %w", GenericTemplateID, err)
	}
	return tmpl, nil
}
