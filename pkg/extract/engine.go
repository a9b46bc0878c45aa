// Package extract implements deterministic entity extraction over free-text
// notes: people, companies, dates, locations, commitments, relationship
// signals, phones and emails, with commitments linked to nearby deadlines and
// an optional merge of AI-suggested entity strings.
//
// An Extractor holds no mutable state; one instance may serve concurrent
// callers.
package extract

import (
	"sync"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Extractor runs the extraction pipeline
type Extractor struct {
	tagger Tagger
	dates  DateParser
	now    func() time.Time
	logger *logrus.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithTagger replaces the named-span tagger
func WithTagger(t Tagger) Option {
	return func(e *Extractor) { e.tagger = t }
}

// WithDateParser replaces the natural-language date parser
func WithDateParser(p DateParser) Option {
	return func(e *Extractor) { e.dates = p }
}

// WithClock sets the time source used to resolve relative dates
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithLogger sets the logger
func WithLogger(l *logrus.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor backed by prose and olebedev/when unless
// overridden by options.
func New(opts ...Option) *Extractor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	e := &Extractor{
		tagger: NewProseTagger(),
		dates:  NewWhenDateParser(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = sync.OnceValue(func() *Extractor {
	return New()
})

// Extract runs a deterministic pass with the default Extractor
func Extract(text string) (*entity.Result, error) {
	return defaultExtractor().Extract(text)
}

// ExtractHybrid runs a hybrid pass with the default Extractor
func ExtractHybrid(text string, aiEntities []string) (*entity.Result, error) {
	return defaultExtractor().ExtractHybrid(text, aiEntities)
}

// Extract runs every primitive extractor over text and links commitments to
// their deadlines.
func (e *Extractor) Extract(text string) (*entity.Result, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("deterministic"))
	defer timer.ObserveDuration()

	start := time.Now()
	result, err := e.extract(text)
	if err != nil {
		return nil, err
	}
	result.Metadata.ProcessingTime = time.Since(start).Milliseconds()
	return result, nil
}

// ExtractHybrid runs the deterministic pass, then merges aiEntities that it
// did not already find. With no AI strings it is equivalent to Extract.
func (e *Extractor) ExtractHybrid(text string, aiEntities []string) (*entity.Result, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("hybrid"))
	defer timer.ObserveDuration()

	start := time.Now()
	result, err := e.extract(text)
	if err != nil {
		return nil, err
	}

	mergeAI(result, aiEntities)
	recordEntities(result.Structured.Other)

	e.logger.WithFields(logrus.Fields{
		"ai_suggested": len(aiEntities),
		"ai_kept":      result.Metadata.AICount,
	}).Debug("Merged AI entities")

	result.Metadata.ProcessingTime = time.Since(start).Milliseconds()
	return result, nil
}

func (e *Extractor) extract(text string) (*entity.Result, error) {
	now := e.now()

	spans, err := e.tagger.Tag(text)
	if err != nil {
		return nil, errors.Wrap(err, "tag named spans")
	}

	dates, err := extractDates(text, e.dates, now)
	if err != nil {
		return nil, errors.Wrap(err, "extract dates")
	}

	structured := entity.NewStructuredEntities()
	structured.People = namedEntities(text, spans, LabelPerson)
	structured.Companies = namedEntities(text, spans, LabelOrganization)
	structured.Dates = dates
	structured.Locations = namedEntities(text, spans, LabelPlace)
	structured.Commitments = linkCommitments(extractCommitments(text), dates)
	structured.RelationshipSignals = extractRelationshipSignals(text)
	structured.Contacts = append(extractPhones(text), extractEmails(text)...)

	all := structured.Deterministic()
	recordEntities(all)

	e.logger.WithFields(logrus.Fields{
		"text_length": len(text),
		"entities":    len(all),
	}).Debug("Deterministic extraction completed")

	return &entity.Result{
		Raw:         text,
		Structured:  structured,
		AllEntities: all,
		Metadata: entity.ResultMetadata{
			DeterministicCount: len(all),
			TotalCount:         len(all),
		},
	}, nil
}
