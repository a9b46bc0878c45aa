package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/athapong/notegraph/pkg/graph/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	pipelineProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "note_pipeline_processing_duration_seconds",
			Help: "Time spent converting and extracting a note",
		},
		[]string{"status"},
	)

	notesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_pipeline_notes_processed_total",
			Help: "Total number of notes processed",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(pipelineProcessingDuration)
	prometheus.MustRegister(notesProcessedTotal)
}

// NotePipeline converts notes to text and extracts entities from them
type NotePipeline struct {
	processors map[string]NoteProcessor
	extractor  Extractor
	suggester  Suggester
	mutex      sync.RWMutex
	logger     *logrus.Logger
	batchSize  int
}

// NewPipeline creates a pipeline driving extractor
func NewPipeline(extractor Extractor) *NotePipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &NotePipeline{
		processors: make(map[string]NoteProcessor),
		extractor:  extractor,
		batchSize:  10,
		logger:     logger,
	}
}

// AddProcessor registers processor for each of its content types, replacing
// any earlier registration.
func (p *NotePipeline) AddProcessor(processor NoteProcessor) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, contentType := range processor.SupportedTypes() {
		p.processors[contentType] = processor
	}
}

// SetSuggester enables hybrid extraction with AI-suggested entities
func (p *NotePipeline) SetSuggester(s Suggester) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.suggester = s
}

// SetBatchSize bounds how many notes are processed concurrently
func (p *NotePipeline) SetBatchSize(n int) {
	if n > 0 {
		p.batchSize = n
	}
}

// SetLogger replaces the pipeline logger
func (p *NotePipeline) SetLogger(l *logrus.Logger) {
	p.logger = l
}

// BatchProcess processes notes concurrently, one batch at a time. Every note
// in a failing batch is still attempted; the first error is returned.
func (p *NotePipeline) BatchProcess(ctx context.Context, notes []*Note) error {
	p.logger.WithField("note_count", len(notes)).Info("Starting batch processing")
	metrics.PipelineQueueLength.Set(float64(len(notes)))
	defer metrics.PipelineQueueLength.Set(0)

	for i := 0; i < len(notes); i += p.batchSize {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "batch processing cancelled")
		}

		end := i + p.batchSize
		if end > len(notes) {
			end = len(notes)
		}

		batch := notes[i:end]
		errs := make(chan error, len(batch))
		var wg sync.WaitGroup

		for _, note := range batch {
			wg.Add(1)
			go func(n *Note) {
				defer wg.Done()

				timer := prometheus.NewTimer(pipelineProcessingDuration.WithLabelValues("batch"))
				err := p.Process(ctx, n)
				timer.ObserveDuration()

				if err != nil {
					p.logger.WithError(err).WithField("note_id", noteID(n)).Error("Failed to process note")
					notesProcessedTotal.WithLabelValues("error").Inc()
					errs <- err
					return
				}

				notesProcessedTotal.WithLabelValues("success").Inc()
			}(note)
		}

		wg.Wait()
		close(errs)
		metrics.PipelineQueueLength.Set(float64(len(notes) - end))

		for err := range errs {
			if err != nil {
				return errors.Wrap(err, "batch processing failed")
			}
		}
	}

	p.logger.Info("Batch processing completed successfully")
	return nil
}

// Process converts a single note to text and extracts its entities
func (p *NotePipeline) Process(ctx context.Context, note *Note) error {
	if note == nil {
		return fmt.Errorf("cannot process nil note")
	}

	contentType := note.ContentType
	if contentType == "" {
		contentType = ContentTypeText
	}

	p.mutex.RLock()
	processor, ok := p.processors[contentType]
	suggester := p.suggester
	p.mutex.RUnlock()

	if !ok {
		metrics.NoteProcessingErrors.WithLabelValues("convert").Inc()
		return fmt.Errorf("no processor registered for content type %q", contentType)
	}

	text, err := processor.Process(ctx, note.Content)
	if err != nil {
		metrics.NoteProcessingErrors.WithLabelValues("convert").Inc()
		return errors.Wrapf(err, "convert note %s", note.ID)
	}

	var suggestions []string
	if suggester != nil {
		suggestions, err = suggester.Suggest(ctx, text)
		if err != nil {
			// Deterministic results stand on their own.
			metrics.NoteProcessingErrors.WithLabelValues("suggest").Inc()
			p.logger.WithError(err).WithField("note_id", note.ID).Warn("AI suggestion failed, continuing without it")
			suggestions = nil
		}
	}

	result, err := p.extractor.ExtractHybrid(text, suggestions)
	if err != nil {
		metrics.NoteProcessingErrors.WithLabelValues("extract").Inc()
		return errors.Wrapf(err, "extract note %s", note.ID)
	}

	note.ContentType = contentType
	note.Text = text
	note.Result = result
	note.ProcessedAt = time.Now()

	p.logger.WithFields(logrus.Fields{
		"note_id":  note.ID,
		"entities": result.Metadata.TotalCount,
	}).Debug("Note processing completed")
	return nil
}

func noteID(n *Note) string {
	if n == nil {
		return ""
	}
	return n.ID
}
