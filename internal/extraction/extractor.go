package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/normalize"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

// Extractor runs the per-field question loop over a document and records the
// answers in the audit trail.
type Extractor struct {
	client  Client
	storage service.Storage
	retry   service.RetryOptions

	// Progress is called after each answered field. Nil disables reporting.
	Progress func(done, total int)
}

// NewExtractor creates an extractor backed by the given client and storage.
func NewExtractor(client Client, storage service.Storage) *Extractor {
	return &Extractor{
		client:  client,
		storage: storage,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Result carries everything one extraction run produced.
type Result struct {
	Fields normalize.RawFields
	Run    *model.ExtractionRun
}

// Run asks every field question against the document text, saves the run to
// the audit trail and returns the raw answers keyed by record field. A field
// the provider cannot find comes back as the "Non spécifié" sentinel and is
// kept verbatim; the normalizer downstream maps it to absent.
func (e *Extractor) Run(ctx context.Context, source, document string) (*Result, error) {
	if strings.TrimSpace(document) == "" {
		return nil, common.ErrNoDocumentText
	}

	prompts := FieldPrompts()
	fields := make(normalize.RawFields, len(prompts))
	audit := make(map[string]string, len(prompts))

	for i, fp := range prompts {
		var answer string
		err := common.WithRetry(ctx, func() error {
			var extractErr error
			answer, extractErr = e.client.ExtractField(ctx, fp.Label, fp.Prompt, document)
			return extractErr
		}, e.retry)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", common.ErrExtractionFailed, fp.Label, err)
		}

		fields[fp.Key] = answer
		audit[fp.Label] = answer

		if e.Progress != nil {
			e.Progress(i+1, len(prompts))
		}
	}

	run := &model.ExtractionRun{
		SessionID: uuid.NewString(),
		Source:    source,
		Fields:    audit,
	}
	if err := e.storage.SaveExtraction(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record extraction run: %w", err)
	}

	return &Result{Fields: fields, Run: run}, nil
}
