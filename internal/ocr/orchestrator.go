package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/layout"
)

// ReasonForced is the diagnostic reason when the caller skipped the
// text-layer attempt entirely.
const ReasonForced = "forced-ocr"

// DefaultTimeout bounds each individual engine call.
const DefaultTimeout = 20 * time.Second

// FallbackResult is the outcome of the cascade for one page image.
type FallbackResult struct {
	Words  []layout.WordBox
	Engine string
	// Reason is a human-readable diagnostic for status display. It carries
	// no control-flow meaning.
	Reason string
}

// Orchestrator runs the two-engine fallback cascade: the primary engine is
// tried first and the secondary only when the primary yields no overlay
// words. Each call gets an independent timeout; a timeout or transport
// failure counts as zero overlay words.
type Orchestrator struct {
	primary   Engine
	secondary Engine
	timeout   time.Duration
}

// NewOrchestrator builds the cascade. A non-positive timeout falls back to
// DefaultTimeout; a nil secondary disables the fallback step.
func NewOrchestrator(primary, secondary Engine, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{primary: primary, secondary: secondary, timeout: timeout}
}

// Run recognizes the page image, falling back to the secondary engine when
// the primary returns no words. When both engines return words, the one with
// strictly more overlay words wins; a tie keeps the primary's result. When
// neither produces a word the result carries the failure as a diagnostic
// reason and an empty word list.
func (o *Orchestrator) Run(ctx context.Context, image []byte, language string) *FallbackResult {
	primaryOverlay, primaryErr := o.recognize(ctx, o.primary, image, language)
	primaryCount := primaryOverlay.WordCount()

	if primaryCount > 0 {
		return &FallbackResult{
			Words:  primaryOverlay.WordBoxes(),
			Engine: o.primary.Name(),
		}
	}

	if o.secondary == nil {
		return o.exhausted(primaryErr, nil)
	}

	secondaryOverlay, secondaryErr := o.recognize(ctx, o.secondary, image, language)
	secondaryCount := secondaryOverlay.WordCount()

	if secondaryCount > primaryCount {
		return &FallbackResult{
			Words:  secondaryOverlay.WordBoxes(),
			Engine: o.secondary.Name(),
			Reason: fmt.Sprintf("%s recognized %d words, %s none", o.secondary.Name(), secondaryCount, o.primary.Name()),
		}
	}

	// Tie at zero: both engines came up empty.
	return o.exhausted(primaryErr, secondaryErr)
}

func (o *Orchestrator) recognize(ctx context.Context, engine Engine, image []byte, language string) (*Overlay, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	overlay, err := engine.Recognize(callCtx, image, language)
	if err != nil {
		// Treated as zero overlay words; the cascade moves on.
		log.Warn().Err(err).Str("engine", engine.Name()).Msg("OCR engine call failed")
		return nil, err
	}
	return overlay, nil
}

func (o *Orchestrator) exhausted(primaryErr, secondaryErr error) *FallbackResult {
	reason := "no words recognized"
	switch {
	case primaryErr != nil && secondaryErr != nil:
		reason = fmt.Sprintf("%s: %v; %s: %v", o.primary.Name(), primaryErr, o.secondary.Name(), secondaryErr)
	case primaryErr != nil:
		reason = primaryErr.Error()
	case secondaryErr != nil:
		reason = secondaryErr.Error()
	}
	return &FallbackResult{Reason: reason}
}
