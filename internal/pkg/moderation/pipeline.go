package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TutorFox/internal/pkg/metrics"
)

const DefaultClassifierTimeout = 5 * time.Second

// Pipeline runs the optional external classifier and then the mandatory
// keyword layer.
type Pipeline struct {
	classifier Classifier
	blocklist  *Blocklist
	timeout    time.Duration
}

// NewPipeline builds a pipeline. classifier may be nil when no credential is
// configured; the keyword layer always runs.
func NewPipeline(classifier Classifier, blocklist *Blocklist, timeout time.Duration) *Pipeline {
	if blocklist == nil {
		blocklist = NewBlocklist(DefaultTerms)
	}
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	return &Pipeline{classifier: classifier, blocklist: blocklist, timeout: timeout}
}

// Moderate decides whether text may be forwarded to the language model.
func (p *Pipeline) Moderate(ctx context.Context, text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{}
	}

	if v, ok := p.external(ctx, text); ok {
		return p.record(v)
	}

	if term, ok := p.blocklist.Match(text); ok {
		return p.record(Verdict{Blocked: true, Layer: LayerKeyword, Term: term})
	}
	return p.record(Verdict{})
}

// external returns a blocking verdict when the classifier flagged text. Every
// failure falls through to the keyword layer.
func (p *Pipeline) external(ctx context.Context, text string) (Verdict, bool) {
	if p.classifier == nil {
		return Verdict{}, false
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.classifier.Classify(cctx, text)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, ErrNoCredential):
			reason = "no_credential"
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		}
		metrics.ClassifierFailures.WithLabelValues(reason).Inc()
		fiberlog.Warnf("moderation classifier unavailable, using keyword layer only: %v", err)
		return Verdict{}, false
	}
	if !res.Flagged {
		return Verdict{}, false
	}
	return Verdict{Blocked: true, Layer: LayerExternal, Categories: res.Categories}, true
}

func (p *Pipeline) record(v Verdict) Verdict {
	metrics.ModerationVerdicts.WithLabelValues(v.layerLabel()).Inc()
	if v.Blocked {
		fiberlog.Infof("moderation blocked message: layer=%s reason=%s", v.Layer, v.Reason())
	}
	return v
}
