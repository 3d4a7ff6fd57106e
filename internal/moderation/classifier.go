package moderation

import (
	"context"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/murmurhq/murmur/internal/adapters"
	"github.com/murmurhq/murmur/internal/observability"
)

// Service merges the external classifier verdict with the local keyword
// path, taking whichever asserts the higher severity.
type Service struct {
	external adapters.Classifier
	timeout  time.Duration
	logger   *log.Entry
}

func NewService(external adapters.Classifier, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		external: external,
		timeout:  timeout,
		logger:   log.WithField("service", "moderation"),
	}
}

// Classify evaluates the text on both paths concurrently. A failed or
// quota-limited external call fails open: the external path contributes
// nothing and the local path alone decides.
func (s *Service) Classify(ctx context.Context, text string) Verdict {
	ctx, span := otel.Tracer("moderation").Start(ctx, "classify")
	defer span.End()

	var (
		external      adapters.Classification
		localLevel    int
		localCategory []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		localLevel, localCategory = localSeverity(text)
		return nil
	})
	g.Go(func() error {
		if s.external == nil {
			return nil
		}
		callCtx, cancel := context.WithTimeout(gctx, s.timeout)
		defer cancel()
		result, err := s.external.Classify(callCtx, text)
		if err != nil {
			s.logger.WithError(err).Error("external classifier failed, failing open")
			observability.RecordClassifierFailure()
			if observability.Logger != nil {
				observability.Logger.Warn("external classifier unavailable",
					zap.Error(err),
				)
			}
			return nil
		}
		external = result
		return nil
	})
	_ = g.Wait()

	externalLevel := severityFromCategories(external.Flagged, external.Categories)

	level := externalLevel
	categories := external.Categories
	if localLevel > externalLevel {
		level = localLevel
		categories = mergeCategories(external.Categories, localCategory)
	}

	verdict := Verdict{
		Flagged:       level > 0,
		SeverityLevel: level,
		Categories:    categories,
		Action:        actionForSeverity(level),
	}
	if level >= 1 {
		verdict.SupportMessage, verdict.Resources = supportContent(level)
	}

	observability.RecordClassifierVerdict(strconv.Itoa(level))
	return verdict
}

func mergeCategories(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
