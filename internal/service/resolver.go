package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/analytics"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/metrics"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/repository"
	"github.com/scanlink/scanlink-server-go/internal/sse"
	"github.com/scanlink/scanlink-server-go/internal/util"
)

type Outcome string

const (
	OutcomeRedirect Outcome = "redirect"
	OutcomeRender   Outcome = "render"
	OutcomeDenied   Outcome = "denied"
	OutcomeNotFound Outcome = "not_found"
)

// Resolution is the terminal result of one visit.
type Resolution struct {
	Outcome   Outcome
	TargetURL string         // set for OutcomeRedirect
	Kind      model.CodeKind // set for OutcomeRender
	Content   model.Content  // set for OutcomeRender
	Reason    DenyReason     // set for OutcomeDenied
}

// ScanFeed is the live event fan-out the resolver notifies on every counted
// scan. Satisfied by *sse.Broker.
type ScanFeed interface {
	Publish(ctx context.Context, ownerID string, event sse.Event) error
}

const scanEmitTimeout = 5 * time.Second

// ResolverService drives a single visit through Lookup, Gate, Account and
// Outcome. All coordination between concurrent visits lives in the store's
// conditional increment; the service itself holds no cross-request state.
type ResolverService struct {
	codeRepo     repository.CodeRepository
	destinations Destinations
	feed         ScanFeed
	publisher    analytics.Publisher
}

func NewResolverService(
	codeRepo repository.CodeRepository,
	destinations Destinations,
	feed ScanFeed,
	publisher analytics.Publisher,
) *ResolverService {
	return &ResolverService{
		codeRepo:     codeRepo,
		destinations: destinations,
		feed:         feed,
		publisher:    publisher,
	}
}

// Resolve turns a short code into a terminal outcome. Exactly one scan is
// counted per redirect/render outcome; denied and not-found visits never
// touch the counter. A store error aborts the visit: the caller may retry the
// whole visit safely because the increment either happened atomically or not
// at all.
func (s *ResolverService) Resolve(ctx context.Context, code string, hints VisitHints) (*Resolution, error) {
	code = util.NormalizeCode(code)

	rec, err := s.codeRepo.FindByID(ctx, code)
	if err != nil {
		metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, apperrors.Database(err)
	}

	now := time.Now()
	if decision := EvaluateGate(rec, now); !decision.Allowed {
		return s.denied(decision.Reason), nil
	}

	rows, err := s.codeRepo.ConditionalIncrementScan(ctx, code, now)
	if err != nil {
		metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, apperrors.Database(err)
	}

	if rows == 0 {
		// Lost the race between Gate and Account: another visit consumed the
		// last slot, or the owner paused/expired the code in the gap. The
		// re-read is only for classifying the denial; the decision itself was
		// already made by the conditional update.
		return s.classifyRaceLoss(ctx, code)
	}

	newCount := rec.ScanCount + 1
	s.emitScan(rec, newCount, hints)
	metrics.Scans.WithLabelValues(string(rec.Kind)).Inc()

	return s.outcome(rec, hints)
}

func (s *ResolverService) classifyRaceLoss(ctx context.Context, code string) (*Resolution, error) {
	fresh, err := s.codeRepo.FindByID(ctx, code)
	if err != nil {
		metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, apperrors.Database(err)
	}

	decision := EvaluateGate(fresh, time.Now())
	if decision.Allowed {
		// The record flipped back to eligible between the refused increment
		// and this read. Vanishingly rare; surface as a transient failure
		// rather than guessing a denial reason.
		metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, apperrors.Internal("resolution raced with a concurrent update")
	}

	log.Debug().
		Str("code", util.MaskCode(code)).
		Str("reason", string(decision.Reason)).
		Msg("scan refused after gate passed")

	return s.denied(decision.Reason), nil
}

func (s *ResolverService) denied(reason DenyReason) *Resolution {
	if reason == DenyNotFound {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		return &Resolution{Outcome: OutcomeNotFound}
	}
	metrics.Resolutions.WithLabelValues(string(reason)).Inc()
	return &Resolution{Outcome: OutcomeDenied, Reason: reason}
}

func (s *ResolverService) outcome(rec *model.ShortCode, hints VisitHints) (*Resolution, error) {
	content, err := model.DecodeContent(rec.Kind, rec.Content)
	if err != nil {
		// The scan is already counted: counted first, delivered second.
		metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "undecodable content", err)
	}

	if rec.Kind.IsRedirect() {
		target, err := s.destinations.Resolve(content, hints)
		if err != nil {
			metrics.Resolutions.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.Resolutions.WithLabelValues("redirect").Inc()
		return &Resolution{Outcome: OutcomeRedirect, TargetURL: target}, nil
	}

	metrics.Resolutions.WithLabelValues("render").Inc()
	return &Resolution{Outcome: OutcomeRender, Kind: rec.Kind, Content: content}, nil
}

// emitScan pushes the scan event to the live feed and the analytics queue.
// Both are fire-and-forget: the visit must not block on, or fail because of,
// event delivery.
func (s *ResolverService) emitScan(rec *model.ShortCode, newCount int64, hints VisitHints) {
	event := analytics.NewScanEvent(rec, newCount, hints.UserAgent, hints.Referrer)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanEmitTimeout)
		defer cancel()

		if s.feed != nil {
			data, err := json.Marshal(event)
			if err == nil {
				if err := s.feed.Publish(ctx, rec.OwnerID, sse.Event{Type: "scan", Data: data}); err != nil {
					log.Warn().Err(err).Str("code", rec.ID).Msg("failed to publish scan to live feed")
				}
			}
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event); err != nil {
				log.Warn().Err(err).Str("code", rec.ID).Msg("failed to publish scan to analytics queue")
			}
		}
	}()
}
