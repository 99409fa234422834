// Package resolver drives the provider fallback loop: try each provider
// registered for a currency in priority order and return the first usable
// requisites record.
package resolver

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/I7ZT1/club-manager-panel/internal/clock"
	"github.com/I7ZT1/club-manager-panel/internal/observability/logger"
	"github.com/I7ZT1/club-manager-panel/internal/observability/metrics"
	"github.com/I7ZT1/club-manager-panel/internal/provider"
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
	"github.com/I7ZT1/club-manager-panel/internal/provider/normalize"
)

type Service struct {
	reg     *provider.Registry
	genID   *snowflake.Node
	clk     clock.Clock
	log     *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.ResolverMetrics
}

func New(reg *provider.Registry, genID *snowflake.Node, clk clock.Clock, log *zap.Logger, m *metrics.ResolverMetrics) *Service {
	return &Service{
		reg:     reg,
		genID:   genID,
		clk:     clk,
		log:     log.Named("resolver"),
		tracer:  otel.Tracer("resolver"),
		metrics: m,
	}
}

// ResolveRequisites walks the currency's fallback chain sequentially.
// Providers create real pending orders on success, so at most one call is in
// flight per resolution; racing providers would mint duplicate orders.
//
// Per-provider failures are recorded and skipped. A cancelled context is
// never treated as a provider failure: it propagates instead of advancing
// the chain. Exhaustion returns an AggregateError carrying every recorded
// failure in attempt order.
func (s *Service) ResolveRequisites(ctx context.Context, req domain.DepositRequest) (domain.Requisites, error) {
	if req.Amount <= 0 {
		return domain.Requisites{}, domain.ErrInvalidAmount
	}
	chain := s.reg.Chain(req.Currency)
	if len(chain) == 0 {
		return domain.Requisites{}, domain.ErrUnsupportedCurrency
	}
	if req.OrderID == "" {
		req.OrderID = s.genID.Generate().String()
	}

	ctx, span := s.tracer.Start(ctx, "resolver.ResolveRequisites",
		trace.WithAttributes(
			attribute.String("currency", string(req.Currency)),
			attribute.Int("chain_length", len(chain)),
		))
	defer span.End()

	failures := make([]*domain.Failure, 0, len(chain))
	for _, client := range chain {
		if err := ctx.Err(); err != nil {
			return domain.Requisites{}, err
		}

		requisites, failure := s.attempt(ctx, client, req)
		if failure == nil {
			span.SetAttributes(attribute.String("resolved_provider", string(client.ID())))
			return requisites, nil
		}
		if err := ctx.Err(); err != nil {
			return domain.Requisites{}, err
		}

		failure.At = s.clk.Now()
		failures = append(failures, failure)
		s.log.Warn("provider attempt failed, advancing",
			zap.String("provider", string(client.ID())),
			zap.String("kind", string(failure.Kind)),
			zap.String("order_id", req.OrderID),
			zap.Error(failure),
		)
	}

	s.metrics.IncChainExhausted(string(req.Currency))
	s.log.Error("fallback chain exhausted",
		zap.String("currency", string(req.Currency)),
		zap.Int("providers_tried", len(failures)),
	)
	return domain.Requisites{}, &domain.AggregateError{
		Currency: req.Currency,
		OrderID:  req.OrderID,
		Failures: failures,
	}
}

func (s *Service) attempt(ctx context.Context, client domain.Client, req domain.DepositRequest) (domain.Requisites, *domain.Failure) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("provider.attempt", trace.WithAttributes(
		attribute.String("provider", string(client.ID())),
	))

	started := s.clk.Now()
	observe := func(outcome string) {
		s.metrics.ObserveAttempt(string(client.ID()), outcome, s.clk.Now().Sub(started).Seconds())
	}

	raw, err := client.CreateDepositOrder(ctx, req)
	if err != nil {
		failure := asFailure(client.ID(), err)
		observe(string(failure.Kind))
		return domain.Requisites{}, failure
	}

	requisites, err := normalize.Requisites(client.ID(), raw)
	if err != nil {
		failure := asFailure(client.ID(), err)
		observe(string(failure.Kind))
		return domain.Requisites{}, failure
	}
	if !requisites.Usable() {
		// A successful call with partial requisites is indistinguishable
		// from "nothing available" as far as the payer is concerned.
		observe("empty_requisites")
		return domain.Requisites{}, domain.BusinessFailure(client.ID(), "empty_requisites", "provider returned incomplete requisites")
	}
	observe("resolved")

	s.log.Info("requisites resolved",
		zap.String("provider", string(client.ID())),
		zap.String("bank", requisites.Bank),
		zap.String("card", logger.MaskCard(requisites.Card)),
		zap.String("order_ref", requisites.OrderRef),
		zap.String("order_id", req.OrderID),
	)
	return requisites, nil
}

func asFailure(id domain.ID, err error) *domain.Failure {
	var failure *domain.Failure
	if errors.As(err, &failure) {
		return failure
	}
	return domain.NetworkFailure(id, err)
}
