// Package quote fans a quote request out to every eligible provider and merges the results.
package quote

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/eligibility"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// Aggregator orchestrates concurrent provider calls. It holds no per-request state.
type Aggregator struct {
	logger *zap.Logger
	reg    *registry.Registry
	elig   *eligibility.Checker
}

func NewAggregator(logger *zap.Logger, reg *registry.Registry, elig *eligibility.Checker) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger, reg: reg, elig: elig}
}

type outcome struct {
	quote *model.Quote
	err   *model.QuoteError
}

// Aggregate returns every quote the eligible providers produced plus one error per provider
// that did not. It never fails as a whole: an empty quote list with errors is a valid result.
func (a *Aggregator) Aggregate(ctx context.Context, req model.QuoteRequest) model.AggregateResult {
	start := time.Now()
	eligible, ineligible := a.elig.Partition(req.CountryCode, req.Providers)

	for _, e := range ineligible {
		metrics.IncProviderQuote(string(e.Provider), outcomeLabel(e.Kind))
	}

	// Each goroutine writes only its own slot.
	outcomes := make([]outcome, len(eligible))
	var g errgroup.Group
	for i, entry := range eligible {
		i, entry := i, entry
		g.Go(func() error {
			outcomes[i] = a.call(ctx, entry, req)
			return nil
		})
	}
	_ = g.Wait()

	res := model.AggregateResult{
		Quotes: make([]model.Quote, 0, len(eligible)),
		Errors: make([]model.QuoteError, 0, len(ineligible)+len(eligible)),
	}
	res.Errors = append(res.Errors, ineligible...)

	for _, o := range outcomes {
		if o.quote != nil {
			res.Quotes = append(res.Quotes, *o.quote)
			continue
		}
		res.Errors = append(res.Errors, *o.err)
	}

	SortQuotes(res.Quotes, a.orderOf)
	sortErrors(res.Errors, a.orderOf)

	label := "quoted"
	if len(res.Quotes) == 0 {
		label = "empty"
	}
	metrics.ObserveDuration(metrics.AggregateDuration, start, label)
	a.logger.Info("quote.aggregated",
		zap.String("country", req.CountryCode),
		zap.Int("requested", len(req.Providers)),
		zap.Int("eligible", len(eligible)),
		zap.Int("quotes", len(res.Quotes)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// call runs one adapter under its own deadline. The adapter runs in a separate goroutine so
// that one ignoring ctx is still abandoned at the deadline; its late result is discarded.
func (a *Aggregator) call(ctx context.Context, entry *registry.Entry, req model.QuoteRequest) outcome {
	id := entry.ID()
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, entry.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("quote.provider_panic",
					zap.String("provider", string(id)),
					zap.Any("panic", r))
				done <- outcome{err: model.NewQuoteError(id, model.ErrUnknown, "provider adapter panicked: %v", r)}
			}
		}()
		q, err := entry.Adapter.FetchQuote(callCtx, req)
		done <- a.settle(id, q, err)
	}()

	var out outcome
	select {
	case out = <-done:
		// A failure that surfaced because the deadline passed is a timeout, whatever the adapter returned.
		if out.err != nil && callCtx.Err() != nil {
			out.err = deadlineError(id, ctx, callCtx, entry.Timeout)
		}
	case <-callCtx.Done():
		out = outcome{err: deadlineError(id, ctx, callCtx, entry.Timeout)}
	}

	metrics.ObserveDuration(metrics.ProviderQuoteDuration, start, string(id))
	if out.err != nil {
		metrics.IncProviderQuote(string(id), outcomeLabel(out.err.Kind))
		a.logger.Warn("quote.provider_failed",
			zap.String("provider", string(id)),
			zap.String("kind", string(out.err.Kind)),
			zap.String("message", out.err.Message),
			zap.Duration("elapsed", time.Since(start)))
		return out
	}
	metrics.IncProviderQuote(string(id), "ok")
	return out
}

func (a *Aggregator) settle(id model.ProviderID, q *model.Quote, err error) outcome {
	if err != nil {
		qe := providers.Classify(id, err)
		return outcome{err: &qe}
	}
	if q == nil {
		return outcome{err: model.NewQuoteError(id, model.ErrUnknown, "no quote returned")}
	}
	cp := *q
	cp.Provider = id
	return outcome{quote: &cp}
}

func deadlineError(id model.ProviderID, parent, callCtx context.Context, timeout time.Duration) *model.QuoteError {
	if errors.Is(parent.Err(), context.Canceled) {
		return model.NewQuoteError(id, model.ErrTimeout, "request cancelled by caller")
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return model.NewQuoteError(id, model.ErrTimeout, "no response within %s", timeout)
	}
	return model.NewQuoteError(id, model.ErrUnknown, "%v", callCtx.Err())
}

func (a *Aggregator) orderOf(id model.ProviderID) int {
	if e, ok := a.reg.Get(id); ok {
		return e.Order()
	}
	return len(a.reg.Entries())
}

// SortQuotes orders quotes by ascending fee (a missing fee sorts last), then descending
// counter amount, then provider registration order.
func SortQuotes(quotes []model.Quote, orderOf func(model.ProviderID) int) {
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		switch {
		case a.Fee != nil && b.Fee == nil:
			return true
		case a.Fee == nil && b.Fee != nil:
			return false
		case a.Fee != nil && b.Fee != nil && !a.Fee.Equal(*b.Fee):
			return a.Fee.LessThan(*b.Fee)
		}
		if !a.CounterAmount.Equal(b.CounterAmount) {
			return a.CounterAmount.GreaterThan(b.CounterAmount)
		}
		return orderOf(a.Provider) < orderOf(b.Provider)
	})
}

func sortErrors(errs []model.QuoteError, orderOf func(model.ProviderID) int) {
	sort.SliceStable(errs, func(i, j int) bool {
		return orderOf(errs[i].Provider) < orderOf(errs[j].Provider)
	})
}

func outcomeLabel(k model.ErrorKind) string {
	switch k {
	case model.ErrIneligible:
		return "ineligible"
	case model.ErrTimeout:
		return "timeout"
	case model.ErrProviderRejected:
		return "provider_rejected"
	case model.ErrNetwork:
		return "network"
	default:
		return "unknown"
	}
}
