package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// BudgetForecast loads the spend forecast behind the premium gate.
type BudgetForecast struct {
	API  API
	Gate *FeatureGate
}

// Load fetches the forecast if the user is subscribed. Unsubscribed users get
// PlanRequired, a nil forecast and the plan dialog.
func (b *BudgetForecast) Load(ctx context.Context) (GateResult, domain.Forecast, error) {
	var forecast domain.Forecast

	res, err := b.Gate.CheckEntitlement(ctx, func(ctx context.Context) error {
		rows, err := b.API.GetForecast(ctx)
		if err != nil {
			slogx.FromContext(ctx).Warn("forecast fetch failed", slog.Any("error", err))
			return failure(domain.ErrForecastUnavailable, err, "Could not load the budget forecast")
		}
		forecast = mapForecast(rows)
		return nil
	})
	if err != nil {
		return res, nil, err
	}
	return res, forecast, nil
}
