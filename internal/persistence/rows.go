package persistence

import (
	"time"

	"github.com/sawpanic/techrun/internal/models"
)

// SignalRows flattens ranked signals of one run into history rows
func SignalRows(runID string, asOf time.Time, sigs []models.TradeSignal) []SignalRow {
	rows := make([]SignalRow, 0, len(sigs))
	for _, s := range sigs {
		row := SignalRow{
			RunID:          runID,
			AsOf:           asOf,
			CompanyID:      s.CompanyID,
			Rank:           s.Rank,
			Recommendation: string(s.Recommendation),
			Conviction:     s.Conviction,
			Momentum:       s.Momentum,
			Moat:           s.Moat,
			PositionMin:    s.Position.MinPct,
			PositionMax:    s.Position.MaxPct,
		}
		if proxy, ok := s.Route(models.RoutePublicProxy); ok {
			ticker := proxy.Ticker
			row.ProxyTicker = &ticker
		}
		rows = append(rows, row)
	}
	return rows
}
