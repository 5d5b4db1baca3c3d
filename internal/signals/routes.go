package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/sawpanic/techrun/internal/models"
)

// routes lists the exposure routes available for a company. Any of them may
// be missing; a signal without routes is still valid.
func (g *Generator) routes(c models.Company) []models.ExposureRoute {
	routes := make([]models.ExposureRoute, 0, 3)

	if proxy, ok := g.bestProxy(c); ok {
		ref := proxy.Ticker
		if proxy.ExposureType != "" {
			ref = fmt.Sprintf("%s (%s, correlation %.2f)", proxy.Ticker, proxy.ExposureType, proxy.Correlation)
		}
		routes = append(routes, models.ExposureRoute{
			Kind:        models.RoutePublicProxy,
			Ticker:      proxy.Ticker,
			Correlation: proxy.Correlation,
			Reference:   ref,
		})
	}

	if c.LastValuation > 0 && len(c.SecondaryVenues) > 0 {
		routes = append(routes, models.ExposureRoute{
			Kind: models.RouteSecondary,
			Reference: fmt.Sprintf("Secondary market access (%s), estimated valuation $%.0fM",
				strings.Join(c.SecondaryVenues, "/"), c.LastValuation/1_000_000),
		})
	}

	if basket, ok := g.cfg.SectorBaskets[c.Sector]; ok && basket != "" {
		routes = append(routes, models.ExposureRoute{
			Kind:      models.RouteSynthetic,
			Reference: "Custom basket: " + basket,
		})
	}
	return routes
}

// bestProxy picks the highest |correlation| candidate from the company's own
// proxies and the reference table entry for its id, falling back to the
// sector entry. Ties go to the lexically smaller ticker.
func (g *Generator) bestProxy(c models.Company) (models.PublicProxy, bool) {
	candidates := append([]models.PublicProxy(nil), c.PublicProxies...)
	candidates = append(candidates, g.cfg.ProxyTable[c.ID]...)
	if len(candidates) == 0 {
		candidates = g.cfg.ProxyTable[string(c.Sector)]
	}

	var best models.PublicProxy
	found := false
	for _, p := range candidates {
		if p.Ticker == "" {
			continue
		}
		corr := math.Abs(models.Clamp(p.Correlation, -1, 1))
		bestCorr := math.Abs(best.Correlation)
		if !found || corr > bestCorr || (corr == bestCorr && p.Ticker < best.Ticker) {
			best = p
			best.Correlation = models.Clamp(p.Correlation, -1, 1)
			found = true
		}
	}
	return best, found
}
