package config

import "github.com/sawpanic/techrun/internal/models"

// Default returns the built-in pipeline configuration. Every call returns
// freshly allocated maps so callers may overlay a file without aliasing.
func Default() PipelineConfig {
	return PipelineConfig{
		HypeWeights: map[string]float64{
			HypeMedia:      0.25,
			HypeSocial:     0.20,
			HypeVCBuzz:     0.30,
			HypeConference: 0.15,
			HypeSearch:     0.10,
		},
		BuildWeights: map[string]float64{
			BuildRevenue:    0.30,
			BuildLogos:      0.25,
			BuildPatents:    0.15,
			BuildTalent:     0.20,
			BuildMilestones: 0.10,
		},
		CompositeWeights:     CompositeWeights{Hype: 0.40, Build: 0.60},
		DivergenceThresholds: DivergenceThresholds{High: 65, Low: 45},
		MoatWeights: map[string]float64{
			MoatRegulatory: 0.30,
			MoatNetwork:    0.25,
			MoatCapital:    0.20,
			MoatData:       0.15,
			MoatSwitching:  0.10,
		},
		SecondOrderThresholds: SecondOrderThresholds{
			Dependency:      0.70,
			Correlation:     0.40,
			PrimaryMomentum: 70,
		},
		RiskLimits: RiskLimits{
			MaxPositionPct: 5,
			MaxSectorPct:   20,
			MaxCorrelation: 0.70,
		},

		ConvictionWeights: map[string]float64{
			ConvictionMomentum: 0.50,
			ConvictionMoat:     0.25,
			ConvictionCatalyst: 0.10,
			ConvictionGap:      0.15,
		},
		// Highest floor first
		PositionBuckets: []PositionBucket{
			{MinConviction: 0.80, MinPct: 4, MaxPct: 5},
			{MinConviction: 0.70, MinPct: 3, MaxPct: 5},
			{MinConviction: 0.00, MinPct: 2, MaxPct: 4},
		},
		Recommendation: RecommendationThresholds{
			StrongBuyMoat:    70,
			ShortBuildCutoff: 30,
		},
		NearTermCatalystDays: 30,
		Wave4MoatThreshold:   75,

		CatalystLeads: map[models.CatalystKind]CatalystLead{
			models.CatalystCFOHire:      {LeadMonths: 9, WindowMonths: 3, Confidence: 0.85, Prob6M: 0.45, Prob12M: 0.85},
			models.CatalystSeriesDPlus:  {LeadMonths: 18, WindowMonths: 6, Confidence: 0.68, Prob6M: 0.20, Prob12M: 0.60},
			models.CatalystARRThreshold: {LeadMonths: 0, WindowMonths: 12, Confidence: 0.75, Prob6M: 0.50, Prob12M: 0.75},
			models.CatalystPatentGrant:  {LeadMonths: 6, WindowMonths: 6, Confidence: 0.65, Prob6M: 0.40, Prob12M: 0.65},
			models.CatalystIPOFiling:    {LeadMonths: 0, WindowMonths: 3, Confidence: 0.70},
			models.CatalystMAExit:       {LeadMonths: 18, WindowMonths: 6, Confidence: 0.35, Prob6M: 0.10, Prob12M: 0.25},
		},
		ARRThreshold: 100_000_000,

		SectorBaselines: map[models.Sector]MoatBaseline{
			models.SectorAIInfra:       {Regulatory: 30, Network: 40, Capital: 75, Data: 45, Switching: 40},
			models.SectorDataInfra:     {Regulatory: 25, Network: 45, Capital: 30, Data: 40, Switching: 50},
			models.SectorSemiconductor: {Regulatory: 55, Network: 30, Capital: 95, Data: 35, Switching: 50},
			models.SectorCybersecurity: {Regulatory: 60, Network: 35, Capital: 25, Data: 35, Switching: 45},
			models.SectorQuantum:       {Regulatory: 80, Network: 30, Capital: 90, Data: 30, Switching: 35},
			models.SectorSixG:          {Regulatory: 85, Network: 35, Capital: 85, Data: 30, Switching: 45},
			models.SectorGreenEnergy:   {Regulatory: 75, Network: 25, Capital: 80, Data: 25, Switching: 40},
			models.SectorBiotechInfra:  {Regulatory: 70, Network: 35, Capital: 50, Data: 40, Switching: 45},
		},
		NeutralBaseline: MoatBaseline{Regulatory: 50, Network: 50, Capital: 50, Data: 50, Switching: 50},

		ProxyTable: map[string][]models.PublicProxy{
			string(models.SectorAIInfra):       {{Ticker: "SKYY", ExposureType: "Cloud Computing ETF", Correlation: 0.55}, {Ticker: "WCLD", ExposureType: "Cloud ETF", Correlation: 0.48}},
			string(models.SectorSemiconductor): {{Ticker: "SMH", ExposureType: "Semiconductor ETF", Correlation: 0.62}, {Ticker: "SOXX", ExposureType: "Semiconductor ETF", Correlation: 0.60}},
			string(models.SectorCybersecurity): {{Ticker: "HACK", ExposureType: "Cybersecurity ETF", Correlation: 0.58}, {Ticker: "CIBR", ExposureType: "Cybersecurity ETF", Correlation: 0.56}},
			string(models.SectorDataInfra):     {{Ticker: "SKYY", ExposureType: "Cloud Computing ETF", Correlation: 0.50}},
			string(models.SectorGreenEnergy):   {{Ticker: "ICLN", ExposureType: "Clean Energy ETF", Correlation: 0.52}, {Ticker: "TAN", ExposureType: "Solar ETF", Correlation: 0.45}},
			string(models.SectorSixG):          {{Ticker: "IYZ", ExposureType: "Telecom ETF", Correlation: 0.41}},
			string(models.SectorQuantum):       {{Ticker: "QTUM", ExposureType: "Quantum Computing ETF", Correlation: 0.47}},
			string(models.SectorBiotechInfra):  {{Ticker: "XBI", ExposureType: "Biotech ETF", Correlation: 0.44}, {Ticker: "IBB", ExposureType: "Biotech ETF", Correlation: 0.42}},
		},
		SectorBaskets: map[models.Sector]string{
			models.SectorAIInfra:       "40% NVDA, 30% AVGO, 20% ANET, 10% VRT",
			models.SectorSemiconductor: "30% ASML, 25% AMAT, 25% LRCX, 20% ENTG",
			models.SectorSixG:          "35% QRVO, 35% SWKS, 30% GLW",
			models.SectorCybersecurity: "25% PANW, 25% CRWD, 25% ZS, 25% FTNT",
			models.SectorGreenEnergy:   "40% FLNC, 30% ENPH, 30% MP",
		},
	}
}
