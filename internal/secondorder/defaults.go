package secondorder

import "github.com/sawpanic/techrun/internal/models"

type supplierGroup struct {
	sector    models.Sector
	category  string
	thesis    string
	suppliers []supplier
}

type supplier struct {
	ticker      string
	name        string
	dependency  float64
	correlation float64 // trailing price correlation to the primary sector
}

// Private suppliers carry no tradable ticker and are left out.
var defaultGroups = []supplierGroup{
	{models.SectorAIInfra, "Datacenter Cooling", "AI datacenter buildout requires 3x cooling capacity for GPU clusters", []supplier{
		{"VRT", "Vertiv", 0.87, 0.34},
		{"NVT", "nVent Electric", 0.72, 0.42},
	}},
	{models.SectorAIInfra, "Power Infrastructure", "AI compute demands robust UPS and power distribution systems", []supplier{
		{"ETN", "Eaton", 0.78, 0.51},
		{"SBGSY", "Schneider Electric", 0.75, 0.48},
	}},
	{models.SectorAIInfra, "Networking Equipment", "GPU cluster interconnects require high-bandwidth networking", []supplier{
		{"ANET", "Arista Networks", 0.91, 0.78},
		{"JNPR", "Juniper Networks", 0.68, 0.45},
	}},
	{models.SectorSixG, "RF Components", "6G and satellite mesh require advanced RF filtering and amplification", []supplier{
		{"QRVO", "Qorvo", 0.85, 0.38},
		{"SWKS", "Skyworks Solutions", 0.82, 0.41},
	}},
	{models.SectorSixG, "Fiber Optics", "Backhaul infrastructure for 6G requires massive fiber deployment", []supplier{
		{"GLW", "Corning", 0.79, 0.52},
		{"LITE", "Lumentum", 0.71, 0.47},
	}},
	{models.SectorQuantum, "Cryogenic Systems", "Quantum computers require dilution refrigerators at millikelvin temperatures", []supplier{
		{"OXIG.L", "Oxford Instruments", 0.73, 0.29},
	}},
	{models.SectorQuantum, "Control Electronics", "Quantum systems need precision control and measurement electronics", []supplier{
		{"KEYS", "Keysight", 0.68, 0.43},
	}},
	{models.SectorGreenEnergy, "Rare Earth Mining", "Wind turbines and EV motors require neodymium and dysprosium", []supplier{
		{"MP", "MP Materials", 0.81, 0.58},
		{"LYSDY", "Lynas Rare Earths", 0.76, 0.52},
	}},
	{models.SectorGreenEnergy, "Grid Storage Components", "Renewable intermittency drives massive battery storage deployment", []supplier{
		{"FLNC", "Fluence Energy", 0.88, 0.71},
		{"ENPH", "Enphase Energy", 0.79, 0.69},
	}},
	{models.SectorSemiconductor, "Semiconductor Equipment", "Chip fab buildout requires advanced lithography and deposition tools", []supplier{
		{"ASML", "ASML", 0.95, 0.82},
		{"AMAT", "Applied Materials", 0.91, 0.79},
		{"LRCX", "Lam Research", 0.89, 0.81},
	}},
	{models.SectorSemiconductor, "Materials & Chemicals", "Advanced nodes require specialized chemicals and materials", []supplier{
		{"ENTG", "Entegris", 0.84, 0.64},
		{"CCMP", "Cabot Microelectronics", 0.77, 0.59},
	}},
	{models.SectorCybersecurity, "Identity Infrastructure", "Zero-trust architectures built on identity as perimeter", []supplier{
		{"OKTA", "Okta", 0.72, 0.67},
		{"PING", "Ping Identity", 0.68, 0.62},
	}},
	{models.SectorDataInfra, "Cloud Storage", "Data infrastructure growth drives storage infrastructure demand", []supplier{
		{"PSTG", "Pure Storage", 0.76, 0.55},
		{"NTAP", "NetApp", 0.71, 0.58},
	}},
}

// DefaultGraph returns the built-in sector → supplier graph
func DefaultGraph() *Graph {
	var edges []Edge
	for _, g := range defaultGroups {
		for _, s := range g.suppliers {
			edges = append(edges, Edge{
				Sector:       g.sector,
				SupplierID:   s.ticker,
				SupplierName: s.name,
				Ticker:       s.ticker,
				Category:     g.category,
				Dependency:   s.dependency,
				Correlation:  s.correlation,
				Thesis:       g.thesis,
			})
		}
	}
	return NewGraph(edges...)
}
