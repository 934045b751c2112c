package models

import "time"

// Material is the filament material of a spool.
type Material string

const (
	MaterialPLA         Material = "PLA"
	MaterialABS         Material = "ABS"
	MaterialPETG        Material = "PETG"
	MaterialTPU         Material = "TPU"
	MaterialNylon       Material = "Nylon"
	MaterialASA         Material = "ASA"
	MaterialPC          Material = "PC"
	MaterialPVA         Material = "PVA"
	MaterialHIPS        Material = "HIPS"
	MaterialWood        Material = "Wood"
	MaterialCarbonFiber Material = "Carbon Fiber"
	MaterialOther       Material = "Other"
)

// Materials lists every supported material in display order.
var Materials = []Material{
	MaterialPLA, MaterialABS, MaterialPETG, MaterialTPU, MaterialNylon, MaterialASA,
	MaterialPC, MaterialPVA, MaterialHIPS, MaterialWood, MaterialCarbonFiber, MaterialOther,
}

var densities = map[Material]float64{
	MaterialPLA:         1.24,
	MaterialABS:         1.04,
	MaterialPETG:        1.27,
	MaterialTPU:         1.21,
	MaterialNylon:       1.14,
	MaterialASA:         1.07,
	MaterialPC:          1.20,
	MaterialPVA:         1.23,
	MaterialHIPS:        1.04,
	MaterialWood:        1.15,
	MaterialCarbonFiber: 1.30,
	MaterialOther:       1.20,
}

// Valid reports whether m is a known material.
func (m Material) Valid() bool {
	_, ok := densities[m]
	return ok
}

// DefaultDensity returns the typical density in g/cm3 for the material.
func (m Material) DefaultDensity() float64 {
	if d, ok := densities[m]; ok {
		return d
	}
	return densities[MaterialOther]
}

// Currency is an ISO-like currency code.
type Currency string

const DefaultCurrency Currency = "USD"

// Currencies lists the accepted currency codes.
var Currencies = []Currency{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CNY", "INR", "BRL", "Other"}

func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// SpoolStatus is the inventory state of a spool.
type SpoolStatus string

const (
	SpoolActive   SpoolStatus = "active"
	SpoolLow      SpoolStatus = "low"
	SpoolEmpty    SpoolStatus = "empty"
	SpoolArchived SpoolStatus = "archived"
)

func (s SpoolStatus) Valid() bool {
	switch s {
	case SpoolActive, SpoolLow, SpoolEmpty, SpoolArchived:
		return true
	}
	return false
}

// Usable reports whether prints may still draw filament from a spool in this state.
func (s SpoolStatus) Usable() bool {
	return s == SpoolActive || s == SpoolLow
}

// PrintStatus is the lifecycle state of a print job.
type PrintStatus string

const (
	PrintCompleted PrintStatus = "completed"
	PrintPrinting  PrintStatus = "printing"
	PrintPlanned   PrintStatus = "planned"
	PrintFailed    PrintStatus = "failed"
	PrintCancelled PrintStatus = "cancelled"
)

func (s PrintStatus) Valid() bool {
	switch s {
	case PrintCompleted, PrintPrinting, PrintPlanned, PrintFailed, PrintCancelled:
		return true
	}
	return false
}

// PrinterStatus is whether a printer is in service.
type PrinterStatus string

const (
	PrinterActive   PrinterStatus = "active"
	PrinterInactive PrinterStatus = "inactive"
)

func (s PrinterStatus) Valid() bool {
	return s == PrinterActive || s == PrinterInactive
}

// Supported filament diameters in millimetres.
const (
	Diameter175 = 1.75
	Diameter285 = 2.85
)

// FilamentSpool is a physical roll of filament tracked as inventory.
type FilamentSpool struct {
	ID               string      `json:"id"`
	Owner            string      `json:"owner"`
	Name             string      `json:"name"`
	Brand            string      `json:"brand"`
	Material         Material    `json:"material"`
	Color            string      `json:"color"`
	ColorHex         string      `json:"color_hex"`
	TotalWeightG     float64     `json:"total_weight_g"`
	RemainingWeightG float64     `json:"remaining_weight_g"`
	CostPerSpool     float64     `json:"cost_per_spool"`
	Currency         Currency    `json:"currency"`
	DiameterMM       float64     `json:"diameter_mm"`
	DensityGCm3      float64     `json:"density_g_cm3"`
	PrintTempMin     int         `json:"print_temp_min"`
	PrintTempMax     int         `json:"print_temp_max"`
	BedTempMin       int         `json:"bed_temp_min"`
	BedTempMax       int         `json:"bed_temp_max"`
	Status           SpoolStatus `json:"status"`
	Notes            string      `json:"notes"`
	PurchaseDate     string      `json:"purchase_date"`
	PurchaseURL      string      `json:"purchase_url"`
	CreatedAt        time.Time   `json:"created_date"`
	UpdatedAt        time.Time   `json:"updated_date"`
}

// PrintProject is one logged print job. SpoolName, Material and Currency are
// captured from the spool when the print is created and never refreshed.
type PrintProject struct {
	ID               string      `json:"id"`
	Owner            string      `json:"owner"`
	Name             string      `json:"name"`
	SpoolID          string      `json:"spool_id,omitempty"`
	PrinterID        string      `json:"printer_id,omitempty"`
	SpoolName        string      `json:"spool_name"`
	Material         Material    `json:"material"`
	Currency         Currency    `json:"currency"`
	ModelFileURL     string      `json:"model_file_url,omitempty"`
	FilamentUsedG    float64     `json:"filament_used_g"`
	FilamentCost     float64     `json:"filament_cost"`
	PrintTimeMinutes float64     `json:"print_time_minutes"`
	LayerHeightMM    float64     `json:"layer_height_mm"`
	InfillPercent    float64     `json:"infill_percent"`
	PrintSpeedMMS    float64     `json:"print_speed_mm_s"`
	Supports         bool        `json:"supports"`
	NozzleTemp       int         `json:"nozzle_temp"`
	BedTemp          int         `json:"bed_temp"`
	ElectricityCost  float64     `json:"electricity_cost"`
	LaborCost        float64     `json:"labor_cost"`
	MachineWearCost  float64     `json:"machine_wear_cost"`
	TotalCost        float64     `json:"total_cost"`
	Status           PrintStatus `json:"status"`
	Notes            string      `json:"notes"`
	CreatedAt        time.Time   `json:"created_date"`
	UpdatedAt        time.Time   `json:"updated_date"`
}

// Printer is a 3D printer whose wattage drives electricity cost.
type Printer struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	Name      string        `json:"name"`
	Wattage   float64       `json:"wattage"`
	Status    PrinterStatus `json:"status"`
	Notes     string        `json:"notes"`
	CreatedAt time.Time     `json:"created_date"`
	UpdatedAt time.Time     `json:"updated_date"`
}

// CostSettings holds the per-owner overhead rates used when deriving print costs.
type CostSettings struct {
	Owner                  string    `json:"owner"`
	ElectricityRatePerKWh  float64   `json:"electricity_rate_per_kwh"`
	LaborRatePerHour       float64   `json:"labor_rate_per_hour"`
	MachineWearRatePerHour float64   `json:"machine_wear_rate_per_hour"`
	Currency               Currency  `json:"currency"`
	UpdatedAt              time.Time `json:"updated_date"`
}

// Default overhead parameters.
const (
	DefaultWattage         = 200.0
	DefaultElectricityRate = 0.12
)

// DefaultCostSettings returns the settings used for an owner that has none stored.
func DefaultCostSettings(owner string) CostSettings {
	return CostSettings{
		Owner:                 owner,
		ElectricityRatePerKWh: DefaultElectricityRate,
		Currency:              DefaultCurrency,
	}
}
