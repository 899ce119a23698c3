// Core domain types for the deterministic financial modeling engine.

package engine

import "strconv"

// ==================== TIMELINE ====================

// Timeline is the monthly grid every reference and calculation is shaped
// against. Periods run from (StartYear, StartMonth) to (EndYear, EndMonth)
// inclusive.
type Timeline struct {
	Periods int      `json:"periods"`
	Year    []int    `json:"year"`
	Month   []int    `json:"month"`
	Label   []string `json:"label"`

	StartYear  int `json:"startYear"`
	StartMonth int `json:"startMonth"`
	EndYear    int `json:"endYear"`
	EndMonth   int `json:"endMonth"`
}

// TimelineConfig is the raw config block inputs carry.
type TimelineConfig struct {
	StartYear  int `json:"startYear"`
	StartMonth int `json:"startMonth"`
	EndYear    int `json:"endYear"`
	EndMonth   int `json:"endMonth"`
}

// ==================== KEY PERIODS ====================

// KeyPeriod is a named window on the timeline. Its flag series (F{id},
// F{id}.Start, F{id}.End) are materialized by the reference map builder.
type KeyPeriod struct {
	ID         int    `json:"id"`
	Name       string `json:"name,omitempty"`
	StartYear  int    `json:"startYear"`
	StartMonth int    `json:"startMonth"`
	EndYear    int    `json:"endYear"`
	EndMonth   int    `json:"endMonth"`
}

// ==================== INPUT GROUPS ====================

// EntryMode is how an input group's raw values are interpreted.
type EntryMode string

const (
	EntryModeConstant EntryMode = "constant"
	EntryModeValues   EntryMode = "values"
	EntryModeSeries   EntryMode = "series"
	EntryModeLookup   EntryMode = "lookup"
	EntryModeLookup2  EntryMode = "lookup2"
)

// Frequency governs how a scalar series value is spread across months.
type Frequency string

const (
	FreqMonthly   Frequency = "M"
	FreqQuarterly Frequency = "Q"
	FreqYearly    Frequency = "Y"
	FreqFiscalYr  Frequency = "FY"
)

// InputGroup is the container-level record: entry mode, timing, and
// (for lookup groups) sub-group structure.
type InputGroup struct {
	ID                int       `json:"id"`
	EntryMode         EntryMode `json:"entryMode"`
	GroupType         string    `json:"groupType,omitempty"`
	StartYear         int       `json:"startYear"`
	StartMonth        int       `json:"startMonth"`
	EndYear           int       `json:"endYear,omitempty"`
	EndMonth          int       `json:"endMonth,omitempty"`
	Periods           int       `json:"periods,omitempty"`
	Frequency         Frequency `json:"frequency,omitempty"`
	LinkedKeyPeriodID int       `json:"linkedKeyPeriodId,omitempty"`
	Subgroups         []string  `json:"subgroups,omitempty"`
	SelectedIndices   []int     `json:"selectedIndices,omitempty"`
	LookupStartYear   int       `json:"lookupStartYear,omitempty"`
	LookupStartMonth  int       `json:"lookupStartMonth,omitempty"`
}

// Input is one per-input record within a group. Either Value (scalar) or
// Values (sparse, index -> value) drives the underlying monthly array.
type Input struct {
	ID               int             `json:"id"`
	GroupID          int             `json:"groupId"`
	SubgroupID       string          `json:"subgroupId,omitempty"`
	Value            float64         `json:"value,omitempty"`
	Values           map[int]float64 `json:"values,omitempty"`
	Mode             EntryMode       `json:"mode,omitempty"`
	ValueFrequency   Frequency       `json:"valueFrequency,omitempty"`
	SeriesFrequency  Frequency       `json:"seriesFrequency,omitempty"`
	SeriesPaymentMon int             `json:"seriesPaymentMonth,omitempty"`
	SeriesStartDate  string          `json:"seriesStartDate,omitempty"`
	SeriesEndDate    string          `json:"seriesEndDate,omitempty"`
}

// ==================== INDEXATION ====================

// IndexCurve is a monotone indexation curve (I{idx}) anchored at a base
// period, compounding either annually or monthly.
type IndexCurve struct {
	ID              int     `json:"id"`
	BaseYear        int     `json:"baseYear"`
	BaseMonth       int     `json:"baseMonth"`
	AnnualRatePct   float64 `json:"annualRatePct"`
	MonthlyCompound bool    `json:"monthlyCompound"`
}

// ==================== CALCULATIONS ====================

// CalcType distinguishes how a calculation's quantity behaves over time;
// the engine itself evaluates all three identically (the distinction
// matters to callers/reporting, not to the evaluator).
type CalcType string

const (
	CalcFlow       CalcType = "flow"
	CalcStock      CalcType = "stock"
	CalcStockStart CalcType = "stock_start"
)

// Calculation is a named formula producing an R{id} vector.
type Calculation struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Formula string   `json:"formula"`
	Type    CalcType `json:"type"`
}

// RefName returns the calculation's external reference name, e.g. "R12".
func (c Calculation) RefName() string {
	return "R" + strconv.Itoa(c.ID)
}

// ==================== MODULES ====================

// ParamKind distinguishes a module parameter that is a literal number from
// one that is a reference string to be resolved against the context.
type ParamKind string

const (
	ParamNumber ParamKind = "number"
	ParamRef    ParamKind = "ref"
	ParamString ParamKind = "string"
)

// ParamValue is a numeric literal, a reference string to be resolved
// against the context, or (for template options like a depreciation
// method or a debt-service frequency) a literal string.
type ParamValue struct {
	Kind ParamKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Ref  string    `json:"ref,omitempty"`
	Str  string    `json:"str,omitempty"`
}

// Module is a parameterised higher-level template instance (M{idx}).
type Module struct {
	Index      int                   `json:"index"`
	TemplateID string                `json:"templateId"`
	Name       string                `json:"name"`
	Inputs     map[string]ParamValue `json:"inputs"`
	Enabled    bool                  `json:"enabled"`
	Converted  bool                  `json:"converted"`
}

// RefPrefix returns the module's external reference prefix, e.g. "M3".
func (m Module) RefPrefix() string {
	return "M" + strconv.Itoa(m.Index)
}

// ==================== CALCULATIONS BUNDLE ====================

// CalculationsBundle is the top-level `calculations` input record.
type CalculationsBundle struct {
	Calculations []Calculation     `json:"calculations"`
	Modules      []Module          `json:"modules"`
	MRefMap      map[string]string `json:"_mRefMap,omitempty"`
}

// ==================== MODEL INPUTS ====================

// ModelInputs is the top-level `inputs` record (§6.1).
type ModelInputs struct {
	Config             TimelineConfig `json:"config"`
	KeyPeriods         []KeyPeriod    `json:"keyPeriods"`
	InputGlass         []Input        `json:"inputGlass"`
	InputGlassGroups   []InputGroup   `json:"inputGlassGroups"`
	Indices            []IndexCurve   `json:"indices"`
}
