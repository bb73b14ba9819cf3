package models

// CaseDetail is a case with every child record loaded, as used by detail views
type CaseDetail struct {
	Case      Case             `json:"case"`
	Accident  *AccidentDetail  `json:"accident,omitempty"`
	Claims    []InsuranceClaim `json:"claims"`
	IsOverdue bool             `json:"isOverdue"`
	DaysOpen  int              `json:"daysOpen"`
}

// AccidentDetail is an accident with its vehicles, witnesses and evidence
type AccidentDetail struct {
	Accident  Accident   `json:"accident"`
	Severity  Severity   `json:"severity"`
	Vehicles  []Vehicle  `json:"vehicles"`
	Witnesses []Witness  `json:"witnesses"`
	Evidence  []Evidence `json:"evidence"`
}

// CaseStatistics summarizes a set of cases
type CaseStatistics struct {
	Total           int                `json:"total"`
	ByStatus        map[CaseStatus]int `json:"byStatus"`
	ByPriority      map[Priority]int   `json:"byPriority"`
	OverdueCount    int                `json:"overdueCount"`
	AverageDaysOpen float64            `json:"averageDaysOpen"`
}

// AccidentStatistics summarizes a set of accidents
type AccidentStatistics struct {
	Total               int                   `json:"total"`
	BySeverity          map[Severity]int      `json:"bySeverity"`
	ByWeather           map[Weather]int       `json:"byWeather"`
	ByRoadCondition     map[RoadCondition]int `json:"byRoadCondition"`
	TotalInjuries       int                   `json:"totalInjuries"`
	TotalFatalities     int                   `json:"totalFatalities"`
	TotalDamage         float64               `json:"totalDamage"`
	AverageDamage       float64               `json:"averageDamage"`
	AccidentsWithDamage int                   `json:"accidentsWithDamage"`
}

// ClaimStatistics summarizes a set of insurance claims
type ClaimStatistics struct {
	Total            int                 `json:"total"`
	ByStatus         map[ClaimStatus]int `json:"byStatus"`
	ByType           map[ClaimType]int   `json:"byType"`
	PendingCount     int                 `json:"pendingCount"`
	ResolvedCount    int                 `json:"resolvedCount"`
	TotalClaimed     float64             `json:"totalClaimed"`
	TotalApproved    float64             `json:"totalApproved"`
	TotalPaid        float64             `json:"totalPaid"`
	TotalOutstanding float64             `json:"totalOutstanding"`
}
