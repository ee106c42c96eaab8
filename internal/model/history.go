package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportKind tells plain insights and what-if simulations apart.
type ReportKind string

const (
	// ReportKindInsight is a report computed for a user question.
	ReportKindInsight ReportKind = "insight"
	// ReportKindWhatIf is a report computed for a simulated snapshot.
	ReportKindWhatIf ReportKind = "whatif"
)

// IsValid reports whether k is a known report kind.
func (k ReportKind) IsValid() bool {
	return k == ReportKindInsight || k == ReportKindWhatIf
}

// StoredReport is a computed report kept in the history.
type StoredReport struct {
	CreatedAt   time.Time       `json:"createdAt"`
	ID          string          `json:"id"`
	Kind        ReportKind      `json:"kind"`
	Question    string          `json:"question"`
	Provider    ProviderName    `json:"provider"`
	NetBalance  decimal.Decimal `json:"netBalance"`
	Snapshot    Snapshot        `json:"snapshot"`
	Report      InsightReport   `json:"report"`
	HealthScore int             `json:"healthScore"`
}

// NewStoredReport prepares a history entry for a computed report.
func NewStoredReport(kind ReportKind, question string, snapshot Snapshot, report InsightReport) StoredReport {
	return StoredReport{
		Kind:        kind,
		Question:    question,
		Provider:    report.Source,
		NetBalance:  report.Projections.Monthly,
		Snapshot:    snapshot,
		Report:      report,
		HealthScore: report.HealthScore,
	}
}
