package models

import "time"

// ReportCategory identifies the kind of infraction a report records.
// Counting windows and escalation thresholds are scoped per category.
type ReportCategory string

const (
	CategoryCleanliness    ReportCategory = "cleanliness"
	CategoryDiscipline     ReportCategory = "discipline"
	CategoryDamages        ReportCategory = "damages"
	CategoryServiceAbsence ReportCategory = "service_absence"
)

// Valid reports whether the category is one of the enumerated values.
func (c ReportCategory) Valid() bool {
	switch c {
	case CategoryCleanliness, CategoryDiscipline, CategoryDamages, CategoryServiceAbsence:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable label embedded in generated
// reprimand reasons.
func (c ReportCategory) DisplayName() string {
	switch c {
	case CategoryCleanliness:
		return "Cleanliness"
	case CategoryDiscipline:
		return "Discipline"
	case CategoryDamages:
		return "Damages"
	case CategoryServiceAbsence:
		return "Service Absence"
	default:
		return "General"
	}
}

// ReportStatus tracks the approval lifecycle of a report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "Pending"
	ReportStatusApproved ReportStatus = "Approved"
	ReportStatusRejected ReportStatus = "Rejected"
)

// AuthorRole identifies who filed a report.
type AuthorRole string

const (
	RoleMonitor   AuthorRole = "Monitor"
	RolePreceptor AuthorRole = "Preceptor"
	RoleSystem    AuthorRole = "System"
)

// Report is an infraction record against a student. Immutable once created
// except for the Pending -> Approved|Rejected status transition and the
// signature capture fields.
type Report struct {
	ID         string         `db:"id" json:"id"`
	StudentID  string         `db:"student_id" json:"student_id"`
	ReportedBy string         `db:"reported_by" json:"reported_by"`
	AuthorRole AuthorRole     `db:"author_role" json:"author_role"`
	Category   ReportCategory `db:"category" json:"category"`
	Reason     string         `db:"reason" json:"reason"`
	Status     ReportStatus   `db:"status" json:"status"`
	ApprovedBy *string        `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	ReportedAt time.Time      `db:"reported_at" json:"reported_at"`
	Signature  *string        `db:"signature" json:"signature,omitempty"`
	SignedAt   *time.Time     `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// ReportDetail joins reporter and student names for list views.
type ReportDetail struct {
	Report
	StudentName  string `db:"student_name" json:"student_name"`
	ReporterName string `db:"reporter_name" json:"reporter_name"`
}

// ReportFilter narrows paginated report listings.
type ReportFilter struct {
	StudentID string
	Search    string
	Page      int
	PageSize  int
}
