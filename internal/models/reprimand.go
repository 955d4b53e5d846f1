package models

import "time"

// SystemIssuerID is the reserved staff identifier used as the issuing
// authority of automatically generated reprimands. The row must exist in the
// staff table; EnsureSystemIssuer asserts it at startup.
const SystemIssuerID = "SYSTEM"

// MinSeverity is the least severe reprimand level, the default for all
// automatic escalations.
const MinSeverity = 1

// Reprimand is a formal disciplinary consequence, created either by a
// preceptor or by the escalation engine inside the triggering transaction.
type Reprimand struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	IssuedBy        string     `db:"issued_by" json:"issued_by"`
	Severity        int        `db:"severity" json:"severity"`
	Reason          string     `db:"reason" json:"reason"`
	IssuedAt        time.Time  `db:"issued_at" json:"issued_at"`
	TriggerReportID *string    `db:"trigger_report_id" json:"trigger_report_id,omitempty"`
	Signature       *string    `db:"signature" json:"signature,omitempty"`
	SignedAt        *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// ReprimandDetail joins catalog names for list views.
type ReprimandDetail struct {
	Reprimand
	StudentName string `db:"student_name" json:"student_name"`
	IssuerName  string `db:"issuer_name" json:"issuer_name"`
	LevelName   string `db:"level_name" json:"level_name"`
}

// ReprimandLevel is a catalog row mapping severity ordinals to labels.
type ReprimandLevel struct {
	Severity int    `db:"severity" json:"severity"`
	Name     string `db:"name" json:"name"`
}
