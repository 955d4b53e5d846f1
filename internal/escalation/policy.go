// Package escalation implements the pure decision rules that convert
// accumulated infraction reports into automatic reprimands.
package escalation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/pkg/config"
)

// Decision is the outcome of a threshold check.
type Decision struct {
	Trigger  bool
	Severity int
	Reason   string
}

// Policy resolves per-category divisors and decides when a count triggers a
// reprimand. It performs no I/O.
type Policy struct {
	defaultDivisor   int
	eveningDivisor   int
	eveningKeywords  []string
	categoryDivisors map[string]int
}

// NewPolicy builds a policy from configuration, falling back to the
// historical rules (every 3rd report; every 2nd evening-service absence).
func NewPolicy(cfg config.EscalationConfig) Policy {
	p := Policy{
		defaultDivisor:   cfg.DefaultDivisor,
		eveningDivisor:   cfg.EveningDivisor,
		eveningKeywords:  cfg.EveningKeywords,
		categoryDivisors: cfg.CategoryDivisors,
	}
	if p.defaultDivisor <= 0 {
		p.defaultDivisor = 3
	}
	if p.eveningDivisor <= 0 {
		p.eveningDivisor = 2
	}
	if len(p.eveningKeywords) == 0 {
		p.eveningKeywords = []string{"vespertin", "evening"}
	}
	return p
}

// Divisor resolves the escalation threshold for a category. serviceName is
// the display name of the service for absence categories; it may be empty,
// in which case the default divisor applies. An explicit per-category
// override always wins over name matching.
func (p Policy) Divisor(category models.ReportCategory, serviceName string) int {
	if d, ok := p.categoryDivisors[string(category)]; ok && d > 0 {
		return d
	}
	if category == models.CategoryServiceAbsence && serviceName != "" {
		lower := strings.ToLower(serviceName)
		for _, kw := range p.eveningKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return p.eveningDivisor
			}
		}
	}
	return p.defaultDivisor
}

// Decide applies the threshold rule: a reprimand is generated on every
// positive multiple of the divisor, so the 3rd, 6th, 9th... report all
// re-trigger. Severity is always the minimum level for automatic escalation.
func (p Policy) Decide(category models.ReportCategory, serviceName string, count int, at time.Time) Decision {
	divisor := p.Divisor(category, serviceName)
	if count <= 0 || count%divisor != 0 {
		return Decision{}
	}
	return Decision{
		Trigger:  true,
		Severity: models.MinSeverity,
		Reason:   reason(category, count, divisor, at),
	}
}

func reason(category models.ReportCategory, count, divisor int, at time.Time) string {
	period := strings.ToUpper(at.Format("January 2006"))
	return fmt.Sprintf("Accumulation of %d %s reports in %s (threshold %d, automatic)",
		count, category.DisplayName(), period, divisor)
}
