package escalation

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/pkg/config"
)

func defaultPolicy() Policy {
	return NewPolicy(config.EscalationConfig{})
}

func TestDecideTriggersOnEveryMultiple(t *testing.T) {
	policy := defaultPolicy()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	expected := []bool{false, false, true, false, false, true}
	for count := 1; count <= 6; count++ {
		d := policy.Decide(models.CategoryDiscipline, "", count, now)
		assert.Equal(t, expected[count-1], d.Trigger, "count %d", count)
	}
}

func TestDecideNeverTriggersOnZeroOrNegative(t *testing.T) {
	policy := defaultPolicy()
	now := time.Now()

	assert.False(t, policy.Decide(models.CategoryDiscipline, "", 0, now).Trigger)
	assert.False(t, policy.Decide(models.CategoryDiscipline, "", -3, now).Trigger)
}

func TestDivisorResolutionByServiceName(t *testing.T) {
	policy := defaultPolicy()

	assert.Equal(t, 2, policy.Divisor(models.CategoryServiceAbsence, "Culto Vespertino"))
	assert.Equal(t, 3, policy.Divisor(models.CategoryServiceAbsence, "Culto Matutino"))
	assert.Equal(t, 3, policy.Divisor(models.CategoryServiceAbsence, "Sabbath School"))
	assert.Equal(t, 2, policy.Divisor(models.CategoryServiceAbsence, "Evening Vespers"))
}

func TestDivisorDefaultsWhenServiceNameAbsent(t *testing.T) {
	policy := defaultPolicy()
	assert.Equal(t, 3, policy.Divisor(models.CategoryServiceAbsence, ""))
}

func TestDivisorNameMatchIgnoredForOtherCategories(t *testing.T) {
	policy := defaultPolicy()
	assert.Equal(t, 3, policy.Divisor(models.CategoryDiscipline, "Culto Vespertino"))
}

func TestDivisorConfigOverrideWins(t *testing.T) {
	policy := NewPolicy(config.EscalationConfig{
		CategoryDivisors: map[string]int{"service_absence": 4},
	})
	assert.Equal(t, 4, policy.Divisor(models.CategoryServiceAbsence, "Culto Vespertino"))
}

func TestDecideEveningServiceUsesDivisorTwo(t *testing.T) {
	policy := defaultPolicy()
	now := time.Now()

	d := policy.Decide(models.CategoryServiceAbsence, "Culto Vespertino", 2, now)
	require.True(t, d.Trigger)
	assert.Equal(t, models.MinSeverity, d.Severity)

	assert.False(t, policy.Decide(models.CategoryServiceAbsence, "Culto Matutino", 2, now).Trigger)
}

func TestReasonEmbedsCategoryCountAndThreshold(t *testing.T) {
	policy := defaultPolicy()
	at := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	d := policy.Decide(models.CategoryDiscipline, "", 6, at)
	require.True(t, d.Trigger)
	assert.Contains(t, d.Reason, models.CategoryDiscipline.DisplayName())
	assert.Contains(t, d.Reason, strconv.Itoa(6))
	assert.Contains(t, d.Reason, fmt.Sprintf("threshold %d", 3))
	assert.Contains(t, d.Reason, strings.ToUpper("March 2025"))
}
