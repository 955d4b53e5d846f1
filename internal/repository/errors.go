package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

// pq error classes: 23503 = foreign_key_violation, 23505 = unique_violation.
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// mapWriteError classifies store failures: foreign-key violations become
// reference errors naming the failed reference, unique violations become
// conflicts, everything else is a data access error. The caller is
// expected to roll back.
func mapWriteError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqForeignKeyViolation:
			return appErrors.Clone(appErrors.ErrReference, referenceMessage(pqErr.Constraint))
		case pqUniqueViolation:
			return appErrors.Clone(appErrors.ErrConflict, "record already exists")
		}
	}
	return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, action)
}

func referenceMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "student"):
		return "referenced student does not exist"
	case strings.Contains(constraint, "reported_by"), strings.Contains(constraint, "registered_by"):
		return "referenced author does not exist"
	case strings.Contains(constraint, "issued_by"):
		return "referenced issuing authority does not exist"
	case strings.Contains(constraint, "severity"), strings.Contains(constraint, "level"):
		return "referenced reprimand level does not exist"
	case strings.Contains(constraint, "category"):
		return "referenced category does not exist"
	case strings.Contains(constraint, "service"):
		return "referenced service type does not exist"
	case strings.Contains(constraint, "room"):
		return "referenced room does not exist"
	default:
		return "referenced entity does not exist"
	}
}
