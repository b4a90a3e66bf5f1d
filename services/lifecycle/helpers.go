package lifecycle

import (
	"errors"
	"sort"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
)

func isPartial(err error) bool { return errors.Is(err, models.ErrPartialWrite) }

func isNotFound(err error) bool { return errors.Is(err, ledgerRepo.ErrNotFound) }

func sorted(s []string) []string {
	sort.Strings(s)
	return s
}
