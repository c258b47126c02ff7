package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	exclusionViolation   = pq.ErrorCode("23P01")
	serializationFailure = pq.ErrorCode("40001")
)

func hasCode(err error, codes ...pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	for _, c := range codes {
		if pqErr.Code == c {
			return true
		}
	}
	return false
}
