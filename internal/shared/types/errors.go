package types

import "errors"

var (
	ErrInvalidDateRange = errors.New("invalid date range: 'from' is after 'to'")
	ErrSyncInFlight     = errors.New("a sync is already in flight")
)
