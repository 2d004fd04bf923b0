package service

import "time"

// DefaultHistoryLimit is used when a history query does not ask for a size.
const DefaultHistoryLimit = 100

// HistoryFilter narrows a device history query.
type HistoryFilter struct {
	From  time.Time // inclusive on RecordedAt; zero means no lower bound
	To    time.Time // inclusive on RecordedAt; zero means no upper bound
	Limit int       // 0 means DefaultHistoryLimit; capped at the history size
}
