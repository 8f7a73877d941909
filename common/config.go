package common

import (
	"time"
)

var EnableLogging bool = false
var LogTimeout time.Duration
var EnableDebug bool = false

// ActiveLogKindSetting selects which debug log kinds are printed when
// EnableDebug is on.
var ActiveLogKindSetting uint32 = 0

const (
	CACHE_OUT_IN_INFO uint32 = 1 << iota
	PIN_COUNT_ASSERT
)

const (
	// invalid page id
	InvalidPageID = -1
	// invalid log sequence number
	InvalidLSN = -1
	// the header page id
	HeaderPageID = 0
	// size of a data page in byte
	PageSize = 4096
	// number of pages, minus one, that a log buffer spans
	LogBufferPoolSize = 32
	// size of a log buffer in byte
	LogBufferSize = ((LogBufferPoolSize + 1) * PageSize)
)
