package common

import "fmt"

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO                 = 2
	DEBUGGING                  = 4
	INFO                       = 8
	WARN                       = 16
	ERROR                      = 32
	FATAL                      = 64
)

var LogLevelSetting LogLevel = INFO

func ShPrintf(logLevel LogLevel, fmtStl string, a ...interface{}) {
	if logLevel&LogLevelSetting > 0 {
		fmt.Printf(fmtStl, a...)
	}
}
