package disk

import (
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

// DiskManager is responsible for interacting with disk
type DiskManager interface {
	ReadPage(types.PageID, []byte) error
	WritePage(types.PageID, []byte) error
	WriteLog(log_data []byte)
	ReadLog(log_data []byte, offset int32) bool
	AllocatePage() types.PageID
	DeallocatePage(types.PageID)
	GetNumWrites() uint64
	ShutDown()
	Size() int64
	GetLogFileSize() int64
}
