package recovery

import (
	"github.com/nikunjparasar/cmu-bus-tub/common"
	"github.com/nikunjparasar/cmu-bus-tub/storage/disk"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

/**
 * LogManager keeps an in-memory log buffer which is written into the disk log file
 * when the buffer is full or when a component forces a flush. The buffer pool
 * manager forces a flush before it writes back a dirty page while logging is enabled.
 */
type LogManager struct {
	offset         uint32
	log_buffer_lsn types.LSN
	/** The counter which records the next log sequence number. */
	next_lsn types.LSN
	/** The log records before and including the persistent lsn have been written to disk. */
	persistent_lsn types.LSN
	log_buffer     []byte
	flush_buffer   []byte
	latch          common.ReaderWriterLatch
	disk_manager   *disk.DiskManager
}

func NewLogManager(disk_manager *disk.DiskManager) *LogManager {
	ret := new(LogManager)
	ret.next_lsn = 0
	ret.persistent_lsn = common.InvalidLSN
	ret.log_buffer_lsn = common.InvalidLSN
	ret.disk_manager = disk_manager
	ret.log_buffer = make([]byte, common.LogBufferSize)
	ret.flush_buffer = make([]byte, common.LogBufferSize)
	ret.latch = common.NewRWLatch()
	ret.offset = 0
	return ret
}

func (log_manager *LogManager) GetNextLSN() types.LSN       { return log_manager.next_lsn }
func (log_manager *LogManager) GetPersistentLSN() types.LSN { return log_manager.persistent_lsn }

// Flush writes the buffered log data into the disk log file
func (log_manager *LogManager) Flush() {
	log_manager.latch.WLock()

	lsn := log_manager.log_buffer_lsn
	offset := log_manager.offset
	log_manager.offset = 0

	// swap address of two buffers
	tmp_p := log_manager.flush_buffer
	log_manager.flush_buffer = log_manager.log_buffer
	log_manager.log_buffer = tmp_p

	log_manager.latch.WUnlock()

	if offset > 0 {
		(*log_manager.disk_manager).WriteLog(log_manager.flush_buffer[:offset])
		log_manager.persistent_lsn = lsn
	}
}

/*
* set enable_logging = true
 */
func (log_manager *LogManager) RunFlushThread() { common.EnableLogging = true }

/*
* set enable_logging = false
 */
func (log_manager *LogManager) StopFlushThread() { common.EnableLogging = false }

// AppendLogRecord appends a serialized log record into the log buffer
// @return: lsn that is assigned to this record
func (log_manager *LogManager) AppendLogRecord(log_record []byte) types.LSN {
	if uint32(common.LogBufferSize)-log_manager.offset < uint32(len(log_record)) {
		log_manager.Flush()
	}

	log_manager.latch.WLock()
	defer log_manager.latch.WUnlock()

	lsn := log_manager.next_lsn
	log_manager.next_lsn += 1
	copy(log_manager.log_buffer[log_manager.offset:], log_record)
	log_manager.offset += uint32(len(log_record))
	log_manager.log_buffer_lsn = lsn
	return lsn
}
