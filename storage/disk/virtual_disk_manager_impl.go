package disk

import (
	"github.com/dsnet/golib/memfile"
	"github.com/sasha-s/go-deadlock"

	"github.com/nikunjparasar/cmu-bus-tub/common"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

// VirtualDiskManagerImpl is a in-memory implementation of DiskManager
// which is mainly used on testing
type VirtualDiskManagerImpl struct {
	db             *memfile.File
	fileName       string
	log            *memfile.File
	fileName_log   string
	nextPageID     types.PageID
	numWrites      uint64
	size           int64
	numFlushes     uint64
	dbFileMutex    *deadlock.Mutex
	logFileMutex   *deadlock.Mutex
	deallocedIDMap map[types.PageID]bool
}

func NewVirtualDiskManagerImpl(dbFilename string) DiskManager {
	file := memfile.New(make([]byte, 0))
	file_1 := memfile.New(make([]byte, 0))

	logfname := dbFilename + ".log"

	return &VirtualDiskManagerImpl{file, dbFilename, file_1, logfname, types.PageID(0), 0, int64(0), 0,
		new(deadlock.Mutex), new(deadlock.Mutex), make(map[types.PageID]bool)}
}

// ShutDown closes of the database file
func (d *VirtualDiskManagerImpl) ShutDown() {
	// do nothing
}

// WritePage writes a page to the database file
func (d *VirtualDiskManagerImpl) WritePage(pageId types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageId) * int64(common.PageSize)
	d.db.WriteAt(pageData, offset)

	if offset >= d.size {
		d.size = offset + int64(len(pageData))
	}

	d.numWrites += 1
	return nil
}

// ReadPage reads a page from the database file
func (d *VirtualDiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	if _, dealloced := d.deallocedIDMap[pageID]; dealloced {
		return types.DeallocatedPageErr
	}

	offset := int64(pageID) * int64(common.PageSize)
	readBytes, _ := d.db.ReadAt(pageData, offset)

	// a page which has never been written back reads as zeroes
	if readBytes < common.PageSize {
		for i := readBytes; i < common.PageSize; i++ {
			pageData[i] = 0
		}
	}

	return nil
}

// AllocatePage allocates a new page
func (d *VirtualDiskManagerImpl) AllocatePage() types.PageID {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage marks a page id as deallocated.
// Every later read of that id fails with DeallocatedPageErr, even after the id
// is written again. AllocatePage does not hand the id out again.
func (d *VirtualDiskManagerImpl) DeallocatePage(pageID types.PageID) {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	d.deallocedIDMap[pageID] = true
}

// GetNumWrites returns the number of disk writes
func (d *VirtualDiskManagerImpl) GetNumWrites() uint64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.numWrites
}

// Size returns the size of the file in disk
func (d *VirtualDiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.size
}

// WriteLog writes the contents of the log into the log file
func (d *VirtualDiskManagerImpl) WriteLog(log_data []byte) {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	d.numFlushes += 1
	d.log.WriteAt(log_data, int64(len(d.log.Bytes())))
}

// ReadLog reads the contents of the log into the given memory area
func (d *VirtualDiskManagerImpl) ReadLog(log_data []byte, offset int32) bool {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	if int64(offset) >= int64(len(d.log.Bytes())) {
		return false
	}

	readBytes, _ := d.log.ReadAt(log_data, int64(offset))
	if readBytes < len(log_data) {
		for i := readBytes; i < len(log_data); i++ {
			log_data[i] = 0
		}
	}

	return true
}

// GetLogFileSize returns the size of the log file
func (d *VirtualDiskManagerImpl) GetLogFileSize() int64 {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	return int64(len(d.log.Bytes()))
}
