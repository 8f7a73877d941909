package disk

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/nikunjparasar/cmu-bus-tub/common"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

// DiskManagerImpl is the disk implementation of DiskManager
type DiskManagerImpl struct {
	db           *os.File
	fileName     string
	log          *os.File
	fileName_log string
	nextPageID   types.PageID
	numWrites    uint64
	size         int64
	flush_log    bool
	numFlushes   uint64
}

// NewDiskManagerImpl returns a DiskManager instance
func NewDiskManagerImpl(dbFilename string) DiskManager {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open db file")
		return nil
	}

	logfname := dbFilename + ".log"
	if period_idx := strings.LastIndex(dbFilename, "."); period_idx != -1 {
		logfname = dbFilename[:period_idx] + "." + "log"
	}
	file_1, err := os.OpenFile(logfname, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open log file")
		return nil
	}

	fileInfo, err := file.Stat()
	if err != nil {
		log.Fatalln("file info error")
		return nil
	}

	fileInfo_1, err := file_1.Stat()
	if err != nil {
		log.Fatalln("file info error (log file)")
		return nil
	}

	file_1.Seek(fileInfo_1.Size(), io.SeekStart)

	fileSize := fileInfo.Size()
	nPages := fileSize / common.PageSize

	nextPageID := types.PageID(0)
	if nPages > 0 {
		nextPageID = types.PageID(int32(nPages + 1))
	}

	return &DiskManagerImpl{file, dbFilename, file_1, logfname, nextPageID, 0, fileSize, false, 0}
}

// ShutDown closes of the database file
func (d *DiskManagerImpl) ShutDown() {
	d.db.Close()
	d.log.Close()
}

// WritePage writes a page to the database file
func (d *DiskManagerImpl) WritePage(pageId types.PageID, pageData []byte) error {
	offset := int64(pageId) * int64(common.PageSize)
	d.db.Seek(offset, io.SeekStart)
	bytesWritten, err := d.db.Write(pageData)
	if err != nil {
		return err
	}

	if bytesWritten != common.PageSize {
		return errors.New("bytes written not equals page size")
	}

	if offset >= d.size {
		d.size = offset + int64(bytesWritten)
	}

	d.numWrites += 1
	d.db.Sync()
	return nil
}

// ReadPage reads a page from the database file
func (d *DiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	offset := int64(pageID) * int64(common.PageSize)

	fileInfo, err := d.db.Stat()
	if err != nil {
		return errors.New("file info error")
	}

	if offset > fileInfo.Size() {
		return errors.New("I/O error past end of file")
	}

	d.db.Seek(offset, io.SeekStart)

	bytesRead, err := d.db.Read(pageData)
	if err != nil && err != io.EOF {
		return errors.New("I/O error while reading")
	}

	if bytesRead < common.PageSize {
		for i := bytesRead; i < common.PageSize; i++ {
			pageData[i] = 0
		}
	}
	return nil
}

// AllocatePage allocates a new page
// For now just keep an increasing counter
func (d *DiskManagerImpl) AllocatePage() types.PageID {
	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage deallocates page
// Need bitmap in header page for tracking pages
// This does not actually need to do anything for now.
func (d *DiskManagerImpl) DeallocatePage(pageID types.PageID) {
}

// GetNumWrites returns the number of disk writes
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites
}

// Size returns the size of the file in disk
func (d *DiskManagerImpl) Size() int64 {
	return d.size
}

// ATTENTION: this method can be call after calling of Shutdown method
func (d *DiskManagerImpl) RemoveDBFile() {
	os.Remove(d.fileName)
}

// ATTENTION: this method can be call after calling of Shutdown method
func (d *DiskManagerImpl) RemoveLogFile() {
	os.Remove(d.fileName_log)
}

// WriteLog writes the contents of the log into disk file.
// Only returns when sync is done, and only performs sequence write.
func (d *DiskManagerImpl) WriteLog(log_data []byte) {
	d.flush_log = true

	d.numFlushes += 1
	_, err := d.log.Write(log_data)
	if err != nil {
		fmt.Println("I/O error while writing log")
		return
	}
	// needs to flush to keep disk file in sync
	d.log.Sync()
	d.flush_log = false
}

// ReadLog reads the contents of the log into the given memory area.
// Reads sequentially, starting at the given byte offset of the log file.
// Attention: len(log_data) specifies read data length
// @return: false means already reach the end
func (d *DiskManagerImpl) ReadLog(log_data []byte, offset int32) bool {
	if int64(offset) >= d.GetLogFileSize() {
		return false
	}

	d.log.Seek(int64(offset), io.SeekStart)
	readBytes, err := d.log.Read(log_data)
	if err != nil && err != io.EOF {
		fmt.Println("I/O error at log data reading")
		return false
	}

	// if log file ends before reading len(log_data) bytes
	if readBytes < len(log_data) {
		for i := readBytes; i < len(log_data); i++ {
			log_data[i] = 0
		}
	}

	return true
}

// GetLogFileSize returns the size of the log file on disk
func (d *DiskManagerImpl) GetLogFileSize() int64 {
	fileInfo, err := d.log.Stat()
	if err != nil {
		return -1
	}

	return fileInfo.Size()
}
