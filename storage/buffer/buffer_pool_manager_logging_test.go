package buffer

import (
	"testing"

	"github.com/nikunjparasar/cmu-bus-tub/recovery"
	"github.com/nikunjparasar/cmu-bus-tub/storage/disk"
	testingpkg "github.com/nikunjparasar/cmu-bus-tub/testing/testing_assert"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

func TestLogIsFlushedBeforeDirtyWriteBack(t *testing.T) {
	dm := disk.NewVirtualDiskManagerImpl("test.db")
	defer dm.ShutDown()
	lm := recovery.NewLogManager(&dm)
	bpm := NewBufferPoolManager(1, 2, dm, lm)

	lm.RunFlushThread()
	defer lm.StopFlushThread()

	page0 := bpm.NewPage()
	page0.Copy(0, []byte("logged update"))
	record := []byte("update page 0")
	lsn := lm.AppendLogRecord(record)
	testingpkg.Assert(t, bpm.UnpinPage(types.PageID(0), true), "UnpinPage should succeed")
	testingpkg.Equals(t, int64(0), dm.GetLogFileSize())

	// Scenario: evicting the dirty page forces the buffered log out first.
	bpm.NewPage()
	testingpkg.Equals(t, int64(len(record)), dm.GetLogFileSize())
	testingpkg.Equals(t, lsn, lm.GetPersistentLSN())
}
