package recovery

import (
	"testing"

	"github.com/nikunjparasar/cmu-bus-tub/common"
	"github.com/nikunjparasar/cmu-bus-tub/storage/disk"
	testingpkg "github.com/nikunjparasar/cmu-bus-tub/testing/testing_assert"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

func TestAppendAndFlush(t *testing.T) {
	dm := disk.NewVirtualDiskManagerImpl("recovery.db")
	defer dm.ShutDown()
	lm := NewLogManager(&dm)

	testingpkg.Equals(t, types.LSN(common.InvalidLSN), lm.GetPersistentLSN())

	// records are buffered until a flush is forced
	lsn0 := lm.AppendLogRecord([]byte("first record"))
	lsn1 := lm.AppendLogRecord([]byte("second record"))
	testingpkg.Equals(t, types.LSN(0), lsn0)
	testingpkg.Equals(t, types.LSN(1), lsn1)
	testingpkg.Equals(t, int64(0), dm.GetLogFileSize())

	lm.Flush()
	testingpkg.Equals(t, int64(len("first record")+len("second record")), dm.GetLogFileSize())
	testingpkg.Equals(t, lsn1, lm.GetPersistentLSN())

	// flushing an empty buffer leaves the log file untouched
	lm.Flush()
	testingpkg.Equals(t, int64(len("first record")+len("second record")), dm.GetLogFileSize())
}

func TestReadBackLog(t *testing.T) {
	dm := disk.NewVirtualDiskManagerImpl("recovery.db")
	defer dm.ShutDown()
	lm := NewLogManager(&dm)

	lm.AppendLogRecord([]byte("payload"))
	lm.Flush()

	buffer := make([]byte, len("payload"))
	testingpkg.Assert(t, dm.ReadLog(buffer, 0), "log data should be readable")
	testingpkg.Equals(t, []byte("payload"), buffer)
}
