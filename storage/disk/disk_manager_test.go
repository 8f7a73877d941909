package disk

import (
	"testing"

	"github.com/spaolacci/murmur3"

	"github.com/nikunjparasar/cmu-bus-tub/common"
	testingpkg "github.com/nikunjparasar/cmu-bus-tub/testing/testing_assert"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

func TestReadWritePage(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)

	copy(data, "A test string.")

	dm.ReadPage(0, buffer) // tolerate empty read
	dm.WritePage(0, data)
	dm.ReadPage(0, buffer)
	testingpkg.Equals(t, data, buffer)

	memset(buffer, 0)
	copy(data, "Another test string.")

	dm.WritePage(5, data)
	dm.ReadPage(5, buffer)
	testingpkg.Equals(t, data, buffer)

	// contents survive unchanged, checked over the whole page
	testingpkg.Equals(t, murmur3.Sum64(data), murmur3.Sum64(buffer))
}

func TestAllocatePage(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	// page ids are handed out monotonically
	testingpkg.Equals(t, types.PageID(0), dm.AllocatePage())
	testingpkg.Equals(t, types.PageID(1), dm.AllocatePage())
	testingpkg.Equals(t, types.PageID(2), dm.AllocatePage())
	dm.DeallocatePage(types.PageID(1))
	testingpkg.Equals(t, types.PageID(3), dm.AllocatePage())
}

func TestNumWritesAndSize(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	data := make([]byte, common.PageSize)
	testingpkg.Equals(t, uint64(0), dm.GetNumWrites())

	dm.WritePage(0, data)
	dm.WritePage(1, data)
	testingpkg.Equals(t, uint64(2), dm.GetNumWrites())
	testingpkg.Equals(t, int64(2*common.PageSize), dm.Size())
}

func memset(buffer []byte, value byte) {
	for i := range buffer {
		buffer[i] = value
	}
}
