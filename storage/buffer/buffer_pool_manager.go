package buffer

import (
	"fmt"

	"github.com/ncw/directio"
	"github.com/sasha-s/go-deadlock"

	"github.com/nikunjparasar/cmu-bus-tub/common"
	"github.com/nikunjparasar/cmu-bus-tub/recovery"
	"github.com/nikunjparasar/cmu-bus-tub/storage/disk"
	"github.com/nikunjparasar/cmu-bus-tub/storage/page"
	"github.com/nikunjparasar/cmu-bus-tub/types"
)

// BufferPoolManager represents the buffer pool manager
type BufferPoolManager struct {
	diskManager disk.DiskManager
	pages       []*page.Page // index is FrameID
	replacer    *LRUKReplacer
	freeList    []FrameID
	pageTable   map[types.PageID]FrameID
	log_manager *recovery.LogManager
	mutex       *deadlock.Mutex
}

// FetchPage fetches the requested page from the buffer pool.
func (b *BufferPoolManager) FetchPage(pageID types.PageID) *page.Page {
	// if it is on buffer pool return it
	b.mutex.Lock()
	if frameID, ok := b.pageTable[pageID]; ok {
		pg := b.pages[frameID]
		pg.IncPinCount()
		if common.EnableDebug && common.ActiveLogKindSetting&common.PIN_COUNT_ASSERT > 0 {
			common.SH_Assert(pg.PinCount() >= 1,
				fmt.Sprintf("BPM::FetchPage pin count must be positive after pinning. pageId:%d PinCount:%d", pg.GetPageId(), pg.PinCount()))
		}
		b.replacer.RecordAccess(frameID)
		b.replacer.SetEvictable(frameID, false)
		b.mutex.Unlock()
		if common.EnableDebug {
			common.ShPrintf(common.DEBUG_INFO, "FetchPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
		}
		return pg
	}

	// get the id from free list or from replacer
	frameID, isFromFreeList := b.getFrameID()
	if frameID == nil {
		b.mutex.Unlock()
		return nil
	}

	if !isFromFreeList {
		// remove page from current frame
		currentPage := b.pages[*frameID]
		if currentPage != nil {
			if currentPage.PinCount() != 0 {
				common.RuntimeStack()
				panic(fmt.Sprintf("BPM::FetchPage pin count of page to be cached out must be zero!!!. pageId:%d PinCount:%d",
					currentPage.GetPageId(), currentPage.PinCount()))
			}
			if common.EnableDebug && common.ActiveLogKindSetting&common.CACHE_OUT_IN_INFO > 0 {
				fmt.Printf("BPM::FetchPage Cache out occurs! pageId:%d requested pageId:%d\n", currentPage.GetPageId(), pageID)
			}
			if currentPage.IsDirty() {
				if common.EnableLogging {
					b.log_manager.Flush()
				}
				currentPage.WLatch()
				data := currentPage.Data()
				b.diskManager.WritePage(currentPage.GetPageId(), data[:])
				currentPage.WUnlatch()
			}

			delete(b.pageTable, currentPage.GetPageId())
		}
	}

	data := directio.AlignedBlock(common.PageSize)
	err := b.diskManager.ReadPage(pageID, data)
	if err != nil {
		b.freeList = append(b.freeList, *frameID)
		b.mutex.Unlock()
		if err != types.DeallocatedPageErr {
			fmt.Println(err)
		}
		return nil
	}
	var pageData [common.PageSize]byte = *(*[common.PageSize]byte)(data)
	pg := page.New(pageID, false, &pageData)

	b.pageTable[pageID] = *frameID
	b.pages[*frameID] = pg
	b.replacer.RecordAccess(*frameID)
	b.replacer.SetEvictable(*frameID, false)
	b.mutex.Unlock()

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "FetchPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
	}
	return pg
}

// UnpinPage unpins the target page from the buffer pool.
func (b *BufferPoolManager) UnpinPage(pageID types.PageID, isDirty bool) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false
	}

	pg := b.pages[frameID]
	if pg.PinCount() <= 0 {
		return false
	}

	// the dirty bit is sticky within a residency. a clean unpin after a
	// dirty unpin must not lose the update
	if isDirty {
		pg.SetIsDirty(true)
	}

	pg.DecPinCount()
	if pg.PinCount() == 0 {
		b.replacer.SetEvictable(frameID, true)
	}

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "UnpinPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
	}
	return true
}

// FlushPage flushes the target page to disk.
func (b *BufferPoolManager) FlushPage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.flushPage(pageID)
}

// flushPage writes the resident page back to disk. Caller must hold the pool mutex.
func (b *BufferPoolManager) flushPage(pageID types.PageID) bool {
	if pageID == types.InvalidPageID {
		return false
	}

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false
	}

	pg := b.pages[frameID]
	pg.RLatch()
	data := pg.Data()
	b.diskManager.WritePage(pageID, data[:])
	pg.RUnlatch()

	return true
}

// NewPage allocates a new page in the buffer pool with the disk manager help
func (b *BufferPoolManager) NewPage() *page.Page {
	b.mutex.Lock()

	frameID, isFromFreeList := b.getFrameID()
	if frameID == nil {
		// the buffer is full, it can't find a frame
		b.mutex.Unlock()
		return nil
	}

	if !isFromFreeList {
		// remove page from current frame
		currentPage := b.pages[*frameID]
		if currentPage != nil {
			if currentPage.PinCount() != 0 {
				common.RuntimeStack()
				panic(fmt.Sprintf("BPM::NewPage pin count of page to be cached out must be zero!!!. pageId:%d PinCount:%d",
					currentPage.GetPageId(), currentPage.PinCount()))
			}
			if common.EnableDebug && common.ActiveLogKindSetting&common.CACHE_OUT_IN_INFO > 0 {
				fmt.Printf("BPM::NewPage Cache out occurs! pageId:%d\n", currentPage.GetPageId())
			}
			if currentPage.IsDirty() {
				if common.EnableLogging {
					b.log_manager.Flush()
				}
				currentPage.WLatch()
				data := currentPage.Data()
				b.diskManager.WritePage(currentPage.GetPageId(), data[:])
				currentPage.WUnlatch()
			}

			delete(b.pageTable, currentPage.GetPageId())
		}
	}

	// allocates new page
	pageID := b.diskManager.AllocatePage()
	pg := page.NewEmpty(pageID)

	b.pageTable[pageID] = *frameID
	b.pages[*frameID] = pg
	b.replacer.RecordAccess(*frameID)
	b.replacer.SetEvictable(*frameID, false)
	b.mutex.Unlock()

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "NewPage: PageId=%d\n", pg.GetPageId())
	}
	return pg
}

// DeletePage deletes a page from the buffer pool.
func (b *BufferPoolManager) DeletePage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		// nothing to do
		return true
	}

	pg := b.pages[frameID]
	if pg.PinCount() > 0 {
		return false
	}

	b.replacer.Remove(frameID)
	delete(b.pageTable, pageID)
	b.pages[frameID] = nil
	b.freeList = append(b.freeList, frameID)
	b.diskManager.DeallocatePage(pageID)

	return true
}

// FlushAllPages flushes all the pages in the buffer pool to disk.
func (b *BufferPoolManager) FlushAllPages() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for pageID := range b.pageTable {
		b.flushPage(pageID)
	}
}

// GetPoolSize returns the number of frames of this pool
func (b *BufferPoolManager) GetPoolSize() uint32 {
	return uint32(len(b.pages))
}

func (b *BufferPoolManager) getFrameID() (*FrameID, bool) {
	if len(b.freeList) > 0 {
		frameID, newFreeList := b.freeList[0], b.freeList[1:]
		b.freeList = newFreeList

		return &frameID, true
	}

	return b.replacer.Evict(), false
}

// NewBufferPoolManager returns an empty buffer pool manager. log_manager may be
// nil while logging stays disabled.
func NewBufferPoolManager(poolSize uint32, k uint32, diskManager disk.DiskManager, log_manager *recovery.LogManager) *BufferPoolManager {
	freeList := make([]FrameID, poolSize)
	pages := make([]*page.Page, poolSize)
	for i := uint32(0); i < poolSize; i++ {
		freeList[i] = FrameID(i)
		pages[i] = nil
	}

	replacer := NewLRUKReplacer(poolSize, k)
	return &BufferPoolManager{diskManager, pages, replacer, freeList, make(map[types.PageID]FrameID), log_manager, new(deadlock.Mutex)}
}
