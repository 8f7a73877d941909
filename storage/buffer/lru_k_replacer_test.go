package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	testingpkg "github.com/nikunjparasar/cmu-bus-tub/testing/testing_assert"
)

func TestLRUKReplacer(t *testing.T) {
	replacer := NewLRUKReplacer(7, 2)

	// Scenario: record an access for six frames and mark the first five evictable.
	replacer.RecordAccess(1)
	replacer.RecordAccess(2)
	replacer.RecordAccess(3)
	replacer.RecordAccess(4)
	replacer.RecordAccess(5)
	replacer.RecordAccess(6)
	replacer.SetEvictable(1, true)
	replacer.SetEvictable(2, true)
	replacer.SetEvictable(3, true)
	replacer.SetEvictable(4, true)
	replacer.SetEvictable(5, true)
	replacer.SetEvictable(6, false)
	testingpkg.Equals(t, uint32(5), replacer.Size())

	// Scenario: access frame 1 again. It now has two accesses and leaves the
	// preliminary set. The backward k-distance of every other frame stays infinite,
	// so frame 1 must outlive them all.
	replacer.RecordAccess(1)

	// Scenario: evict three frames. Expect the preliminary frames in first-access
	// order: 2, 3, 4.
	value := replacer.Evict()
	testingpkg.Equals(t, FrameID(2), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(3), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(4), *value)
	testingpkg.Equals(t, uint32(2), replacer.Size())

	// Scenario: make frame 6 evictable. Preliminary frames 5 and 6 go before the
	// mature frame 1.
	replacer.SetEvictable(6, true)
	testingpkg.Equals(t, uint32(3), replacer.Size())
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(5), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(6), *value)

	// Scenario: only the mature frame 1 remains.
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(1), *value)
	testingpkg.Equals(t, uint32(0), replacer.Size())

	// Scenario: the replacer is empty. Eviction yields nothing.
	testingpkg.Equals(t, (*FrameID)(nil), replacer.Evict())
}

func TestLRUKReplacerPrefersPreliminaryVictims(t *testing.T) {
	replacer := NewLRUKReplacer(3, 2)

	// Scenario: frame 0 is accessed twice, frames 1 and 2 once each.
	replacer.RecordAccess(0)
	replacer.RecordAccess(1)
	replacer.RecordAccess(2)
	replacer.RecordAccess(0)
	replacer.SetEvictable(0, true)
	replacer.SetEvictable(1, true)
	replacer.SetEvictable(2, true)

	// Scenario: frame 0 is the hottest frame, so the older of the two
	// preliminary frames goes first.
	value := replacer.Evict()
	testingpkg.Equals(t, FrameID(1), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(2), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(0), *value)
}

func TestLRUKReplacerMatureOrdering(t *testing.T) {
	replacer := NewLRUKReplacer(2, 2)

	// Scenario: both frames reach two accesses. Frame 0's second-most-recent
	// access is older than frame 1's, so frame 0 goes first.
	replacer.RecordAccess(0)
	replacer.RecordAccess(1)
	replacer.RecordAccess(0)
	replacer.RecordAccess(1)
	replacer.SetEvictable(0, true)
	replacer.SetEvictable(1, true)

	value := replacer.Evict()
	testingpkg.Equals(t, FrameID(0), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(1), *value)
}

func TestLRUKReplacerHistoryIsBounded(t *testing.T) {
	replacer := NewLRUKReplacer(2, 2)

	// Scenario: frames 0 and 1 both reach two accesses, then frame 0 is
	// accessed three more times. Only frame 0's last two timestamps are kept,
	// so its k-th most recent access is now newer than frame 1's and frame 1
	// goes first even though frame 0's first access is older.
	replacer.RecordAccess(0)
	replacer.RecordAccess(0)
	replacer.RecordAccess(1)
	replacer.RecordAccess(1)
	for i := 0; i < 3; i++ {
		replacer.RecordAccess(0)
	}
	replacer.SetEvictable(0, true)
	replacer.SetEvictable(1, true)

	value := replacer.Evict()
	testingpkg.Equals(t, FrameID(1), *value)
	value = replacer.Evict()
	testingpkg.Equals(t, FrameID(0), *value)
}

func TestLRUKReplacerEvictableGatesEviction(t *testing.T) {
	replacer := NewLRUKReplacer(2, 1)

	// Scenario: two tracked frames, neither evictable yet.
	replacer.RecordAccess(0)
	replacer.RecordAccess(1)
	testingpkg.Equals(t, uint32(0), replacer.Size())
	testingpkg.Equals(t, (*FrameID)(nil), replacer.Evict())

	// Scenario: only frame 0 is evictable.
	replacer.SetEvictable(0, true)
	testingpkg.Equals(t, uint32(1), replacer.Size())
	value := replacer.Evict()
	testingpkg.Equals(t, FrameID(0), *value)

	// Scenario: frame 1 becomes evictable, then is removed externally.
	// Nothing is left to evict.
	replacer.SetEvictable(1, true)
	replacer.Remove(1)
	testingpkg.Equals(t, uint32(0), replacer.Size())
	testingpkg.Equals(t, (*FrameID)(nil), replacer.Evict())
}

func TestLRUKReplacerIgnoresOutOfRangeFrames(t *testing.T) {
	replacer := NewLRUKReplacer(3, 2)

	// Scenario: accesses outside [0, poolSize) leave no trace.
	replacer.RecordAccess(3)
	replacer.RecordAccess(-1)
	replacer.SetEvictable(3, true)
	testingpkg.Equals(t, uint32(0), replacer.Size())
	testingpkg.Equals(t, (*FrameID)(nil), replacer.Evict())
}

func TestLRUKReplacerConcurrentAccess(t *testing.T) {
	poolSize := uint32(16)
	replacer := NewLRUKReplacer(poolSize, 3)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				frameID := FrameID((seed + i) % int(poolSize))
				replacer.RecordAccess(frameID)
				replacer.SetEvictable(frameID, i%2 == 0)
			}
		}(g)
	}
	wg.Wait()

	require.LessOrEqual(t, replacer.Size(), poolSize)

	// every tracked frame can be drained
	replacer.Evict()
	for frameID := FrameID(0); uint32(frameID) < poolSize; frameID++ {
		replacer.SetEvictable(frameID, true)
	}
	for replacer.Size() > 0 {
		require.NotNil(t, replacer.Evict())
	}
	require.Nil(t, replacer.Evict())
}
