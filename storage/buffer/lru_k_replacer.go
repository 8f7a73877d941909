package buffer

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang-collections/collections/queue"
	pair "github.com/notEpsilon/go-pair"
	"github.com/sasha-s/go-deadlock"
)

// FrameID is the type for frame id
type FrameID int32

// LRUKReplacer tracks per-frame access history and picks the evictable frame
// whose backward k-distance is largest. Frames with fewer than k recorded
// accesses have infinite k-distance and are victimized first, oldest
// first-access wins. Among frames with k or more accesses the one whose
// k-th most recent access is oldest wins.
type LRUKReplacer struct {
	poolSize uint32
	k        uint32
	// logical clock. stepped on every operation, uniqueness of timestamps
	// is what matters
	clock uint64
	// frames with fewer than k recorded accesses. history is ordered, the
	// oldest timestamp at the front
	preliminaryQueue map[FrameID]*queue.Queue
	// frames with k or more recorded accesses. history keeps exactly the
	// last k timestamps
	cacheQueue map[FrameID]*queue.Queue
	evictable  mapset.Set[FrameID]
	latch      deadlock.Mutex
}

// NewLRUKReplacer instantiates a new LRU-K replacer for poolSize frames
func NewLRUKReplacer(poolSize uint32, k uint32) *LRUKReplacer {
	return &LRUKReplacer{
		poolSize:         poolSize,
		k:                k,
		preliminaryQueue: make(map[FrameID]*queue.Queue),
		cacheQueue:       make(map[FrameID]*queue.Queue),
		evictable:        mapset.NewSet[FrameID](),
	}
}

// RecordAccess records that the frame was accessed at the current timestamp.
// Frame ids outside [0, poolSize) are ignored.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) {
	r.latch.Lock()
	defer r.latch.Unlock()

	if frameID < 0 || uint32(frameID) >= r.poolSize {
		return
	}

	r.clock++

	if history, ok := r.cacheQueue[frameID]; ok {
		history.Dequeue()
		history.Enqueue(r.clock)
		return
	}

	history, ok := r.preliminaryQueue[frameID]
	if !ok {
		history = queue.New()
		r.preliminaryQueue[frameID] = history
	}
	history.Enqueue(r.clock)
	// a frame accessed k times graduates to the cache queue
	if uint32(history.Len()) >= r.k {
		r.cacheQueue[frameID] = history
		delete(r.preliminaryQueue, frameID)
	}
}

// SetEvictable sets whether the frame may be victimized. Untracked frames
// are ignored.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, setEvictable bool) {
	r.latch.Lock()
	defer r.latch.Unlock()

	r.clock++

	if !r.isTracked(frameID) {
		return
	}
	if setEvictable {
		r.evictable.Add(frameID)
	} else {
		r.evictable.Remove(frameID)
	}
}

// Remove drops all state kept for the frame. Callers must guarantee the
// corresponding page is unpinned.
func (r *LRUKReplacer) Remove(frameID FrameID) {
	r.latch.Lock()
	defer r.latch.Unlock()

	r.clock++

	delete(r.preliminaryQueue, frameID)
	delete(r.cacheQueue, frameID)
	r.evictable.Remove(frameID)
}

// Evict removes the victim frame as defined by the replacement policy
func (r *LRUKReplacer) Evict() *FrameID {
	r.latch.Lock()
	defer r.latch.Unlock()

	r.clock++

	// every recorded timestamp is strictly smaller than the clock value here
	if victim := r.pickVictim(r.preliminaryQueue); victim != nil {
		delete(r.preliminaryQueue, *victim)
		r.evictable.Remove(*victim)
		return victim
	}
	if victim := r.pickVictim(r.cacheQueue); victim != nil {
		delete(r.cacheQueue, *victim)
		r.evictable.Remove(*victim)
		return victim
	}

	return nil
}

// Size returns the number of tracked frames which are currently evictable
func (r *LRUKReplacer) Size() uint32 {
	r.latch.Lock()
	defer r.latch.Unlock()

	return uint32(r.evictable.Cardinality())
}

// pickVictim scans one partition for the evictable frame whose earliest
// retained timestamp is smallest
func (r *LRUKReplacer) pickVictim(partition map[FrameID]*queue.Queue) *FrameID {
	candidate := pair.Pair[FrameID, uint64]{First: -1, Second: r.clock}
	for frameID, history := range partition {
		if !r.evictable.Contains(frameID) {
			continue
		}
		oldest := history.Peek().(uint64)
		if oldest < candidate.Second {
			candidate = pair.Pair[FrameID, uint64]{First: frameID, Second: oldest}
		}
	}
	if candidate.First == -1 {
		return nil
	}
	victim := candidate.First
	return &victim
}

func (r *LRUKReplacer) isTracked(frameID FrameID) bool {
	if _, ok := r.preliminaryQueue[frameID]; ok {
		return true
	}
	_, ok := r.cacheQueue[frameID]
	return ok
}
