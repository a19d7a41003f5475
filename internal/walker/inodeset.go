package walker

import "sync"

// Hardlinked files share an inode; each inode's blocks are counted once per
// walk. The set is sharded so workers rarely contend on one lock.
const inodeShards = 128

type inodeSet struct {
	shards [inodeShards]inodeShard
}

type inodeShard struct {
	mu sync.Mutex
	m  map[uint64]struct{}
}

func newInodeSet() *inodeSet {
	s := &inodeSet{}
	for i := range s.shards {
		s.shards[i].m = make(map[uint64]struct{})
	}
	return s
}

// Add inserts ino and reports whether it was not seen before. Neighboring
// inodes land in different shards via the low bits above the allocation run.
func (s *inodeSet) Add(ino uint64) bool {
	shard := &s.shards[(ino>>8)%inodeShards]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.m[ino]; ok {
		return false
	}
	shard.m[ino] = struct{}{}
	return true
}
