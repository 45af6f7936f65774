package wallet

import (
	"slices"
	"strconv"
	"sync"
)

const lockStripes = 256

// Key identifies one wallet.
type Key struct {
	UserID  string
	AssetID uint
}

func (k Key) String() string {
	return k.UserID + "/" + strconv.FormatUint(uint64(k.AssetID), 10)
}

// locker serializes mutations per wallet with a fixed set of striped mutexes.
// Stripes are always acquired in ascending order so multi-wallet transfers cannot deadlock.
type locker struct {
	stripes [lockStripes]sync.Mutex
}

func (l *locker) lock(keys []Key) (unlock func()) {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, stripeOf(k))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	for _, i := range idx {
		l.stripes[i].Lock()
	}
	return func() {
		for i := len(idx) - 1; i >= 0; i-- {
			l.stripes[idx[i]].Unlock()
		}
	}
}

func stripeOf(k Key) int {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	var hash uint64 = offset64
	for i := 0; i < len(k.UserID); i++ {
		hash ^= uint64(k.UserID[i])
		hash *= prime64
	}
	asset := uint64(k.AssetID)
	for i := 0; i < 8; i++ {
		hash ^= asset & 0xff
		hash *= prime64
		asset >>= 8
	}
	return int(hash % lockStripes)
}
