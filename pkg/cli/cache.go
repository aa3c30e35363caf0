package cli

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ternhq/tern/pkg/compatibility"
	"github.com/ternhq/tern/pkg/schema"
)

// resultCache memoizes comparison results by content hash. Watch mode and
// batch runs hit the same contract pairs repeatedly; re-diffing identical
// bytes is wasted work.
type resultCache struct {
	entries *lru.Cache[uint64, *compatibility.Result]
}

func newResultCache(size int) (*resultCache, error) {
	entries, err := lru.New[uint64, *compatibility.Result](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func cacheKey(format schema.Format, oldRaw, newRaw []byte) uint64 {
	d := xxhash.New()
	d.WriteString(string(format))
	d.Write([]byte{0})
	d.Write(oldRaw)
	d.Write([]byte{0})
	d.Write(newRaw)
	return d.Sum64()
}

func (c *resultCache) get(format schema.Format, oldRaw, newRaw []byte) (*compatibility.Result, bool) {
	return c.entries.Get(cacheKey(format, oldRaw, newRaw))
}

func (c *resultCache) put(format schema.Format, oldRaw, newRaw []byte, result *compatibility.Result) {
	c.entries.Add(cacheKey(format, oldRaw, newRaw), result)
}

// compare runs an engine comparison through the cache.
func (c *resultCache) compare(engine *compatibility.Engine, oldPath, newPath, format string) (*compatibility.Result, error) {
	oldModel, oldRaw, err := loadModel(oldPath, format)
	if err != nil {
		return nil, err
	}
	newModel, newRaw, err := loadModel(newPath, format)
	if err != nil {
		return nil, err
	}

	if result, ok := c.get(oldModel.Format, oldRaw, newRaw); ok {
		return result, nil
	}
	result, err := engine.Compare(oldModel, newModel)
	if err != nil {
		return nil, err
	}
	c.put(oldModel.Format, oldRaw, newRaw, result)
	return result, nil
}
