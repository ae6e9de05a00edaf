package downloader

import (
	"context"
	"sync"
	"time"
)

// Memory caches downloaded documents in memory. Useful for the catalog
// page, which every pipeline run requests once but CLI sessions may
// request repeatedly.
type Memory struct {
	mutex sync.Mutex
	cache map[string]memoryEntry

	TimeNow func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		cache:   make(map[string]memoryEntry),
		TimeNow: time.Now,
	}
}

type memoryEntry struct {
	body       []byte
	expiration time.Time
}

func (d *Memory) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		entry, found := d.cache[url]
		d.mutex.Unlock()
		if found && entry.expiration.After(d.TimeNow()) {
			return entry.body, nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.mutex.Lock()
		d.cache[url] = memoryEntry{
			body:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
		d.mutex.Unlock()
	}

	return body, nil
}
