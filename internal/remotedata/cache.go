package remotedata

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher produces the value for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Entry is one keyed value returned by an AllFetcher.
type Entry[T any] struct {
	Key   string
	Value T
}

// AllFetcher produces a batch of keyed values.
type AllFetcher[T any] func(ctx context.Context) ([]Entry[T], error)

// Listener is called after every state change of a key.
type Listener[T any] func(key string, data RemoteData[T])

// Cache holds one RemoteData per key and never evicts. At most one fetch
// per key is in flight; concurrent readers share its result. Fetches are not
// cancelled when their caller goes away.
type Cache[T any] struct {
	name string
	log  *zerolog.Logger

	mu        sync.Mutex
	entries   map[string]RemoteData[T]
	gens      map[string]uint64 // invalidations per key
	listeners map[int]Listener[T]
	nextID    int

	group singleflight.Group
}

func NewCache[T any](name string, log *zerolog.Logger) *Cache[T] {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Cache[T]{
		name:      name,
		log:       log,
		entries:   make(map[string]RemoteData[T]),
		gens:      make(map[string]uint64),
		listeners: make(map[int]Listener[T]),
	}
}

// Peek returns the current state of key without fetching.
func (c *Cache[T]) Peek(key string) RemoteData[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key]
}

// Load returns the current state of key and starts a fetch in the
// background when nothing was requested yet.
func (c *Cache[T]) Load(ctx context.Context, key string, fetch Fetcher[T]) RemoteData[T] {
	c.start(ctx, key, fetch)
	return c.Peek(key)
}

// Await is Load followed by waiting for the fetch to settle. If ctx ends
// first the current, still loading, state is returned.
func (c *Cache[T]) Await(ctx context.Context, key string, fetch Fetcher[T]) RemoteData[T] {
	ch := c.start(ctx, key, fetch)
	if ch == nil {
		return c.Peek(key)
	}
	select {
	case res := <-ch:
		if rd, ok := res.Val.(RemoteData[T]); ok {
			return rd
		}
	case <-ctx.Done():
	}
	return c.Peek(key)
}

// LoadAll runs fetch once per listKey, stores every returned entry as
// Loaded and returns the entries of this batch. A failing batch is returned
// as Bad and leaves the individual keys untouched.
func (c *Cache[T]) LoadAll(ctx context.Context, listKey string, fetch AllFetcher[T]) RemoteData[map[string]RemoteData[T]] {
	ch := c.group.DoChan("\x00all:"+listKey, func() (any, error) {
		c.mu.Lock()
		gens := make(map[string]uint64, len(c.gens))
		for k, g := range c.gens {
			gens[k] = g
		}
		c.mu.Unlock()

		entries, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		out := make(map[string]RemoteData[T], len(entries))
		for _, e := range entries {
			rd := LoadedData(e.Value)
			c.set(e.Key, gens[e.Key], rd)
			out[e.Key] = rd
		}
		return out, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			status, msg := Classify(res.Err)
			c.log.Warn().Err(res.Err).Str("cache", c.name).Str("list", listKey).Int("status", status).Msg("remote data list fetch failed")
			return BadData[map[string]RemoteData[T]](status, msg, res.Err)
		}
		return LoadedData(res.Val.(map[string]RemoteData[T]))
	case <-ctx.Done():
		return LoadingData[map[string]RemoteData[T]]()
	}
}

// Invalidate forgets key so the next read fetches again. A fetch still in
// flight for key finishes for its own callers but is not stored.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	if ok {
		c.notify(key, NotRequestedData[T]())
	}
}

// Keys lists every key that has been requested.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

// Subscribe registers l and returns a function that removes it.
func (c *Cache[T]) Subscribe(l Listener[T]) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// start marks key as Loading and launches the shared fetch. It returns nil
// when the key already settled. The flight result is the RemoteData the
// fetch produced.
func (c *Cache[T]) start(ctx context.Context, key string, fetch Fetcher[T]) <-chan singleflight.Result {
	c.mu.Lock()
	cur := c.entries[key]
	if cur.Settled() {
		c.mu.Unlock()
		return nil
	}
	gen := c.gens[key]
	first := cur.State == NotRequested
	if first {
		c.entries[key] = LoadingData[T]()
	}
	c.mu.Unlock()
	if first {
		c.notify(key, LoadingData[T]())
	}

	return c.group.DoChan(key+"\x00"+strconv.FormatUint(gen, 10), func() (any, error) {
		// A flight that finished between our check and DoChan already
		// stored its result.
		if rd, ok := c.current(key, gen); ok && rd.Settled() {
			return rd, nil
		}
		c.log.Debug().Str("cache", c.name).Str("key", key).Msg("fetching remote data")
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			status, msg := Classify(err)
			c.log.Warn().Err(err).Str("cache", c.name).Str("key", key).Int("status", status).Msg("remote data fetch failed")
			rd := BadData[T](status, msg, err)
			c.set(key, gen, rd)
			return rd, nil
		}
		rd := LoadedData(v)
		c.set(key, gen, rd)
		return rd, nil
	})
}

// current returns the entry for key if gen is still its generation.
func (c *Cache[T]) current(key string, gen uint64) (RemoteData[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return RemoteData[T]{}, false
	}
	return c.entries[key], true
}

// set stores rd unless key was invalidated after gen was read.
func (c *Cache[T]) set(key string, gen uint64, rd RemoteData[T]) {
	c.mu.Lock()
	if c.gens[key] != gen {
		c.mu.Unlock()
		c.log.Debug().Str("cache", c.name).Str("key", key).Msg("dropping result of invalidated fetch")
		return
	}
	c.entries[key] = rd
	c.mu.Unlock()
	c.notify(key, rd)
}

func (c *Cache[T]) notify(key string, rd RemoteData[T]) {
	c.mu.Lock()
	ls := make([]Listener[T], 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.mu.Unlock()
	for _, l := range ls {
		l(key, rd)
	}
}
