package gokami

import "sync"

// NewCatalogContext returns a context that tracks open catalogs so a
// shutdown can wait on all of them.
//
// Catalogs attach when opened and detach when closed. Close signals
// Closing and asks every still-attached catalog to close itself; once
// the last one detaches, Done fires.
func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		attached: make(map[Catalog]struct{}),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	// The context holds one slot of its own until Close releases it,
	// so Done cannot fire before Close is called.
	ctx.open.Add(1)
	go func() {
		<-ctx.closing
		ctx.open.Done()
		ctx.open.Wait()
		close(ctx.done)
	}()
	return ctx
}

type catalogContext struct {
	mu       sync.Mutex
	open     sync.WaitGroup // one slot per attached catalog plus the context's own
	attached map[Catalog]struct{}
	closing  chan struct{}
	done     chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.open.Add(1)
	ctx.mu.Lock()
	ctx.attached[cat] = struct{}{}
	ctx.mu.Unlock()
}

// DetachCatalog releases cat's slot. Detaching a catalog that is not
// attached is a no-op, so a catalog may detach on both its error and
// close paths without tracking which ran first.
func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	_, wasAttached := ctx.attached[cat]
	delete(ctx.attached, cat)
	ctx.mu.Unlock()

	if wasAttached {
		ctx.open.Done()
	}
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.done
}

func (ctx *catalogContext) Close() {
	close(ctx.closing)

	ctx.mu.Lock()
	stillOpen := make([]Catalog, 0, len(ctx.attached))
	for cat := range ctx.attached {
		stillOpen = append(stillOpen, cat)
	}
	ctx.mu.Unlock()

	// each Close detaches its catalog, releasing its slot
	for _, cat := range stillOpen {
		go cat.Close()
	}
}
