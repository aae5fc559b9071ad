package ecs

// World owns the entity pool, the stores to purge on destroy and the
// deferred destruction queue flushed once per tick by the cleanup system.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 8),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }
func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }
func (w *World) Live() int              { return w.pool.Live() }

// Register adds a store to purge when entities are destroyed.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

// MarkForDestruction queues id for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities queued for destruction.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys every queued entity and purges it from all
// registered stores. It returns the IDs actually destroyed.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	destroyed := make([]EntityID, 0, len(w.destroyQueue))
	for _, id := range w.destroyQueue {
		if !w.pool.Destroy(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		destroyed = append(destroyed, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}
