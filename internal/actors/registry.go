package actors

import "sort"

// registry maps room ids to their actors. Only the supervisor loop touches it.
type registry struct {
	actors map[string]*RoomActor
}

func newRegistry() *registry {
	return &registry{actors: make(map[string]*RoomActor)}
}

func (r *registry) get(id string) (*RoomActor, bool) {
	a, ok := r.actors[id]
	return a, ok
}

func (r *registry) exists(id string) bool {
	_, ok := r.actors[id]
	return ok
}

// add registers a. It reports false and leaves the registry untouched when the id is taken.
func (r *registry) add(a *RoomActor) bool {
	if r.exists(a.ID()) {
		return false
	}
	r.actors[a.ID()] = a
	return true
}

func (r *registry) remove(id string) (*RoomActor, bool) {
	a, ok := r.actors[id]
	if ok {
		delete(r.actors, id)
	}
	return a, ok
}

func (r *registry) len() int { return len(r.actors) }

// ids returns the registered room ids in lexical order.
func (r *registry) ids() []string {
	ids := make([]string, 0, len(r.actors))
	for id := range r.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
