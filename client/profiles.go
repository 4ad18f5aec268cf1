package client

import (
	"context"
	"sync"
)

// ProfileResolver caches display profiles so conversation and message lists
// can be enriched without refetching the same users.
type ProfileResolver struct {
	api API

	mu    sync.RWMutex
	cache map[string]Profile
}

func NewProfileResolver(api API) *ProfileResolver {
	return &ProfileResolver{api: api, cache: map[string]Profile{}}
}

// Resolve returns profiles for the given ids, fetching only the ones not
// already cached. A failed fetch degrades to whatever is cached; callers
// render a placeholder for missing entries.
func (r *ProfileResolver) Resolve(ctx context.Context, ids []string) map[string]Profile {
	out := map[string]Profile{}
	var missing []string

	r.mu.RLock()
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.cache[id]; ok {
			out[p.UserID] = p
		} else {
			missing = append(missing, id)
		}
	}
	r.mu.RUnlock()

	if len(missing) == 0 {
		return out
	}

	fetched, err := r.api.Profiles(ctx, missing)
	if err != nil {
		return out
	}

	r.mu.Lock()
	for id, p := range fetched {
		r.cache[id] = p
		out[id] = p
	}
	r.mu.Unlock()
	return out
}

// Invalidate drops a cached profile so the next Resolve refetches it.
func (r *ProfileResolver) Invalidate(id string) {
	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()
}

func (r *ProfileResolver) Clear() {
	r.mu.Lock()
	r.cache = map[string]Profile{}
	r.mu.Unlock()
}
