package targets

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Resolver busca una entidad de un tipo concreto. Debe devolver ErrNotFound
// si el id no existe.
type Resolver interface {
	Lookup(ctx context.Context, id string) (Entity, error)
}

// ResolverFunc adapta una función a Resolver.
type ResolverFunc func(ctx context.Context, id string) (Entity, error)

func (f ResolverFunc) Lookup(ctx context.Context, id string) (Entity, error) { return f(ctx, id) }

// AllowList es el subconjunto de tipos admitidos como target. Se puede
// reemplazar en caliente (recarga de config) sin reiniciar.
type AllowList struct {
	mu    sync.RWMutex
	kinds map[Kind]struct{}
}

func NewAllowList(kinds []string) *AllowList {
	a := &AllowList{}
	a.Set(kinds)
	return a
}

func (a *AllowList) Set(kinds []string) {
	m := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		kind := ParseKind(k)
		if kind == "" {
			continue
		}
		m[kind] = struct{}{}
	}

	a.mu.Lock()
	a.kinds = m
	a.mu.Unlock()
}

func (a *AllowList) Contains(k Kind) bool {
	if a == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.kinds[ParseKind(string(k))]
	return ok
}

func (a *AllowList) Kinds() []Kind {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Kind, 0, len(a.kinds))
	for k := range a.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Registry mapea cada tipo conocido (cerrado en compilación) a su resolver.
// Los tipos admitidos en runtime son la intersección con el AllowList.
type Registry struct {
	resolvers map[Kind]Resolver
	allow     *AllowList
}

func NewRegistry(allow *AllowList) *Registry {
	return &Registry{
		resolvers: make(map[Kind]Resolver),
		allow:     allow,
	}
}

func (r *Registry) Register(kind Kind, res Resolver) {
	r.resolvers[ParseKind(string(kind))] = res
}

// Supports indica si el tipo está registrado y además admitido por config.
func (r *Registry) Supports(kind Kind) bool {
	kind = ParseKind(string(kind))
	if _, ok := r.resolvers[kind]; !ok {
		return false
	}
	return r.allow.Contains(kind)
}

func (r *Registry) AllowList() *AllowList { return r.allow }

// Resolve resuelve una referencia.
//   - tipo no admitido => ErrUnsupportedKind (desajuste de config/caller)
//   - objeto inexistente => Resolution{Found:false}, nil
func (r *Registry) Resolve(ctx context.Context, ref Ref) (Resolution, error) {
	if err := ref.Validate(); err != nil {
		return Resolution{}, err
	}
	kind := ParseKind(string(ref.Kind))
	if !r.Supports(kind) {
		return Resolution{Entity: Entity{Ref: ref}}, ErrUnsupportedKind
	}

	ent, err := r.resolvers[kind].Lookup(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{Entity: Entity{Ref: ref}, Found: false}, nil
		}
		return Resolution{Entity: Entity{Ref: ref}}, err
	}
	ent.Ref = ref
	return Resolution{Entity: ent, Found: true}, nil
}
