package memory

import (
	"context"
	"sync"

	"vendor-notices/internal/domain/targets"
)

// Inventory simula el inventario externo (circuitos, devices, sitios...) para
// dev y tests. Cada tipo se registra como un resolver más del Registry.
type Inventory struct {
	mu    sync.RWMutex
	items map[targets.Ref]targets.Entity
}

func NewInventory() *Inventory {
	return &Inventory{items: make(map[targets.Ref]targets.Entity)}
}

func (inv *Inventory) Put(kind targets.Kind, id, display string) targets.Ref {
	ref := targets.NewRef(kind, id)

	inv.mu.Lock()
	inv.items[ref] = targets.Entity{Ref: ref, Display: display}
	inv.mu.Unlock()
	return ref
}

func (inv *Inventory) Delete(ref targets.Ref) {
	inv.mu.Lock()
	delete(inv.items, targets.NewRef(ref.Kind, ref.ID))
	inv.mu.Unlock()
}

// Resolver devuelve el resolver de un tipo concreto.
func (inv *Inventory) Resolver(kind targets.Kind) targets.Resolver {
	kind = targets.ParseKind(string(kind))
	return targets.ResolverFunc(func(ctx context.Context, id string) (targets.Entity, error) {
		inv.mu.RLock()
		defer inv.mu.RUnlock()

		ent, ok := inv.items[targets.NewRef(kind, id)]
		if !ok {
			return targets.Entity{}, targets.ErrNotFound
		}
		return ent, nil
	})
}

// RegisterAll registra el inventario para todos los tipos dados.
func (inv *Inventory) RegisterAll(reg *targets.Registry, kinds ...targets.Kind) {
	for _, k := range kinds {
		reg.Register(k, inv.Resolver(k))
	}
}
