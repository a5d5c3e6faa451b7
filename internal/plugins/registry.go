// Package plugins holds the block capability registry: for every block
// type, whether it is a container, which child and parent types it
// accepts, its layout axis, and its default-data factory.
package plugins

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Capability Registry — block types registered at startup
// ─────────────────────────────────────────────────────────────

// Registry maps block types to their capabilities.
type Registry struct {
	mu   sync.RWMutex
	caps map[domain.BlockType]domain.Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[domain.BlockType]domain.Capability)}
}

// Register adds a capability. Panics on duplicate registration or on a
// capability without a type or a default factory.
func (r *Registry) Register(c domain.Capability) {
	if c.Type == "" {
		panic("capability registry: capability without a type")
	}
	if c.Defaults == nil {
		panic(fmt.Sprintf("capability registry: %q has no default factory", c.Type))
	}
	if !c.IsContainer && len(c.AllowedChildren) > 0 {
		panic(fmt.Sprintf("capability registry: %q restricts children but is not a container", c.Type))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[c.Type]; exists {
		panic(fmt.Sprintf("capability registry: duplicate registration for block type %q", c.Type))
	}
	r.caps[c.Type] = c
}

// Lookup implements domain.Capabilities.
func (r *Registry) Lookup(t domain.BlockType) (domain.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[t]
	return c, ok
}

// Types returns the registered block types in sorted order.
func (r *Registry) Types() []domain.BlockType {
	r.mu.RLock()
	types := lo.Keys(r.caps)
	r.mu.RUnlock()
	slices.Sort(types)
	return types
}

// ForEach calls fn for every capability in type order.
func (r *Registry) ForEach(fn func(domain.Capability)) {
	for _, t := range r.Types() {
		if c, ok := r.Lookup(t); ok {
			fn(c)
		}
	}
}

// Defaults instantiates a new block of type t with a fresh id.
func (r *Registry) Defaults(t domain.BlockType) (domain.Block, error) {
	c, ok := r.Lookup(t)
	if !ok {
		return domain.Block{}, fmt.Errorf("block type %q: %w", t, domain.ErrNotFound)
	}
	b := blocktree.Clone(c.Defaults())
	b.Type = t
	return b, nil
}

// CanNest checks that a block of childType may live directly inside a block
// of parentType. domain.RootType accepts any child unless the child
// restricts its parents.
func (r *Registry) CanNest(parentType, childType domain.BlockType) error {
	child, ok := r.Lookup(childType)
	if !ok {
		return fmt.Errorf("block type %q: %w", childType, domain.ErrNotFound)
	}
	if parentType != domain.RootType {
		parent, ok := r.Lookup(parentType)
		if !ok {
			return fmt.Errorf("block type %q: %w", parentType, domain.ErrNotFound)
		}
		if !parent.IsContainer {
			return &domain.NestError{Parent: parentType, Child: childType}
		}
		if parent.AllowedChildren != nil && !lo.Contains(parent.AllowedChildren, childType) {
			return &domain.NestError{Parent: parentType, Child: childType}
		}
	}
	if child.AllowedParents != nil && !lo.Contains(child.AllowedParents, parentType) {
		return &domain.NestError{Parent: parentType, Child: childType}
	}
	return nil
}

// CanNestTree checks every block of a subtree against its parent, starting
// with root placed under parentType.
func (r *Registry) CanNestTree(parentType domain.BlockType, root domain.Block) error {
	if err := r.CanNest(parentType, root.Type); err != nil {
		return err
	}
	for _, c := range root.Children {
		if err := r.CanNestTree(root.Type, c); err != nil {
			return err
		}
	}
	return nil
}
