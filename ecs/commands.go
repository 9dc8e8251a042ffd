package ecs

import (
	"errors"
	"fmt"
)

// Commands buffers structural changes queued from inside query callbacks and
// applies them once the traversal is over.
type Commands struct {
	creates  [][]Component
	destroys []Handle
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return newCommands()
}

type addComponentCommand struct {
	entity    Handle
	component Component
}

type removeComponentCommand struct {
	entity Handle
	name   string
}

// Defer queues a function to run after every structural change is applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Create queues the creation of an entity with the given components.
func (c *Commands) Create(components ...Component) {
	c.creates = append(c.creates, components)
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(entity Handle) {
	c.destroys = append(c.destroys, entity)
}

// AddComponent queues a component attachment.
func (c *Commands) AddComponent(entity Handle, component Component) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues the removal of the named component.
func (c *Commands) RemoveComponent(entity Handle, name string) {
	c.removes = append(c.removes, removeComponentCommand{
		entity: entity,
		name:   name,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.destroys) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies the queued operations to store in the order destroy, remove,
// add, create, defer, then resets the buffer. Operations targeting an entity
// destroyed by the same flush are skipped. Every failure is collected; the
// remaining operations still run.
func (c *Commands) Flush(store *Store) error {
	var errs []error
	destroyed := make(map[Handle]bool, len(c.destroys))

	for _, h := range c.destroys {
		if err := store.Destroy(h); err != nil {
			errs = append(errs, err)
			continue
		}
		destroyed[h] = true
	}

	for _, cmd := range c.removes {
		if !destroyed[cmd.entity] {
			if err := store.Detach(cmd.entity, cmd.name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, cmd := range c.adds {
		if !destroyed[cmd.entity] {
			if err := store.Attach(cmd.entity, cmd.component); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, components := range c.creates {
		if _, err := store.CreateWith(components...); err != nil {
			errs = append(errs, fmt.Errorf("create entity: %w", err))
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.creates)
	clear(c.adds)
	c.creates = c.creates[:0]
	c.destroys = c.destroys[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
