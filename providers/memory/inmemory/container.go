package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/leofalp/cllm/providers/memory"
)

// Container is a memory.Container held in process memory. It backs
// throwaway sessions and tests.
type Container struct {
	mu   sync.Mutex
	name string
	data []byte
}

// NewContainer returns an uninitialized container; the first Load creates it empty.
func NewContainer(name string) *Container {
	return &Container{name: name}
}

var _ memory.Container = (*Container)(nil)

func (c *Container) Name() string { return "mem:" + c.name }

func (c *Container) Load(_ context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = slices.Clone(memory.EmptyCollection)
	}
	return slices.Clone(c.data), nil
}

func (c *Container) Store(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = slices.Clone(data)
	return nil
}
