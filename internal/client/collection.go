package client

import (
	"context"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// CollectionClient provides a generic client for one collection.
type CollectionClient[T any] struct {
	exec horizon.Executor
}

// NewCollectionClient creates a new generic collection client.
func NewCollectionClient[T any](exec horizon.Executor) *CollectionClient[T] {
	return &CollectionClient[T]{exec: exec}
}

// List retrieves one page.
func (c *CollectionClient[T]) List(ctx context.Context, req horizon.CollectionRequest[T]) (*horizon.Page[T], error) {
	return horizon.FetchPage(ctx, c.exec, req)
}

// Paginate returns a lazy paginator starting at req.
func (c *CollectionClient[T]) Paginate(req horizon.CollectionRequest[T]) *horizon.Paginator[T] {
	return horizon.Paginate(c.exec, req)
}

// Stream opens an event stream. It fails with horizon.ErrNotStreamable
// before any connection is attempted when req has no push feed.
func (c *CollectionClient[T]) Stream(ctx context.Context, req horizon.CollectionRequest[T], opts ...horizon.StreamOption) (*horizon.EventStream[T], error) {
	return horizon.StreamCollection(ctx, c.exec, req, opts...)
}

// ResourceClient provides a generic client for single resources addressed
// by a string ID.
type ResourceClient[T any] struct {
	exec    horizon.Executor
	request func(id string) horizon.ResourceRequest[T]
}

// NewResourceClient creates a new generic resource client.
func NewResourceClient[T any](exec horizon.Executor, request func(id string) horizon.ResourceRequest[T]) *ResourceClient[T] {
	return &ResourceClient[T]{exec: exec, request: request}
}

// Get retrieves a resource by ID.
func (c *ResourceClient[T]) Get(ctx context.Context, id string) (*horizon.Response[T], error) {
	return horizon.Fetch(ctx, c.exec, c.request(id))
}
