package barnapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Resource is a named server-side collection with uniform list/create/update/delete calls.
type Resource[T any] struct {
	client   *Client
	path     string
	envelope string
}

// ResourceOption customizes a Resource.
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	envelope string
}

// WithEnvelope makes Create and Update read the entity from a wrapper key, e.g. {"record": {...}}.
func WithEnvelope(key string) ResourceOption {
	return func(o *resourceOptions) { o.envelope = key }
}

// NewResource binds a collection path such as "/sales" to the client.
func NewResource[T any](client *Client, path string, opts ...ResourceOption) *Resource[T] {
	var o resourceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{
		client:   client,
		path:     "/" + strings.Trim(path, "/"),
		envelope: o.envelope,
	}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string { return r.path }

// List fetches the whole collection. An undecodable body is an error, never an empty list.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	resp, err := r.client.do(ctx, http.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := decode(resp.Body(), "", &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", r.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one entity by id.
func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var entity T
	path := entityPath(r.path, id)
	resp, err := r.client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return entity, err
	}
	if err := decode(resp.Body(), "", &entity); err != nil {
		return entity, fmt.Errorf("decode %s: %w", path, err)
	}
	return entity, nil
}

// Create POSTs the payload and returns the server entity, including its generated id.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var entity T
	resp, err := r.client.do(ctx, http.MethodPost, r.path, payload)
	if err != nil {
		return entity, err
	}
	if err := decode(resp.Body(), r.envelope, &entity); err != nil {
		return entity, fmt.Errorf("decode created %s entity: %w", r.path, err)
	}
	return entity, nil
}

// Update PATCHes the supplied fields and returns the server's copy of the entity.
func (r *Resource[T]) Update(ctx context.Context, id int, payload any) (T, error) {
	var entity T
	path := entityPath(r.path, id)
	resp, err := r.client.do(ctx, http.MethodPatch, path, payload)
	if err != nil {
		return entity, err
	}
	if err := decode(resp.Body(), r.envelope, &entity); err != nil {
		return entity, fmt.Errorf("decode updated %s entity: %w", path, err)
	}
	return entity, nil
}

// Remove DELETEs the entity.
func (r *Resource[T]) Remove(ctx context.Context, id int) error {
	_, err := r.client.do(ctx, http.MethodDelete, entityPath(r.path, id), nil)
	return err
}
