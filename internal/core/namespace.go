package core

import "context"

type namespaced struct {
	parent KVStore
	prefix string
}

// Namespace scopes every key of store under prefix. Closing the returned
// store does not close the parent.
func Namespace(store KVStore, prefix string) KVStore {
	return &namespaced{parent: store, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.parent.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.parent.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.parent.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Close() error { return nil }
