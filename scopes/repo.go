package scopes

import "context"

// Catalog is the store contract for scope rows. FindByIDs and FindByRefs
// return only the rows that exist; a lookup with unknown entries is not
// an error.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) ([]*Scope, error)
	FindByRefs(ctx context.Context, refs []Ref) ([]*Scope, error)
	Upsert(ctx context.Context, scope *Scope) (*Scope, error)
}
