package scopes

import "context"

// Ref is the canonical store reference for a persisted scope row. Clients,
// users and sessions hold Refs rather than scope_id strings so that a
// reused identifier can never alias a different scope across projects.
type Ref string

// Scope is a named permission unit owned by exactly one project.
type Scope struct {
	Ref         Ref    `json:"ref,omitempty"`
	ID          string `json:"scope_id"`
	Name        string `json:"scope_name,omitempty"`
	Description string `json:"scope_description,omitempty"`
	ProjectID   string `json:"-"`
}

// Resolve turns scope identifiers into canonical refs via the catalog.
// Identifiers are de-duplicated and unknown ones are dropped silently -
// the catalog lookup returns only matches. Order is not significant.
func Resolve(ctx context.Context, catalog Catalog, identifiers []string) ([]Ref, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(identifiers))
	seen := make(map[string]struct{}, len(identifiers))
	for _, id := range identifiers {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := catalog.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	refs := make([]Ref, 0, len(found))
	for _, scope := range found {
		refs = append(refs, scope.Ref)
	}
	return refs, nil
}

// Merge returns the union of two ref sets, de-duplicated by underlying
// identity. The elements of a come first, then any of b not already seen.
func Merge(a, b []Ref) []Ref {
	merged := make([]Ref, 0, len(a)+len(b))
	seen := make(map[Ref]struct{}, len(a)+len(b))
	for _, ref := range a {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		merged = append(merged, ref)
	}
	for _, ref := range b {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		merged = append(merged, ref)
	}
	return merged
}

// Intersect returns the refs present in both sets.
func Intersect(a, b []Ref) []Ref {
	inB := make(map[Ref]struct{}, len(b))
	for _, ref := range b {
		inB[ref] = struct{}{}
	}

	var intersection []Ref
	seen := make(map[Ref]struct{}, len(a))
	for _, ref := range a {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		if _, ok := inB[ref]; ok {
			intersection = append(intersection, ref)
		}
	}
	return intersection
}

// IDs resolves refs back to their scope_id strings via the catalog.
// Refs that no longer exist in the catalog are dropped.
func IDs(ctx context.Context, catalog Catalog, refs []Ref) ([]string, error) {
	if len(refs) == 0 {
		return []string{}, nil
	}
	found, err := catalog.FindByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(found))
	for _, scope := range found {
		ids = append(ids, scope.ID)
	}
	return ids, nil
}

// HasAny reports whether any of the required identifiers is present in
// held. Any-of semantics: one match is enough.
func HasAny(held, required []string) bool {
	inHeld := make(map[string]struct{}, len(held))
	for _, id := range held {
		inHeld[id] = struct{}{}
	}
	for _, id := range required {
		if _, ok := inHeld[id]; ok {
			return true
		}
	}
	return false
}
