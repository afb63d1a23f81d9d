// Package reconcile turns an incoming list of child representations into
// the create/update/delete operations needed to make a parent's persisted
// children match it.
//
// Diff is pure: it never touches storage. Callers apply the resulting Plan
// inside one transaction so that the whole pass commits or none of it does.
package reconcile

// Item is one incoming child representation. A nil ID marks an untagged
// item; Patch holds only the fields the client sent.
type Item[P any] struct {
	ID    *uint
	Patch P
}

// Tagged reports whether the item carries an identifier.
func (it Item[P]) Tagged() bool { return it.ID != nil }

// Create is an incoming item that becomes a new child of the parent.
// Index is the item's position in the incoming list.
type Create[P any] struct {
	Index int
	Patch P
}

// Update is an incoming item matched to a persisted child of the parent.
type Update[C, P any] struct {
	Index int
	Child C
	Patch P
}

// Plan is the outcome of one reconciliation pass.
type Plan[C, P any] struct {
	Creates []Create[P]
	Updates []Update[C, P]
	Deletes []C
}

// Empty reports whether applying the plan would change nothing.
func (p Plan[C, P]) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff compares incoming against current, the parent's persisted children.
//
//   - a tagged item whose ID matches a child in current becomes an Update;
//   - a tagged item whose ID matches nothing in current becomes a Create and
//     the supplied ID is dropped, so ids of other parents' children can never
//     be adopted;
//   - an untagged item becomes a Create;
//   - a child in current not matched by any tagged item is deleted.
//
// Creates keep the incoming order. An ID repeated in incoming yields one
// Update per occurrence, applied in order.
func Diff[C, P any](current []C, idOf func(C) uint, incoming []Item[P]) Plan[C, P] {
	byID := make(map[uint]C, len(current))
	for _, c := range current {
		byID[idOf(c)] = c
	}

	var plan Plan[C, P]
	matched := make(map[uint]struct{}, len(incoming))
	for i, it := range incoming {
		if it.Tagged() {
			if child, ok := byID[*it.ID]; ok {
				plan.Updates = append(plan.Updates, Update[C, P]{Index: i, Child: child, Patch: it.Patch})
				matched[*it.ID] = struct{}{}
				continue
			}
		}
		plan.Creates = append(plan.Creates, Create[P]{Index: i, Patch: it.Patch})
	}

	for _, c := range current {
		if _, ok := matched[idOf(c)]; !ok {
			plan.Deletes = append(plan.Deletes, c)
		}
	}
	return plan
}
