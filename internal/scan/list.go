package scan

// Container growth policy. Lists start at InitialCap elements on first
// append and grow by a quarter, rounded up, when full.
const InitialCap = 512

// ReserveFunc is consulted before a list allocates backing storage, with the
// capacity in elements the list is about to hold. Returning an error vetoes
// the allocation; the list drops its contents and the error propagates as a
// fatal scan failure. A nil ReserveFunc never vetoes.
type ReserveFunc func(elems int) error

// List is an append-only growable array. Growth copies the existing
// elements, preserving order and values; nothing else about the list is
// observable from outside.
type List[T any] struct {
	items   []T
	reserve ReserveFunc
}

// NewList returns an empty list. Backing storage is allocated lazily so that
// construction itself cannot fail.
func NewList[T any](reserve ReserveFunc) *List[T] {
	return &List[T]{reserve: reserve}
}

// Append adds v to the end of the list, growing it if full. On a vetoed
// allocation the list releases everything it held and returns the veto.
func (l *List[T]) Append(v T) error {
	if len(l.items) == cap(l.items) {
		newCap := InitialCap
		if c := cap(l.items); c > 0 {
			newCap = (c*5 + 3) / 4 // ceil(cap * 1.25)
		}
		if l.reserve != nil {
			if err := l.reserve(newCap); err != nil {
				l.items = nil
				return err
			}
		}
		grown := make([]T, len(l.items), newCap)
		copy(grown, l.items)
		l.items = grown
	}
	l.items = append(l.items, v)
	return nil
}

// Len returns the number of elements appended so far.
func (l *List[T]) Len() int { return len(l.items) }

// Items returns the underlying slice. The list must not be appended to after
// the slice is handed out.
func (l *List[T]) Items() []T { return l.items }
