package model

// Vector is any value an edit can move by a delta.
type Vector[T any] interface {
	comparable
	Add(T) T
	Sub(T) T
}

type ChangeKind string

const (
	ChangeKindAdd ChangeKind = "add"
	ChangeKindSet ChangeKind = "set"
)

// Change is either a relative delta or an absolute target value.
type Change[T Vector[T]] struct {
	Kind  ChangeKind `json:"kind"`
	Value T          `json:"value"`
}

func ChangeBy[T Vector[T]](delta T) Change[T] {
	return Change[T]{Kind: ChangeKindAdd, Value: delta}
}

func ChangeTo[T Vector[T]](value T) Change[T] {
	return Change[T]{Kind: ChangeKindSet, Value: value}
}

// Delta converts the change into a delta relative to reference.
func (c Change[T]) Delta(reference T) T {
	if c.Kind == ChangeKindSet {
		return c.Value.Sub(reference)
	}
	return c.Value
}

func (c Change[T]) Apply(value T) T {
	if c.Kind == ChangeKindSet {
		return c.Value
	}
	return value.Add(c.Value)
}

// IsNoop reports a zero delta. Absolute targets are never no-ops.
func (c Change[T]) IsNoop() bool {
	var zero T
	return c.Kind != ChangeKindSet && c.Value == zero
}
