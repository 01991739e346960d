package model

// Field is an optional value in a partial update. The zero Field means
// "leave unchanged"; a Field built with Some is written even when Value is
// the zero value of T.
type Field[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Or returns the value when set, def otherwise.
func (f Field[T]) Or(def T) T {
	if f.Set {
		return f.Value
	}
	return def
}

// Ptr returns a pointer to the value when set and nil otherwise, which is how
// nullable columns receive it.
func (f Field[T]) Ptr() *T {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}
