package generation

// Outcome is the result of a provider call: either a value or the error
// that prevented producing one.
type Outcome[T any] struct {
	value T
	err   error
}

// Succeeded wraps a produced value.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failed wraps a provider failure. A nil err is replaced by
// ErrGenerationFailed so a failed outcome always carries a cause.
func Failed[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrGenerationFailed
	}
	return Outcome[T]{err: err}
}

// OK reports whether the call produced a value.
func (o Outcome[T]) OK() bool {
	return o.err == nil
}

// Err returns the failure cause, or nil on success.
func (o Outcome[T]) Err() error {
	return o.err
}

// Get returns the value and the failure cause.
func (o Outcome[T]) Get() (T, error) {
	return o.value, o.err
}

// OrElse returns the value on success, otherwise the result of fallback
// applied to the failure cause.
func (o Outcome[T]) OrElse(fallback func(error) T) T {
	if o.err != nil {
		return fallback(o.err)
	}
	return o.value
}
