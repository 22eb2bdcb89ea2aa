package utils

// Runnable is a step that may fail. See Run.
type Runnable func() error

func ToRunnable1[T any](f func(T) error, a T) Runnable {
	return func() error {
		return f(a)
	}
}

// Run runs rs in order and stops at the first error.
func Run(rs ...Runnable) error {
	for _, r := range rs {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}
