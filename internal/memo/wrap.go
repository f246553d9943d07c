package memo

// Wrap returns a memoized version of producer with the same signature.
func Wrap[A, R any](producer Producer[A, R], resolver Resolver[A], cfg Config) func(A) (R, error) {
	return New(producer, resolver, cfg).Call
}

// WrapDebug is Wrap returning each value together with its cached flag.
func WrapDebug[A, R any](producer Producer[A, R], resolver Resolver[A], cfg Config) func(A) (Result[R], error) {
	return New(producer, resolver, cfg).CallDebug
}
