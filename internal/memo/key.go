package memo

import "fmt"

// Resolver maps a call argument to a cache key. Its result is converted to a
// string with fmt.Sprint unless it already is one, so values printing the
// same text share an entry. Pointers print as addresses; resolve them to
// something stable first.
type Resolver[A any] func(A) any

// ByArgument uses the argument itself as the key.
func ByArgument[A any](arg A) any {
	return arg
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
