// Package memo wraps a producer function with a per-key result cache.
//
// A [Memo] resolves each call argument to a string key, runs the producer on
// a miss and serves later calls for the same key from memory until a fixed
// TTL has passed since the result was stored.
//
// Two call paths exist, chosen once at construction through [Config.Mode]:
//   - [Synchronous] runs the producer on the caller's goroutine and caches
//     successful results only.
//   - [Coalescing] records an in-flight entry before running the producer.
//     Callers arriving for the same key while it runs wait for it and receive
//     the same value or error. Failures are cached until the TTL expires.
//
// Expiry is timer driven: one timer per entry, armed when the entry is
// resolved, never on access (unless [Config.Sliding] is set).
//
//	square := memo.Wrap(memo.Infallible(func(x int) int { return x * x }),
//	    memo.ByArgument[int], memo.Config{TTL: time.Second})
//	v, _ := square(5) // 25, producer runs
//	v, _ = square(5)  // 25, served from cache
package memo
