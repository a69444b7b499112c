package fanout

import "context"

// FanOut deals values from in across n channels round-robin, so value i goes to
// channel i%n. Every output is closed once in is drained or ctx is done.
func FanOut[T any](ctx context.Context, in <-chan T, n int) []<-chan T {
	if n <= 0 {
		n = 1
	}
	outs := make([]chan T, n)
	ro := make([]<-chan T, n)
	for i := 0; i < n; i++ {
		outs[i] = make(chan T)
		ro[i] = outs[i]
	}

	go func() {
		defer func() {
			for _, ch := range outs {
				close(ch)
			}
		}()

		i := 0
		for v := range in {
			select {
			case <-ctx.Done():
				return
			case outs[i%n] <- v:
			}
			i++
		}
	}()

	return ro
}
