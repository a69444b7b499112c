package fanin

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(values ...string) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, v := range values {
			ch <- v
		}
	}()
	return ch
}

func TestFanIn(t *testing.T) {
	var got []string
	for v := range FanIn(context.Background(), feed("a", "b"), feed("c"), feed()) {
		got = append(got, v)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFanInNoInputs(t *testing.T) {
	_, ok := <-FanIn[int](context.Background())
	assert.False(t, ok)
}
