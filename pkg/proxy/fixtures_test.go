package proxy

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/proxykit/pkg/meta"
)

var (
	stringT = reflect.TypeOf("")
	intT    = reflect.TypeOf(0)
)

// scenarioB is a class with a protected cp(x) -> x and a public
// a1(x) -> cp(x).
func scenarioB(t testing.TB) *meta.Type {
	t.Helper()
	b, err := meta.NewClass("B").
		Method("cp", func(self meta.Object, x string) (string, error) {
			return x, nil
		}, meta.Visible(meta.Protected)).
		Method("a1", func(self meta.Object, x string) (string, error) {
			res, err := self.Invoke(meta.SignatureOf("cp", stringT), x)
			if err != nil {
				return "", err
			}
			return res.(string), nil
		}).
		Build()
	require.NoError(t, err)
	return b
}

func scenarioC(t testing.TB) *meta.Type {
	t.Helper()
	c, err := meta.NewContract("C").
		Method("c1", func(self meta.Object, x string) (string, error) { return x, nil }).
		Build()
	require.NoError(t, err)
	return c
}

func multiplier(t testing.TB, name string, k int) *meta.Type {
	t.Helper()
	c, err := meta.NewContract(name).
		Method("ss", func(self meta.Object, i int) (int, error) { return i * k, nil }).
		Build()
	require.NoError(t, err)
	return c
}

// counting intercepts everything, passes calls to InvokeSuper and counts
// the handled calls per method name.
type counting struct {
	mu    sync.Mutex
	calls map[string]int
	asked []string
}

func newCounting() *counting { return &counting{calls: make(map[string]int)} }

func (c *counting) ShouldIntercept(m *Candidate) bool {
	c.mu.Lock()
	c.asked = append(c.asked, m.Name())
	c.mu.Unlock()
	return true
}

func (c *counting) Handle(self meta.Object, m *Candidate, inv Invoker, args []any) (any, error) {
	c.mu.Lock()
	c.calls[m.Name()]++
	c.mu.Unlock()
	return inv.InvokeSuper(self, args...)
}

func (c *counting) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func names(cs []*Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}
