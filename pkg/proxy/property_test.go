package proxy

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Property: with several contracts sharing ss(int) int, the proxy always
// dispatches to the default of the first contract listed.
func TestFirstSeenProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("first listed default wins", prop.ForAll(
		func(ks []int, n int, reflective bool, i int) bool {
			ks = ks[:n]
			contracts := make([]*meta.Type, len(ks))
			for j, k := range ks {
				contracts[j] = multiplier(t, fmt.Sprintf("D%d", j), k)
			}
			s := Compiled
			if reflective {
				s = Reflective
			}
			d, err := Make(nil, contracts, PolicyFuncs{}, WithStrategy(s))
			if err != nil {
				return false
			}
			inst, err := d.NewInstance()
			if err != nil {
				return false
			}
			got, err := inst.Invoke(meta.SignatureOf("ss", intT), i)
			return err == nil && got == i*ks[0]
		},
		gen.SliceOfN(4, gen.IntRange(1, 9)),
		gen.IntRange(1, 4),
		gen.Bool(),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}

// Property: a passthrough proxy returns exactly what the unproxied base
// returns.
func TestTransparencyProperty(t *testing.T) {
	base := meta.NewClass("Text").
		Method("Wrap", func(self meta.Object, s string, n int) (string, error) {
			return fmt.Sprintf("%s/%d", s, n), nil
		}).
		MustBuild()
	plain, err := meta.New(base)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Make(base, nil, PolicyFuncs{})
	if err != nil {
		t.Fatal(err)
	}
	proxied, err := d.NewInstance()
	if err != nil {
		t.Fatal(err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("passthrough equals direct call", prop.ForAll(
		func(s string, n int) bool {
			want, err1 := plain.Call("Wrap", s, n)
			got, err2 := proxied.Call("Wrap", s, n)
			return err1 == nil && err2 == nil && want == got
		},
		gen.AnyString(),
		gen.Int(),
	))

	properties.TestingRun(t)
}

// Property: the catalog never lists a signature twice.
func TestCatalogUniqueProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("signatures are unique", prop.ForAll(
		func(picks []int) bool {
			b := meta.NewContract("Random")
			declared := make(map[string]bool)
			for _, p := range picks {
				m := methodNames[p]
				if declared[m] {
					continue
				}
				declared[m] = true
				b.Declare(m, nil)
			}
			c, err := b.Build()
			if err != nil {
				return false
			}
			cands, err := Collect(nil, []*meta.Type{c, c})
			if err != nil {
				return false
			}
			seen := make(map[meta.Signature]bool)
			for _, cand := range cands {
				if seen[cand.Signature()] {
					return false
				}
				seen[cand.Signature()] = true
			}
			return len(cands) == 3+len(declared)-overlap(declared)
		},
		gen.SliceOf(gen.IntRange(0, len(methodNames)-1)),
	))

	properties.TestingRun(t)
}

var methodNames = []string{"Get", "Put", "String", "Hash", "Run", "Stop"}

// overlap counts the declared names that are also root methods with the
// same signature.
func overlap(declared map[string]bool) int {
	n := 0
	if declared["String"] {
		n++
	}
	if declared["Hash"] {
		n++
	}
	return n
}
