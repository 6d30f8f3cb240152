package meta

import "hash/fnv"

// rootFlag lets the root class be built without a superclass.
const rootFlag Flags = 1 << 15

// Root is the class every class extends. It declares public String, Hash
// and Equals, all based on instance identity.
var Root *Type

func init() {
	Root = newRoot()
}

func newRoot() *Type {
	b := NewClass("Root")
	b.t.flags |= rootFlag
	return b.
		Method("String", func(self Object) (string, error) {
			return self.Type().Name() + "@" + self.ID().String()[:8], nil
		}).
		Method("Hash", func(self Object) (uint32, error) {
			id := self.ID()
			h := fnv.New32a()
			h.Write(id[:])
			return h.Sum32(), nil
		}).
		Method("Equals", func(self Object, other any) (bool, error) {
			o, ok := other.(Object)
			return ok && o.ID() == self.ID(), nil
		}).
		MustBuild()
}
