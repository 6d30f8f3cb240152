package proxy

import (
	"slices"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Descriptor is the result of Make: a generated proxy type bound to its
// policy. It is immutable and safe for concurrent use.
type Descriptor struct {
	base      *meta.Type
	contracts []*meta.Type
	policy    Policy
	strategy  Strategy
	typ       *meta.Type
	methods   []*Candidate
	units     []*unit

	// reflective proxies only
	routes map[meta.Signature]route
}

// NewInstance creates an instance of the proxy type. Every instance has its
// own invokers.
func (d *Descriptor) NewInstance() (meta.Object, error) {
	if d.strategy == Reflective {
		return d.newReflective()
	}
	return d.newCompiled()
}

// ProxiedType returns the base class, meta.Root when none was given.
func (d *Descriptor) ProxiedType() *meta.Type { return d.base }

func (d *Descriptor) ContractTypes() []*meta.Type { return slices.Clone(d.contracts) }
func (d *Descriptor) Policy() Policy              { return d.policy }
func (d *Descriptor) GeneratedType() *meta.Type   { return d.typ }
func (d *Descriptor) Strategy() Strategy          { return d.strategy }

// Methods returns the intercepted candidates in catalog order.
func (d *Descriptor) Methods() []*Candidate { return slices.Clone(d.methods) }
