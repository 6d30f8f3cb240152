// Package protocontract turns protobuf service definitions into contracts.
//
// Every unary RPC of a service becomes an abstract contract method
//
//	Name(req *dynamic.Message) (*dynamic.Message, error)
//
// so a proxy of the contract can serve the service with a policy. Streaming
// RPCs have no call/return shape and are skipped.
package protocontract

import (
	"fmt"
	"reflect"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/funvibe/proxykit/pkg/meta"
)

// MessageType is the parameter and result type of RPC methods.
var MessageType = reflect.TypeOf((*dynamic.Message)(nil))

// Service is a protobuf service and its contract.
type Service struct {
	Desc     *desc.ServiceDescriptor
	Contract *meta.Type

	// Skipped lists the streaming RPCs left out of the contract.
	Skipped []string

	methods map[string]*desc.MethodDescriptor
}

// Parse parses .proto files from in-memory sources keyed by file name.
func Parse(sources map[string]string, files ...string) ([]*Service, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(sources),
	}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proto: %w", err)
	}
	return fromFiles(fds)
}

// Load parses .proto files from disk. Imports are resolved against
// importPaths; without import paths, the current directory is used.
func Load(importPaths []string, files ...string) ([]*Service, error) {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proto: %w", err)
	}
	return fromFiles(fds)
}

// FromFile builds contracts for the services of a compiled-in file
// descriptor, such as one registered by generated Go code.
func FromFile(fd protoreflect.FileDescriptor) ([]*Service, error) {
	wrapped, err := desc.WrapFile(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap %s: %w", fd.Path(), err)
	}
	return fromFiles([]*desc.FileDescriptor{wrapped})
}

func fromFiles(fds []*desc.FileDescriptor) ([]*Service, error) {
	var out []*Service
	for _, fd := range fds {
		for _, sd := range fd.GetServices() {
			s, err := NewService(sd)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// NewService builds the contract of sd. The contract is named after the
// fully qualified service name.
func NewService(sd *desc.ServiceDescriptor) (*Service, error) {
	s := &Service{Desc: sd, methods: make(map[string]*desc.MethodDescriptor)}
	b := meta.NewContract(sd.GetFullyQualifiedName())
	for _, md := range sd.GetMethods() {
		if md.IsClientStreaming() || md.IsServerStreaming() {
			s.Skipped = append(s.Skipped, md.GetName())
			continue
		}
		s.methods[md.GetName()] = md
		b.Declare(md.GetName(), MessageType, MessageType)
	}
	c, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", sd.GetFullyQualifiedName(), err)
	}
	s.Contract = c
	return s, nil
}

// Method returns the descriptor of a unary RPC, or nil.
func (s *Service) Method(name string) *desc.MethodDescriptor {
	return s.methods[name]
}

// Signature returns the contract signature of an RPC.
func (s *Service) Signature(name string) meta.Signature {
	return meta.SignatureOf(name, MessageType)
}

// NewRequest returns an empty request message for the RPC.
func (s *Service) NewRequest(name string) (*dynamic.Message, error) {
	md := s.methods[name]
	if md == nil {
		return nil, fmt.Errorf("service %s has no unary method %s", s.Desc.GetFullyQualifiedName(), name)
	}
	return dynamic.NewMessage(md.GetInputType()), nil
}

// NewResponse returns an empty response message for the RPC.
func (s *Service) NewResponse(name string) (*dynamic.Message, error) {
	md := s.methods[name]
	if md == nil {
		return nil, fmt.Errorf("service %s has no unary method %s", s.Desc.GetFullyQualifiedName(), name)
	}
	return dynamic.NewMessage(md.GetOutputType()), nil
}
