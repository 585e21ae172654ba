// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations
// or injected struct source, and collects a declarations list that the frame pipeline
// uses to wire its GPU resources to bind groups.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources and their
//     resolved type names. Used by @oxy:include and @oxy:group.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations (e.g. "CameraUniform").
	Type string

	// Requires lists struct keys whose source must be emitted before this one.
	Requires []AnnotationArg
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group and provider annotations during a Process call.
	declarations []Annotation

	// included tracks struct keys already emitted during a Process call.
	included map[AnnotationArg]bool
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// replacing them with generated declarations or injected struct sources while collecting
// a declarations list for downstream resource wiring.
type PreProcessor interface {
	// Process replaces @oxy: annotations in source with their WGSL output. @oxy:include
	// annotations become the embedded struct source (dependencies first, each struct at
	// most once). @oxy:group annotations become @group/@binding declarations.
	// @oxy:provider annotations produce no WGSL but are recorded as declarations.
	//
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the most
	// recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the camera and scene struct types and
// the address space mappings registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:  {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgSphere:  {Source: scene.GPUSphereSource, Type: "Sphere"},
			AnnotationArgSpheres: {Source: scene.GPUSpheresBufferSource, Type: "SpheresBuffer", Requires: []AnnotationArg{AnnotationArgSphere}},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	p.included = make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			out, err = p.include(out, a.Args[0], i+1)
			if err != nil {
				return "", err
			}
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			var wgslType string
			if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
				inner = strings.TrimSuffix(inner, ">")
				wgslType = fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(inner)].Type)
			} else {
				wgslType = p.structRegistry[a.Args[2]].Type
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", a.Group, a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

// include appends the source for key to out, preceded by any struct it requires that has
// not been emitted yet.
func (p *preProcessor) include(out []string, key AnnotationArg, lineNum int) ([]string, error) {
	if p.included[key] {
		return out, nil
	}
	entry, ok := p.structRegistry[key]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown @oxy:include argument %q", lineNum, key)
	}
	p.included[key] = true
	for _, dep := range entry.Requires {
		var err error
		if out, err = p.include(out, dep, lineNum); err != nil {
			return nil, err
		}
	}
	return append(out, strings.TrimRight(entry.Source, "\n")), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// FindDeclaration returns the first declaration whose provider identity (for provider
// annotations) or struct type (for group annotations) equals key.
//
// Parameters:
//   - declarations: the declarations to search
//   - key: the provider identity or struct type key
//
// Returns:
//   - Annotation: the matching declaration
//   - bool: true when a declaration matched
func FindDeclaration(declarations []Annotation, key AnnotationArg) (Annotation, bool) {
	for _, d := range declarations {
		switch d.Type {
		case AnnotationTypeProvider:
			if len(d.Args) > 0 && d.Args[0] == key {
				return d, true
			}
		case AnnotationTypeBindingGroup:
			if len(d.Args) > 2 && d.Args[2] == key {
				return d, true
			}
		}
	}
	return Annotation{}, false
}
