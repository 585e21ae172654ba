// Annotations are single-line WGSL comments prefixed with @oxy:. They inject the engine's
// GPU struct definitions, generate @group/@binding declarations and name which engine
// resource each bind group belongs to.
package shader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. It produces no declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and records a declaration carrying the group, binding and struct type.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 1 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating WGSL. The binding itself stays hand-written directly below the
	// annotation. Used for textures and samplers, which have no registered struct.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@oxy:provider 0 0 render_target
	//   //@oxy:provider 0 1 presentation source_sampler
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group and Binding locate group and provider annotations. Both are zero for includes.
	Group, Binding int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset file.
const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgSphere identifies the Sphere record struct.
	// Source: engine/scene/assets/sphere.wgsl
	AnnotationArgSphere AnnotationArg = "sphere"

	// AnnotationArgSpheres identifies the SpheresBuffer struct (count header + runtime array of Sphere).
	// Including it also includes Sphere.
	// Source: engine/scene/assets/spheres.wgsl
	AnnotationArgSpheres AnnotationArg = "spheres"
)

// Address space arguments for @oxy:group annotations.
const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// Provider identity arguments. These name which frame-pipeline resource owns a bind group.
const (
	// AnnotationArgRenderTarget identifies the render target's storage texture group.
	AnnotationArgRenderTarget AnnotationArg = "render_target"

	// AnnotationArgSpheresProvider identifies the sphere storage buffer group. It shares its
	// key with AnnotationArgSpheres; the two live in different argument positions.
	AnnotationArgSpheresProvider AnnotationArg = "spheres"

	// AnnotationArgPresentation identifies the presenter's sampled render target group.
	AnnotationArgPresentation AnnotationArg = "presentation"
)

// Binding role arguments qualify individual bindings within a provider group.
const (
	// AnnotationArgSourceTexture identifies the sampled render target texture in the blit shader.
	AnnotationArgSourceTexture AnnotationArg = "source_texture"

	// AnnotationArgSourceSampler identifies the sampler paired with the source texture.
	AnnotationArgSourceSampler AnnotationArg = "source_sampler"
)

// argCheck validates one annotation argument and returns it typed.
type argCheck func(arg string) (AnnotationArg, error)

func oneOf(what string, valid ...AnnotationArg) argCheck {
	return func(arg string) (AnnotationArg, error) {
		if !slices.Contains(valid, AnnotationArg(arg)) {
			return "", fmt.Errorf("unknown %s %q", what, arg)
		}
		return AnnotationArg(arg), nil
	}
}

func anyName(arg string) (AnnotationArg, error) {
	return AnnotationArg(arg), nil
}

var (
	structType   = oneOf("struct type", AnnotationArgCamera, AnnotationArgSphere, AnnotationArgSpheres)
	addressSpace = oneOf("address space", annotationArgStorageTypeUniform, annotationArgStorageTypeRead, annotationArgStorageTypeReadWrite)
	providerID   = oneOf("provider identity", AnnotationArgRenderTarget, AnnotationArgCamera, AnnotationArgSpheresProvider, AnnotationArgPresentation)
	bindingRole  = oneOf("binding role", AnnotationArgSourceTexture, AnnotationArgSourceSampler)
)

// structOrArray accepts a struct type or array<struct type>.
func structOrArray(arg string) (AnnotationArg, error) {
	inner, ok := strings.CutPrefix(arg, "array<")
	if !ok {
		return structType(arg)
	}
	elem := strings.TrimSuffix(inner, ">")
	if _, err := structType(elem); err != nil {
		return "", fmt.Errorf("unknown array element type %q", elem)
	}
	return AnnotationArg(arg), nil
}

// annotationSyntax describes the arguments an annotation type takes after its optional
// <group> <binding> pair. The last `optional` checks may be omitted.
type annotationSyntax struct {
	usage    string
	slotted  bool
	args     []argCheck
	optional int
}

var annotationSyntaxes = map[AnnotationType]annotationSyntax{
	annotationTypeInclude: {
		usage: "include <struct_type>",
		args:  []argCheck{structType},
	},
	AnnotationTypeBindingGroup: {
		usage:   "group <group> <binding> <address_space> <var_name> <type>",
		slotted: true,
		args:    []argCheck{addressSpace, anyName, structOrArray},
	},
	AnnotationTypeProvider: {
		usage:    "provider <group> <binding> <provider_identity> [binding_role]",
		slotted:  true,
		args:     []argCheck{providerID, bindingRole},
		optional: 1,
	},
}

// parseAnnotation parses one line of WGSL source. Lines without the @oxy: prefix return
// nil and no error.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	a, err := parseAnnotationFields(strings.Fields(after))
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNum, err)
	}
	a.Line = lineNum
	return a, nil
}

func parseAnnotationFields(fields []string) (*Annotation, error) {
	if len(fields) == 0 {
		return nil, errors.New("empty @oxy annotation")
	}
	typ := AnnotationType(fields[0])
	syntax, ok := annotationSyntaxes[typ]
	if !ok {
		return nil, fmt.Errorf("unknown @oxy annotation type %q", fields[0])
	}

	a := &Annotation{Type: typ}
	rest := fields[1:]
	if syntax.slotted {
		if len(rest) < 2 {
			return nil, fmt.Errorf("@oxy:%s: usage %s", typ, syntax.usage)
		}
		var err error
		if a.Group, a.Binding, err = parseGroupBinding(rest[0], rest[1]); err != nil {
			return nil, err
		}
		rest = rest[2:]
	}

	if len(rest) < len(syntax.args)-syntax.optional || len(rest) > len(syntax.args) {
		return nil, fmt.Errorf("@oxy:%s: usage %s", typ, syntax.usage)
	}
	for i, arg := range rest {
		checked, err := syntax.args[i](arg)
		if err != nil {
			return nil, fmt.Errorf("@oxy:%s: %w", typ, err)
		}
		a.Args = append(a.Args, checked)
	}
	return a, nil
}

func parseGroupBinding(group, binding string) (int, int, error) {
	g, err := strconv.Atoi(group)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid group number %q", group)
	}
	b, err := strconv.Atoi(binding)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid binding number %q", binding)
	}
	if g < 0 || b < 0 {
		return 0, 0, errors.New("negative group or binding in @oxy annotation")
	}
	return g, b, nil
}
