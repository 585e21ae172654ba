package shader

import (
	"strconv"
	"strings"
)

// typeLayout is the size and alignment of a host-shareable WGSL type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

var scalarLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},
}

// vectorShorthand maps the suffix of vec3f-style aliases to their component type.
var vectorShorthand = map[byte]string{'f': "f32", 'i': "i32", 'u': "u32", 'h': "f16"}

type structMember struct {
	name     string
	typeName string
	builtin  bool
}

type structDecl struct {
	name    string
	members []structMember
}

func structsOf(src string) map[string]structDecl {
	out := make(map[string]structDecl)
	for _, m := range structRegex.FindAllStringSubmatch(src, -1) {
		decl := structDecl{name: m[1]}
		for _, part := range splitTopLevel(m[2]) {
			part = strings.TrimSpace(part)
			mm := memberRegex.FindStringSubmatch(part)
			if mm == nil {
				continue
			}
			decl.members = append(decl.members, structMember{
				name:     mm[1],
				typeName: strings.TrimSpace(mm[2]),
				builtin:  strings.Contains(part, "@builtin("),
			})
		}
		out[decl.name] = decl
	}
	return out
}

// splitTopLevel splits a struct body at commas outside angle brackets, so array<T, N>
// stays one member.
func splitTopLevel(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

// layoutResolver computes type layouts on demand and memoizes struct layouts.
type layoutResolver struct {
	structs  map[string]structDecl
	resolved map[string]typeLayout
	visiting map[string]bool
}

func newLayoutResolver(structs map[string]structDecl) *layoutResolver {
	return &layoutResolver{
		structs:  structs,
		resolved: make(map[string]typeLayout),
		visiting: make(map[string]bool),
	}
}

// resolve returns the layout of typeName. A runtime-sized array counts as one element,
// which makes the result the minimum binding size of a buffer holding the type.
func (lr *layoutResolver) resolve(typeName string) (typeLayout, bool) {
	typeName = strings.Join(strings.Fields(typeName), "")

	if l, ok := scalarLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := lr.resolved[typeName]; ok {
		return l, true
	}

	base, param, generic := strings.Cut(typeName, "<")
	param = strings.TrimSuffix(param, ">")

	switch {
	case base == "atomic" && generic:
		return lr.resolve(param)
	case base == "array" && generic:
		return lr.array(param)
	case strings.HasPrefix(base, "vec") && len(base) >= 4:
		if l, ok := vectorLayout(base, param, generic); ok {
			return l, true
		}
	case strings.HasPrefix(base, "mat") && len(base) >= 6:
		if l, ok := matrixLayout(base, param, generic); ok {
			return l, true
		}
	}

	decl, ok := lr.structs[typeName]
	if !ok || lr.visiting[typeName] {
		return typeLayout{}, false
	}
	lr.visiting[typeName] = true
	defer delete(lr.visiting, typeName)

	l, ok := lr.structLayout(decl)
	if ok {
		lr.resolved[typeName] = l
	}
	return l, ok
}

func (lr *layoutResolver) array(param string) (typeLayout, bool) {
	elem, count := param, uint64(1)
	if parts := splitTopLevel(param); len(parts) == 2 {
		n, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		elem, count = parts[0], n
	}
	el, ok := lr.resolve(elem)
	if !ok {
		return typeLayout{}, false
	}
	return typeLayout{size: count * roundUp(el.align, el.size), align: el.align}, true
}

// vectorLayout handles vecN<T> and the vecNf/i/u/h aliases.
func vectorLayout(base, param string, generic bool) (typeLayout, bool) {
	n := uint64(base[3] - '0')
	if n < 2 || n > 4 {
		return typeLayout{}, false
	}
	if !generic {
		if len(base) != 5 {
			return typeLayout{}, false
		}
		param = vectorShorthand[base[4]]
	}
	comp, ok := scalarLayouts[param]
	if !ok {
		return typeLayout{}, false
	}
	align := comp.size * n
	if n == 3 {
		align = comp.size * 4
	}
	return typeLayout{size: comp.size * n, align: align}, true
}

// matrixLayout handles matCxR<T> and the matCxRf/h aliases: C columns of vecR.
func matrixLayout(base, param string, generic bool) (typeLayout, bool) {
	if base[4] != 'x' {
		return typeLayout{}, false
	}
	cols := uint64(base[3] - '0')
	column := "vec" + base[5:6]
	if !generic {
		if len(base) != 7 {
			return typeLayout{}, false
		}
		column += base[6:7]
	}
	col, ok := vectorLayout(column, param, generic)
	if !ok || cols < 2 || cols > 4 {
		return typeLayout{}, false
	}
	return typeLayout{size: cols * roundUp(col.align, col.size), align: col.align}, true
}

// structLayout places each member at the next offset aligned for it and rounds the total up
// to the largest member alignment. Builtin members are not part of a buffer layout.
func (lr *layoutResolver) structLayout(decl structDecl) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, m := range decl.members {
		if m.builtin {
			continue
		}
		l, ok := lr.resolve(m.typeName)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{size: roundUp(align, offset), align: align}, true
}

// roundUp rounds v up to a multiple of the power-of-two alignment a.
func roundUp(a, v uint64) uint64 {
	if a == 0 {
		return v
	}
	return (v + a - 1) &^ (a - 1)
}
