package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	entryPointRegex = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
		ShaderTypeCompute:  regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`),
	}

	stageVisibility = map[ShaderType]wgpu.ShaderStage{
		ShaderTypeVertex:   wgpu.ShaderStageVertex,
		ShaderTypeFragment: wgpu.ShaderStageFragment,
		ShaderTypeCompute:  wgpu.ShaderStageCompute,
	}

	// @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?(?:,\s*(\d+)\s*)?,?\s*\)`)

	// @group(G) @binding(B) var<space> name: type;  The <space> part is absent for handle types.
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
)

// reflection is what the pipeline layer needs to know about one stage of a WGSL module.
type reflection struct {
	entryPoint    string
	workgroupSize [3]uint32
	layouts       map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
}

// resource is one @group/@binding declaration.
type resource struct {
	group, binding int
	space          string
	name           string
	typeName       string
}

// reflectStage reads the entry point, the workgroup size (compute only) and the bind group
// layouts of stage from pre-processed WGSL. Every layout entry is visible to stage only.
func reflectStage(source string, stage ShaderType) reflection {
	src := stripComments(source)

	var r reflection
	if re, ok := entryPointRegex[stage]; ok {
		if m := re.FindStringSubmatch(src); m != nil {
			r.entryPoint = m[1]
		}
	}
	if stage == ShaderTypeCompute {
		r.workgroupSize = workgroupSizeOf(src)
	}

	types := newLayoutResolver(structsOf(src))
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	r.varNames = make(map[int]map[int]string)
	for _, res := range resourcesOf(src) {
		entry := res.layoutEntry(stageVisibility[stage])
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := types.resolve(res.typeName); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[res.group] = append(entries[res.group], entry)

		if r.varNames[res.group] == nil {
			r.varNames[res.group] = make(map[int]string)
		}
		r.varNames[res.group][res.binding] = res.name
	}

	r.layouts = make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, es := range entries {
		sort.Slice(es, func(i, j int) bool { return es[i].Binding < es[j].Binding })
		r.layouts[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return r
}

// workgroupSizeOf returns the @workgroup_size of the first compute entry point. Omitted
// dimensions are 1, as is every dimension when there is no attribute.
func workgroupSizeOf(src string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(src)
	if m == nil {
		return size
	}
	for i, dim := range m[1:] {
		if dim == "" {
			continue
		}
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

func resourcesOf(src string) []resource {
	matches := resourceRegex.FindAllStringSubmatch(src, -1)
	out := make([]resource, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		out = append(out, resource{
			group:    group,
			binding:  binding,
			space:    strings.Join(strings.Fields(m[3]), ""),
			name:     m[4],
			typeName: strings.TrimSpace(m[5]),
		})
	}
	return out
}

// layoutEntry classifies the resource by address space, then by handle type.
func (r resource) layoutEntry(visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(r.binding),
		Visibility: visibility,
	}

	switch {
	case r.space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry
	case r.space == "storage,read_write":
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		return entry
	case strings.HasPrefix(r.space, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		return entry
	}

	base, params, _ := strings.Cut(r.typeName, "<")
	params = strings.TrimSuffix(strings.TrimSpace(params), ">")
	switch {
	case base == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case base == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_storage_"):
		format, access, _ := strings.Cut(params, ",")
		entry.StorageTexture.ViewDimension = viewDimension(strings.TrimPrefix(base, "texture_storage_"))
		entry.StorageTexture.Format = texelFormats[strings.TrimSpace(format)]
		entry.StorageTexture.Access = storageAccess[strings.TrimSpace(access)]
	case strings.HasPrefix(base, "texture_depth_"):
		dim := strings.TrimPrefix(base, "texture_depth_")
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.Multisampled = strings.HasPrefix(dim, "multisampled_")
		entry.Texture.ViewDimension = viewDimension(strings.TrimPrefix(dim, "multisampled_"))
	case strings.HasPrefix(base, "texture_"):
		dim := strings.TrimPrefix(base, "texture_")
		entry.Texture.SampleType = sampleTypes[params]
		entry.Texture.Multisampled = strings.HasPrefix(dim, "multisampled_")
		entry.Texture.ViewDimension = viewDimension(strings.TrimPrefix(dim, "multisampled_"))
	}
	return entry
}

func viewDimension(suffix string) wgpu.TextureViewDimension {
	switch suffix {
	case "1d":
		return wgpu.TextureViewDimension1D
	case "2d":
		return wgpu.TextureViewDimension2D
	case "2d_array":
		return wgpu.TextureViewDimension2DArray
	case "3d":
		return wgpu.TextureViewDimension3D
	case "cube":
		return wgpu.TextureViewDimensionCube
	case "cube_array":
		return wgpu.TextureViewDimensionCubeArray
	default:
		return wgpu.TextureViewDimensionUndefined
	}
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var storageAccess = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// texelFormats lists the storage texel formats the renderer can allocate or reject by name.
var texelFormats = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"r32float":    wgpu.TextureFormatR32Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
}

// stripComments removes line comments and (nested) block comments in one pass.
// Newlines are kept so byte positions past a comment still fall on the same line.
func stripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(src[i:], "*/"):
			depth--
			i++
		case depth > 0:
			if src[i] == '\n' {
				sb.WriteByte('\n')
			}
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		default:
			sb.WriteByte(src[i])
		}
	}
	return sb.String()
}
