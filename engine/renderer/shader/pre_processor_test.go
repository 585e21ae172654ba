package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("let x = 1;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("  //@oxy:include camera", 3)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, annotationTypeInclude, a.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgCamera}, a.Args)
	assert.Equal(t, 3, a.Line)
	assert.Zero(t, a.Group)

	a, err = parseAnnotation("//@oxy:group 2 0 storage_read spheres spheres", 4)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, 2, a.Group)
	assert.Equal(t, 0, a.Binding)

	a, err = parseAnnotation("//@oxy:provider 0 1 presentation source_sampler", 5)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, []AnnotationArg{AnnotationArgPresentation, AnnotationArgSourceSampler}, a.Args)
}

func TestParseAnnotation_Errors(t *testing.T) {
	cases := map[string]string{
		"//@oxy:":                                       "empty @oxy annotation",
		"//@oxy:include light":                          "unknown struct type",
		"//@oxy:include":                                "usage include <struct_type>",
		"//@oxy:group x 0 storage_read spheres spheres": "invalid group number",
		"//@oxy:group 0 0 storage_push a camera":        "unknown address space",
		"//@oxy:group 0 0 storage_read a array<mesh>":   "unknown array element type",
		"//@oxy:provider 0 0 material":                  "unknown provider identity",
		"//@oxy:provider 0 0 render_target diffuse":     "unknown binding role",
		"//@oxy:provider -1 0 render_target":            "negative group or binding",
		"//@oxy:define FOO":                             "unknown @oxy annotation type",
		"//@oxy:provider 0":                             "usage provider",
		"//@oxy:group 1 0 storage_uniform camera":       "usage group",
	}
	for line, want := range cases {
		_, err := parseAnnotation(line, 7)
		require.Errorf(t, err, "line %q", line)
		assert.Containsf(t, err.Error(), want, "line %q", line)
		assert.Containsf(t, err.Error(), "line 7", "line %q", line)
	}
}

func TestPreProcessor_IncludesDependenciesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include spheres\n//@oxy:include sphere\nfn f() {}")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct Sphere {"))
	assert.Equal(t, 1, strings.Count(out, "struct SpheresBuffer {"))
	assert.Less(t, strings.Index(out, "struct Sphere {"), strings.Index(out, "struct SpheresBuffer {"))
	assert.Contains(t, out, strings.TrimRight(scene.GPUSphereSource, "\n"))
	assert.True(t, strings.HasSuffix(out, "fn f() {}"))
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessor_GroupAndProviderDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	src := strings.Join([]string{
		"//@oxy:provider 0 0 render_target",
		"@group(0) @binding(0) var output: texture_storage_2d<rgba8unorm, write>;",
		"//@oxy:group 1 0 storage_uniform camera camera",
		"//@oxy:group 2 0 storage_read spheres spheres",
		"//@oxy:group 3 0 storage_read_write records array<sphere>",
	}, "\n")
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Contains(t, out, "@group(1) @binding(0) var<uniform> camera: CameraUniform;")
	assert.Contains(t, out, "@group(2) @binding(0) var<storage, read> spheres: SpheresBuffer;")
	assert.Contains(t, out, "@group(3) @binding(0) var<storage, read_write> records: array<Sphere>;")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 4)
	assert.Equal(t, AnnotationTypeProvider, decls[0].Type)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[1].Type)

	d, ok := FindDeclaration(decls, AnnotationArgCamera)
	require.True(t, ok)
	assert.Equal(t, 1, d.Group)

	d, ok = FindDeclaration(decls, AnnotationArgRenderTarget)
	require.True(t, ok)
	assert.Equal(t, 0, d.Group)

	_, ok = FindDeclaration(decls, AnnotationArgPresentation)
	assert.False(t, ok)
}

func TestPreProcessor_ResetsBetweenCalls(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@oxy:group 1 0 storage_uniform camera camera")
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 1)

	out, err := pp.Process("//@oxy:include camera\n//@oxy:include camera")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform {"))
}

func TestPreProcessor_ErrorStopsProcessing(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("fn a() {}\n//@oxy:include nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
