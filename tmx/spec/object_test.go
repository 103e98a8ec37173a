package spec_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func crateTemplate() spec.Object {
	return spec.Object{
		Name:   spec.Some("crate"),
		Type:   spec.Some("box"),
		Width:  spec.Some(32.0),
		Height: spec.Some(32.0),
		GID:    spec.Some(spec.GID(3)),
		Properties: spec.Properties{
			{Name: "hp", Type: "int", Value: "10"},
			{Name: "loot", Type: "string", Value: "coins"},
		},
	}
}

func TestMergeObjectIdempotent(t *testing.T) {
	template := crateTemplate()
	merged, err := spec.MergeObject(template, spec.Object{})
	require.NoError(t, err)
	if diff := cmp.Diff(template, merged); diff != "" {
		t.Errorf("merged object mismatch (-want+got):\n%v", diff)
	}
}

func TestMergeObjectOverrides(t *testing.T) {
	template := crateTemplate()
	instance := spec.Object{
		ID:       spec.Some(12),
		X:        spec.Some(64.0),
		Y:        spec.Some(0.0),
		Template: "crate.tx",
		Properties: spec.Properties{
			{Name: "hp", Type: "int", Value: "25"},
			{Name: "hp", Type: "string", Value: "lots"},
		},
	}
	merged, err := spec.MergeObject(template, instance)
	require.NoError(t, err)

	want := spec.Object{
		ID:       spec.Some(12),
		Name:     spec.Some("crate"),
		Type:     spec.Some("box"),
		X:        spec.Some(64.0),
		Y:        spec.Some(0.0),
		Width:    spec.Some(32.0),
		Height:   spec.Some(32.0),
		GID:      spec.Some(spec.GID(3)),
		Template: "crate.tx",
		Properties: spec.Properties{
			{Name: "hp", Type: "int", Value: "25"},
			{Name: "loot", Type: "string", Value: "coins"},
			{Name: "hp", Type: "string", Value: "lots"},
		},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged object mismatch (-want+got):\n%v", diff)
	}

	// The template is shared between instances and must stay untouched.
	if diff := cmp.Diff(crateTemplate(), template); diff != "" {
		t.Errorf("template modified (-want+got):\n%v", diff)
	}
}

func TestMergeObjectClassReplacesType(t *testing.T) {
	template := crateTemplate()
	merged, err := spec.MergeObject(template, spec.Object{Class: spec.Some("barrel")})
	require.NoError(t, err)
	require.Equal(t, "barrel", merged.TypeName())
	require.False(t, merged.Type.IsSet())

	merged, err = spec.MergeObject(spec.Object{Class: spec.Some("barrel")}, spec.Object{Type: spec.Some("box")})
	require.NoError(t, err)
	require.Equal(t, "box", merged.TypeName())
	require.False(t, merged.Class.IsSet())

	merged, err = spec.MergeObject(template, spec.Object{Name: spec.Some("other")})
	require.NoError(t, err)
	require.Equal(t, "box", merged.TypeName())
}

func TestMergeObjectShape(t *testing.T) {
	template := crateTemplate()
	template.Ellipse = &spec.Ellipse{}

	merged, err := spec.MergeObject(template, spec.Object{})
	require.NoError(t, err)
	require.Equal(t, spec.ShapeEllipse, merged.Shape())

	merged, err = spec.MergeObject(template, spec.Object{Polygon: &spec.Poly{Points: "0,0 1,1 1,0"}})
	require.NoError(t, err)
	require.Equal(t, spec.ShapePolygon, merged.Shape())
	require.Nil(t, merged.Ellipse)
}

func TestMergeObjectNestedTemplate(t *testing.T) {
	template := crateTemplate()
	template.Template = "other.tx"
	_, err := spec.MergeObject(template, spec.Object{Template: "crate.tx"})
	require.True(t, errors.Is(err, spec.ErrNestedTemplateUnsupported))
}

func TestApplyDefaultsAfterMerge(t *testing.T) {
	template := spec.Object{X: spec.Some(5.0), Visible: spec.Some(false)}
	merged, err := spec.MergeObject(template, spec.Object{Y: spec.Some(7.0)})
	require.NoError(t, err)
	merged.ApplyDefaults()

	// Explicit template values survive, absent ones take defaults.
	require.Equal(t, spec.Some(5.0), merged.X)
	require.Equal(t, spec.Some(7.0), merged.Y)
	require.Equal(t, spec.Some(false), merged.Visible)
	require.True(t, merged.Width.IsDefault())
	require.True(t, merged.ID.IsDefault())
	require.Equal(t, spec.GID(0), merged.GID.Value())

	plain := spec.Object{}
	plain.ApplyDefaults()
	require.True(t, plain.Visible.Value())
	require.True(t, plain.Visible.IsDefault())
}

func TestMergeProperties(t *testing.T) {
	template := spec.Properties{{Name: "a", Type: "string", Value: "1"}}
	require.Equal(t, template, spec.MergeProperties(template, nil))
	require.Nil(t, spec.MergeProperties(nil, nil))

	merged := spec.MergeProperties(template, spec.Properties{{Name: "b", Type: "bool", Value: "true"}})
	require.Equal(t, spec.Properties{
		{Name: "a", Type: "string", Value: "1"},
		{Name: "b", Type: "bool", Value: "true"},
	}, merged)
	require.Len(t, template, 1)
}
