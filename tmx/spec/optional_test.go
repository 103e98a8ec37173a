package spec_test

import (
	"encoding/xml"
	"testing"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	var o spec.Optional[int]
	require.False(t, o.IsSet())
	require.Equal(t, 9, o.Or(9))

	o.SetDefault(3)
	require.True(t, o.IsDefault())
	require.Equal(t, 3, o.Value())

	o.SetDefault(4)
	require.Equal(t, 3, o.Value())

	explicit := spec.Some(0)
	require.True(t, explicit.IsExplicit())
	require.Equal(t, explicit, o.Override(explicit))
	require.Equal(t, o, o.Override(spec.Optional[int]{}))
	require.False(t, o.Equal(spec.Some(3)))
}

func TestOptionalUnmarshal(t *testing.T) {
	var doc struct {
		A spec.Optional[float64]  `xml:"a,attr"`
		B spec.Optional[float64]  `xml:"b,attr"`
		G spec.Optional[spec.GID] `xml:"g,attr"`
		V spec.Optional[bool]     `xml:"v,attr"`
	}
	err := xml.Unmarshal([]byte(`<doc a="-1.5" g="3221225473" v="1"/>`), &doc)
	require.NoError(t, err)
	require.Equal(t, spec.Some(-1.5), doc.A)
	require.False(t, doc.B.IsSet())
	require.Equal(t, spec.Some(spec.FlipHorizontal|spec.FlipVertical|1), doc.G)
	require.Equal(t, spec.Some(true), doc.V)

	err = xml.Unmarshal([]byte(`<doc g="-1"/>`), &doc)
	require.ErrorContains(t, err, `attribute "g"`)
}
