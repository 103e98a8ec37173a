package spec_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataCSV(t *testing.T) {
	gids, err := spec.DecodeData(spec.EncodingCSV, spec.CompressionNone, "\n1,2,0,\n2147483652,5,6\n", nil, 3, 2)
	require.NoError(t, err)
	want := []spec.GID{1, 2, 0, spec.FlipHorizontal | 4, 5, 6}
	if diff := cmp.Diff(want, gids); diff != "" {
		t.Errorf("gids mismatch (-want+got):\n%v", diff)
	}
}

func TestDecodeDataTiles(t *testing.T) {
	tiles := []spec.DataTile{{GID: 3}, {}, {GID: 7}, {GID: 1}}
	gids, err := spec.DecodeData(spec.EncodingNone, spec.CompressionNone, "", tiles, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []spec.GID{3, 0, 7, 1}, gids)

	_, err = spec.DecodeData(spec.EncodingNone, spec.CompressionNone, "", tiles[:3], 2, 2)
	require.True(t, errors.Is(err, spec.ErrTileCount))
}

func TestDataRoundTrip(t *testing.T) {
	width, height := 5, 3
	gids := make([]spec.GID, width*height)
	for i := range gids {
		gids[i] = spec.GID(i * 7)
	}
	gids[4] |= spec.FlipDiagonal | spec.FlipVertical

	formatCases := []struct {
		Name        string
		Encoding    spec.Encoding
		Compression spec.Compression
	}{
		{Name: "CSV", Encoding: spec.EncodingCSV, Compression: spec.CompressionNone},
		{Name: "Base64", Encoding: spec.EncodingBase64, Compression: spec.CompressionNone},
		{Name: "Base64Zlib", Encoding: spec.EncodingBase64, Compression: spec.CompressionZlib},
		{Name: "Base64Gzip", Encoding: spec.EncodingBase64, Compression: spec.CompressionGzip},
		{Name: "Base64Zstd", Encoding: spec.EncodingBase64, Compression: spec.CompressionZstd},
	}
	for _, fc := range formatCases {
		t.Run(fc.Name, func(t *testing.T) {
			text, err := spec.EncodeData(fc.Encoding, fc.Compression, gids, width)
			require.NoError(t, err)
			decoded, err := spec.DecodeData(fc.Encoding, fc.Compression, text, nil, width, height)
			require.NoError(t, err)
			if diff := cmp.Diff(gids, decoded); diff != "" {
				t.Errorf("gids mismatch (-want+got):\n%v", diff)
			}
		})
	}
}

func TestDecodeDataBase64Whitespace(t *testing.T) {
	text, err := spec.EncodeData(spec.EncodingBase64, spec.CompressionGzip, []spec.GID{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	wrapped := "\n   " + text[:8] + "\n   " + text[8:] + "\n  "
	gids, err := spec.DecodeData(spec.EncodingBase64, spec.CompressionGzip, wrapped, nil, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []spec.GID{1, 2, 3, 4}, gids)
}

func TestDecodeDataErrors(t *testing.T) {
	valid, err := spec.EncodeData(spec.EncodingBase64, spec.CompressionNone, []spec.GID{1, 2, 3, 4}, 2)
	require.NoError(t, err)

	testCases := []struct {
		Name        string
		Encoding    spec.Encoding
		Compression spec.Compression
		Text        string
		Stage       error
	}{
		{Name: "CSVShort", Encoding: spec.EncodingCSV, Text: "1,2,3", Stage: spec.ErrTileCount},
		{Name: "CSVLong", Encoding: spec.EncodingCSV, Text: "1,2,3,4,5", Stage: spec.ErrTileCount},
		{Name: "CSVToken", Encoding: spec.EncodingCSV, Text: "1,x,3,4", Stage: spec.ErrCSVToken},
		{Name: "CSVNegative", Encoding: spec.EncodingCSV, Text: "1,-2,3,4", Stage: spec.ErrCSVToken},
		{Name: "Base64", Encoding: spec.EncodingBase64, Compression: spec.CompressionNone, Text: "!!!", Stage: spec.ErrBase64},
		{Name: "Decompress", Encoding: spec.EncodingBase64, Compression: spec.CompressionZlib, Text: valid, Stage: spec.ErrDecompress},
		{Name: "Base64Length", Encoding: spec.EncodingBase64, Compression: spec.CompressionNone, Text: "AQAAAA==", Stage: spec.ErrTileCount},
		{Name: "Encoding", Encoding: spec.EncodingUnknown, Text: "", Stage: spec.ErrEncoding},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := spec.DecodeData(tc.Encoding, tc.Compression, tc.Text, nil, 2, 2)
			require.Truef(t, errors.Is(err, spec.ErrLayerDecodeFailed), "unexpected error: %v", err)
			require.Truef(t, errors.Is(err, tc.Stage), "unexpected error: %v", err)
		})
	}
}

func TestDataFormat(t *testing.T) {
	testCases := []struct {
		Data        spec.Data
		Encoding    spec.Encoding
		Compression spec.Compression
		Err         error
	}{
		{Data: spec.Data{}, Encoding: spec.EncodingNone, Compression: spec.CompressionNone},
		{Data: spec.Data{Encoding: "csv", Compression: "zlib"}, Encoding: spec.EncodingCSV, Compression: spec.CompressionNone},
		{Data: spec.Data{Encoding: "base64"}, Encoding: spec.EncodingBase64, Compression: spec.CompressionNone},
		{Data: spec.Data{Encoding: "base64", Compression: "zstd"}, Encoding: spec.EncodingBase64, Compression: spec.CompressionZstd},
		{Data: spec.Data{Encoding: "base64", Compression: "lz4"}, Err: spec.ErrCompression},
		{Data: spec.Data{Encoding: "hex"}, Err: spec.ErrEncoding},
	}
	for _, tc := range testCases {
		encoding, compression, err := tc.Data.Format()
		if tc.Err != nil {
			require.True(t, errors.Is(err, tc.Err))
			require.True(t, errors.Is(err, spec.ErrLayerDecodeFailed))
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.Encoding, encoding)
		require.Equal(t, tc.Compression, compression)
	}
}
