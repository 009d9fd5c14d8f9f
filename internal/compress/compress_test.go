package compress

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = "product_id,quantity\n1,3\n2,1\n"

func TestRoundTrip(t *testing.T) {
	for _, k := range []Kind{Zip, Tar} {
		t.Run(string(k), func(t *testing.T) {
			var archive bytes.Buffer
			w, err := NewWriter(k, &archive, "cart.csv")
			require.NoError(t, err)
			_, err = io.WriteString(w, document)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(k, io.NopCloser(&archive))
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, document, string(got))
		})
	}
}

func TestZipReader_SkipsNonCSV(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	f, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, _ = f.Write([]byte("hello"))
	require.NoError(t, zw.Close())

	_, err = NewZipReader(io.NopCloser(&archive))
	assert.ErrorIs(t, err, ErrNoCSV)
}

func TestTarReader_Empty(t *testing.T) {
	var archive bytes.Buffer
	require.NoError(t, NewTarWriter(&archive, "notes.txt").Close())

	_, err := NewTarReader(io.NopCloser(&archive))
	assert.ErrorIs(t, err, ErrNoCSV)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, Tar, ParseKind("TAR"))
	assert.Equal(t, Zip, ParseKind("zip"))
	assert.Equal(t, Zip, ParseKind("rar"))
	assert.Equal(t, Zip, ParseKind(""))
	assert.Equal(t, "application/x-tar", Tar.ContentType())
}

func TestNewWriter_Unknown(t *testing.T) {
	_, err := NewWriter("rar", io.Discard, "cart.csv")
	assert.Error(t, err)
}
