package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/creditrisk/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := `<?xml version="1.0" encoding="utf-8"?><comp><crdeal dlref="Кредит-1"/></comp>`
	r, err := encoding.NewUTF8Reader(strings.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_DeclaredWindows1251(t *testing.T) {
	utf8Doc := `<?xml version="1.0" encoding="windows-1251"?><comp><crdeal dlcelcred="Споживчий кредит"/></comp>`

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(utf8Doc))
	require.NoError(t, err)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(encoded))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, utf8Doc, string(got))
}

func TestNewUTF8Reader_DeclaredWindows1251AfterASCIIWindow(t *testing.T) {
	utf8Doc := `<?xml version="1.0" encoding="windows-1251"?><comp>` +
		strings.Repeat(`<crdeal dlref="D" dlamt="1"/>`, 200) +
		`<crdeal dlcelcred="Споживчий кредит"/></comp>`

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(utf8Doc))
	require.NoError(t, err)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(encoded))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, utf8Doc, string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("<comp/>")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<comp/>", string(got))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(strings.NewReader(""))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookup(t *testing.T) {
	enc, err := encoding.Lookup("UTF-8")
	require.NoError(t, err)
	assert.Nil(t, enc)

	enc, err = encoding.Lookup("windows-1251")
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1251, enc)

	_, err = encoding.Lookup("no-such-charset")
	assert.Error(t, err)
}

func TestPassthroughCharsetReader(t *testing.T) {
	in := strings.NewReader("data")

	out, err := encoding.PassthroughCharsetReader("windows-1251", in)
	require.NoError(t, err)
	assert.Same(t, in, out)

	_, err = encoding.PassthroughCharsetReader("bogus", in)
	assert.Error(t, err)
}
