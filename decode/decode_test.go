package decode_test

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivista/archivist/decode"
	"github.com/archivista/archivist/internal/mylog"
)

func newDecoder() *decode.Decoder {
	return decode.NewDecoder(mylog.NewLogger("error", "default"))
}

func TestDecode_PlainText(t *testing.T) {
	d := newDecoder()

	text, err := d.Decode("notes.txt", []byte("hello from a plain file"))
	require.NoError(t, err)
	assert.Equal(t, "hello from a plain file", text)
}

func TestDecode_StripsControlCharacters(t *testing.T) {
	d := newDecoder()

	text, err := d.Decode("weird.log", []byte("ok\x00\x01 line"))
	require.NoError(t, err)
	assert.Equal(t, "ok line", text)
}

func TestDecode_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	d := decode.NewDecoder(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := d.Decode("binary.bin", []byte{0xde, 0xad})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "no decoder for extension", "the skip is logged, not silent")
	assert.False(t, d.Supported("binary.bin"))
	assert.True(t, d.Supported("page.html"))
	assert.True(t, d.Supported("doc.pdf"))
}

func TestDecode_HTML(t *testing.T) {
	d := newDecoder()

	html := `<html><head><script>var hidden = 1;</script><style>p{}</style></head>
		<body><h1>Title</h1><p>Visible paragraph.</p></body></html>`
	text, err := d.Decode("page.html", []byte(html))
	require.NoError(t, err)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Visible paragraph.")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "p{}")
}

func TestDecode_JSON(t *testing.T) {
	d := newDecoder()

	text, err := d.Decode("data.json", []byte(`{"name":"archivist","tags":["kb"]}`))
	require.NoError(t, err)
	assert.Contains(t, text, `"name": "archivist"`)

	_, err = d.Decode("broken.json", []byte("{nope"))
	assert.Error(t, err)
}

func TestDecode_ImageCaption(t *testing.T) {
	d := newDecoder()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 8))))

	text, err := d.Decode("pic.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Image file, format png, dimensions 12x8 pixels.", text)
}

func TestDecode_DOCX(t *testing.T) {
	d := newDecoder()

	doc := `<?xml version="1.0"?>
		<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
			<w:body>
				<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
				<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
			</w:body>
		</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := d.Decode("report.docx", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
}

func TestDecode_Feed(t *testing.T) {
	d := newDecoder()

	rss := `<?xml version="1.0"?>
		<rss version="2.0"><channel>
			<title>Example Feed</title>
			<description>Feed about examples</description>
			<item><title>Entry one</title><description>Body one</description></item>
		</channel></rss>`

	text, err := d.Decode("feed.rss", []byte(rss))
	require.NoError(t, err)
	assert.Contains(t, text, "Example Feed")
	assert.Contains(t, text, "Entry one")
	assert.Contains(t, text, "Body one")
}
