package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValid(t *testing.T) {
	text, replaced, err := Decode([]byte("plain café"))
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, "plain café", text)
}

func TestDecodeReplacesInvalidBytes(t *testing.T) {
	text, replaced, err := Decode([]byte("apple\xff\xfemango"))
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "apple��mango", text)
}

func TestHTMLExtract(t *testing.T) {
	doc := `<!DOCTYPE html>
<html><head><title>Fruit Notes</title>
<style>body { color: orange; }</style>
<script>var banana = 1;</script></head>
<body><!-- hidden comment --><h1>Apple</h1><p>Mango &amp; grape</p></body></html>`

	text, replaced, err := HTML{}.Extract([]byte(doc))
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Contains(t, text, "Fruit Notes")
	assert.Contains(t, text, "Apple")
	assert.Contains(t, text, "Mango & grape")
	assert.NotContains(t, text, "orange")
	assert.NotContains(t, text, "banana")
	assert.NotContains(t, text, "hidden")
}

func TestHTMLExtractInvalidBytes(t *testing.T) {
	text, replaced, err := HTML{}.Extract([]byte("<p>kiwi\x80lime</p>"))
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "kiwi�lime", strings.TrimSpace(text))
}

func TestHTMLExtractUnclosedTags(t *testing.T) {
	text, _, err := HTML{}.Extract([]byte("<div><p>lemon <b>melon"))
	require.NoError(t, err)
	assert.Equal(t, "lemon melon", text)
}

func TestTextExtract(t *testing.T) {
	text, replaced, err := Text{}.Extract([]byte("<p>kept as is</p>"))
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, "<p>kept as is</p>", text)
}

func TestNew(t *testing.T) {
	e, err := New("html")
	require.NoError(t, err)
	assert.IsType(t, HTML{}, e)

	e, err = New("text")
	require.NoError(t, err)
	assert.IsType(t, Text{}, e)

	_, err = New("pdf")
	require.Error(t, err)
}
