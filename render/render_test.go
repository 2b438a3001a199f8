package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	md, err := Markdown("<h2>Config</h2><p>Some <strong>bold</strong> text</p>", "")
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Config")
	assert.Contains(t, string(md), "**bold**")

	md, err = Markdown("   ", "")
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestMarkdownSelector(t *testing.T) {
	fragment := `<div class="intro lead">Intro</div><div id="main"><p>Main</p></div>`

	md, err := Markdown(fragment, "#main")
	require.NoError(t, err)
	assert.Equal(t, "Main", string(md))

	md, err = Markdown(fragment, ".lead")
	require.NoError(t, err)
	assert.Equal(t, "Intro", string(md))

	_, err = Markdown(fragment, ".lea")
	require.Error(t, err)
}

func TestAttributes(t *testing.T) {
	attributes := map[string]string{
		"Body":  "<p>Body text</p>",
		"Intro": "<p>Intro text</p>",
		"Empty": "",
	}
	md, err := Attributes(attributes, []string{"Intro", "Empty", "Missing", "Body"}, "")
	require.NoError(t, err)
	parts := strings.Split(string(md), "\n\n")
	assert.Equal(t, []string{"Intro text", "Body text"}, parts)
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Hello", Headline("<p>x</p><h2> Hello </h2>"))
	assert.Equal(t, "Page", Headline("<html><head><title>Page</title></head><body></body></html>"))
	assert.Empty(t, Headline("<p>none</p>"))
}
