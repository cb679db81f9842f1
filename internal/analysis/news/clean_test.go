package news

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "tags", input: "<p>Hello <b>world</b></p>", want: "Hello world"},
		{name: "entities", input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
		{name: "tags only", input: "<div> <br/> </div>", want: ""},
		{name: "escaped markup", input: "&lt;p&gt;Apple beats estimates&lt;/p&gt;", want: "Apple beats estimates"},
		{name: "escaped markup with entity", input: "&lt;b&gt;AT&amp;amp;T&lt;/b&gt; earnings", want: "AT&T earnings"},
		{name: "literal less-than", input: "P/E &lt; 20", want: "P/E < 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "https://example.com/a", want: "https://example.com/a"},
		{name: "case", input: "HTTPS://Example.COM/Path", want: "https://example.com/Path"},
		{name: "trailing slash", input: "https://example.com/a/", want: "https://example.com/a"},
		{name: "fragment", input: "https://example.com/a#section", want: "https://example.com/a"},
		{name: "utm", input: "https://example.com/a?utm_source=x&id=7&UTM_medium=y", want: "https://example.com/a?id=7"},
		{name: "query order", input: "https://example.com/a?b=2&a=1", want: "https://example.com/a?a=1&b=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := CanonicalURL("not a url")
	require.Error(t, err)
	_, err = CanonicalURL("")
	require.Error(t, err)
}
