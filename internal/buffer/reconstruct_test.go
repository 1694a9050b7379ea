package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/scan"
)

func mustLang(t *testing.T, name string) lang.Language {
	t.Helper()
	l, ok := lang.Lookup(name)
	require.True(t, ok)
	return l
}

func reconstruct(t *testing.T, doc, target string) (string, bool) {
	t.Helper()
	res := scan.Scan(strings.Split(doc, "\n"))
	return Reconstruct(res.Segments, mustLang(t, target))
}

func TestReconstruct_PythonBlock(t *testing.T) {
	doc := "Intro\n```python\nimport os\nx=1\n```\nMore"
	buf, ok := reconstruct(t, doc, "python")
	require.True(t, ok)
	assert.Equal(t, "# Intro\n#\nimport os\nx=1\n#\n# More", buf)
}

func TestReconstruct_NolintBlockIsCommented(t *testing.T) {
	doc := "Intro\n```python nolint\nimport os\nx=1\n```\nMore"
	buf, ok := reconstruct(t, doc, "python")
	assert.False(t, ok, "an exempt-only document has no applicable content")
	assert.Equal(t, "# Intro\n#\n# import os\n# x=1\n#\n# More", buf)
}

func TestReconstruct_OtherLanguageNotApplicable(t *testing.T) {
	doc := "Intro\n```python\nimport os\n```\nMore"
	buf, ok := reconstruct(t, doc, "cpp")
	assert.False(t, ok)
	assert.Equal(t, "// Intro\n//\n// import os\n//\n// More", buf)
}

func TestReconstruct_MixedLanguages(t *testing.T) {
	doc := "```python\nx=1\n```\n```cpp\nint y;\n```"
	buf, ok := reconstruct(t, doc, "cpp")
	require.True(t, ok)
	assert.Equal(t, "//\n// x=1\n//\n//\nint y;\n//", buf)
}

func TestReconstruct_TagAliasesMatch(t *testing.T) {
	buf, ok := reconstruct(t, "```py\nx=1\n```", "python")
	require.True(t, ok)
	assert.Equal(t, "#\nx=1\n#", buf)
}

func TestReconstruct_UntaggedBlockIsCommented(t *testing.T) {
	_, ok := reconstruct(t, "```\nx=1\n```", "python")
	assert.False(t, ok)
}

func TestReconstruct_EmptyProseLineBecomesBarePrefix(t *testing.T) {
	buf, ok := reconstruct(t, "a\n\nb\n```python\nx=1\n```", "python")
	require.True(t, ok)
	assert.Equal(t, "# a\n#\n# b\n#\nx=1\n#", buf)
}

func TestReconstruct_DedentedCodeIsVerbatim(t *testing.T) {
	doc := "- item\n  ```python\n  if x:\n      pass\n  ```"
	buf, ok := reconstruct(t, doc, "python")
	require.True(t, ok)
	assert.Equal(t, "# - item\n#\nif x:\n    pass\n#", buf)
}

// line_count(reconstruct(D, L)) == line_count(D) for every document and
// target language, applicable or not.
func TestReconstruct_PreservesLineCount(t *testing.T) {
	docs := []string{
		"Intro\n```python\nimport os\nx=1\n```\nMore",
		"```python nolint\nx=1\n```",
		"prose only",
		"",
		"a\n\n\nb",
		"```cpp\nint x;\n```\ntext\n~~~python\ny = 2\n~~~",
		"start\n```python\nnever closed\ntail",
		"- x\n  ```py\n  y\n  ```",
	}
	for _, doc := range docs {
		lines := strings.Split(doc, "\n")
		res := scan.Scan(lines)
		for _, target := range lang.Names() {
			buf, _ := Reconstruct(res.Segments, mustLang(t, target))
			assert.Len(t, strings.Split(buf, "\n"), len(lines),
				"doc %q target %s", doc, target)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		text     string
		lines    []string
		trailing bool
	}{
		{"a\nb", []string{"a", "b"}, false},
		{"a\nb\n", []string{"a", "b"}, true},
		{"", nil, false},
		{"\n", nil, true},
		{"single", []string{"single"}, false},
	}
	for _, tt := range tests {
		lines, trailing := SplitLines(tt.text)
		assert.Equal(t, tt.lines, lines, "text %q", tt.text)
		assert.Equal(t, tt.trailing, trailing, "text %q", tt.text)
	}
}
