package dfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexClassifier(t *testing.T) {
	tests := []struct {
		stmt    string
		want    string
		defines bool
	}{
		{stmt: "int x = 1;", want: "x", defines: true},
		{stmt: "float rate = 0.5;", want: "rate", defines: true},
		{stmt: "int a = 1, b = 2;", want: "a", defines: true},
		{stmt: "for (int i = 0; i < n; i++) {", want: "i", defines: true},
		{stmt: "int *p = NULL;"},
		{stmt: "void *p = 0;"},
		{stmt: "double result = 0.0;", want: "result", defines: true},
		{stmt: "char c = 'a';", want: "c", defines: true},
		{stmt: "int x;"},
		{stmt: "x = y + 1;", want: "x", defines: true},
		{stmt: "interest = 5;"},
		{stmt: "sum = sum + points[i];"},
		{stmt: `printf("%d", count++);`},
		{stmt: "for (i = 0; i < n; i++)", want: "i", defines: true},
		{stmt: "count++;", want: "count", defines: true},
		{stmt: "n--;", want: "n", defines: true},
		{stmt: "++k;", want: "k", defines: true},
		{stmt: "--n;", want: "n", defines: true},
		{stmt: "total += x;", want: "total", defines: true},
		{stmt: "total -= x;", want: "total", defines: true},
		{stmt: "product *= 2;", want: "product", defines: true},
		{stmt: "avg /= count;", want: "avg", defines: true},
		{stmt: "a = (b == c);", want: "a", defines: true},
		{stmt: "if (x == 1) {"},
		{stmt: "if (a == b) c = 1;"},
		{stmt: `printf("%d\n", x);`},
		{stmt: "return x;"},
		{stmt: "arr[i] = 5;"},
		{stmt: "}"},
	}

	c := RegexClassifier{}
	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			got, ok := c.AssignedVariable(tt.stmt)
			assert.Equal(t, tt.defines, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreeSitterClassifier(t *testing.T) {
	tests := []struct {
		stmt    string
		want    string
		defines bool
	}{
		{stmt: "int x = 1;", want: "x", defines: true},
		{stmt: "int *p = NULL;", want: "p", defines: true},
		{stmt: "long big = 10;", want: "big", defines: true},
		{stmt: "x = y + 1;", want: "x", defines: true},
		{stmt: "count++;", want: "count", defines: true},
		{stmt: "--n;", want: "n", defines: true},
		{stmt: "total += x;", want: "total", defines: true},
		{stmt: "for (int i = 0; i < n; i++) sum += i;", want: "i", defines: true},
		{stmt: "if (a == b) c = 1;", want: "c", defines: true},
		{stmt: "int x;"},
		{stmt: `printf("%d", x);`},
		{stmt: "arr[i] = 5;"},
		{stmt: "return x;"},
	}

	c := NewTreeSitterClassifier()
	defer c.Close()

	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			got, ok := c.AssignedVariable(tt.stmt)
			assert.Equal(t, tt.defines, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreeSitterClassifierAfterClose(t *testing.T) {
	c := NewTreeSitterClassifier()
	c.Close()
	c.Close()

	_, ok := c.AssignedVariable("x = 1;")
	assert.False(t, ok)
}

func TestParseClassifierKind(t *testing.T) {
	kind, err := ParseClassifierKind("")
	require.NoError(t, err)
	assert.Equal(t, ClassifierRegex, kind)

	kind, err = ParseClassifierKind("Tree-Sitter")
	require.NoError(t, err)
	assert.Equal(t, ClassifierTreeSitter, kind)

	_, err = ParseClassifierKind("llm")
	assert.Error(t, err)

	assert.IsType(t, RegexClassifier{}, NewClassifier(ClassifierRegex))
	assert.IsType(t, &TreeSitterClassifier{}, NewClassifier(ClassifierTreeSitter))
}
