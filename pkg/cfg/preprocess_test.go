package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "empty source",
			source: "",
			want:   []string{},
		},
		{
			name:   "only comments and directives",
			source: "#include <stdio.h>\n// hello\n/* block */\n\n   \n#define N 10",
			want:   []string{},
		},
		{
			name:   "line comment is stripped",
			source: "x = 1; // set x",
			want:   []string{"x = 1;"},
		},
		{
			name:   "block comment spanning lines",
			source: "a = 1; /* start\nstill comment\nend */ b = 2;\nc = 3;",
			want:   []string{"a = 1;", "b = 2;", "c = 3;"},
		},
		{
			name:   "several comments on one line",
			source: "a /* one */ = /* two */ 1; // three",
			want:   []string{"a  =  1;"},
		},
		{
			name:   "unterminated block comment swallows the rest",
			source: "a = 1;\n/* never closed\nb = 2;\nc = 3;",
			want:   []string{"a = 1;"},
		},
		{
			name:   "directive after indentation is dropped",
			source: "   #ifdef DEBUG\nx++;\n   #endif",
			want:   []string{"x++;"},
		},
		{
			name:   "whitespace is trimmed",
			source: "\t  int x = 1;   \r\n    return x;",
			want:   []string{"int x = 1;", "return x;"},
		},
		{
			name:   "line comment marker inside block comment",
			source: "/* // */ y = 2;",
			want:   []string{"y = 2;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.source))
		})
	}
}

func TestPreprocessNeverEmitsBlankOrDirective(t *testing.T) {
	source := "#include <x.h>\n\nint main() {\n  // c\n  /* d */\n  return 0;\n}\n"
	for _, stmt := range Preprocess(source) {
		assert.NotEmpty(t, stmt)
		assert.NotEqual(t, byte('#'), stmt[0])
	}
}
