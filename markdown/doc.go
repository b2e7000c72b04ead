// Package markdown renders a parsed document as Markdown.
//
// Rendering is deterministic: the same document and [Options] always give
// byte-identical output. Block nodes are separated by one blank line,
// trailing whitespace is trimmed from every line, and non-empty output ends
// with a single newline.
//
// Images are embedded as base64 data URIs. Images whose longer edge exceeds
// Options.MaxImageSize are scaled down with a Catmull-Rom filter; smaller
// images are embedded unchanged.
//
// Tables render in one of three dialects, selected by [TableFormat]:
//
//	grid    +-----+-----+   pipe  | a   | b   |   simple  a    b
//	        | a   | b   |         | --- | --- |           ---  ---
//	        +=====+=====+         | 1   | 2   |           1    2
//	        | 1   | 2   |
//	        +-----+-----+
package markdown
