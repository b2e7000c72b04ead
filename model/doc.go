// Package model provides the format-agnostic document tree that every parser
// produces and the Markdown renderer consumes.
//
// # Document Structure
//
// A [Document] holds [Metadata] and an ordered slice of top-level [Node]
// values:
//
//	doc := model.NewDocument()
//	doc.Metadata.Title = "Quarterly Report"
//	doc.Append(&model.Heading{Level: 1, Content: model.Texts("Quarterly Report")})
//
// # Nodes
//
// [Node] is a closed interface. The only implementations are:
//
//   - [Heading] - headings (levels 1-6)
//   - [Paragraph] - a run of inline content
//   - [Table] - rows of [Cell] values
//   - [Image] - an embedded raster image
//   - [List] - ordered or unordered lists, optionally nested
//   - [CodeBlock] - preformatted text
//   - [ThematicBreak] - a horizontal rule
//
// Inline content is likewise closed over [Text], [Bold], [Italic],
// [Underline], [Strike], [Link] and [InlineImage]. Code that must handle
// every variant switches on the concrete type and treats the default case
// as an invariant violation.
//
// # Errors
//
// Parsers report failures as [*ParseError] values carrying a
// [ParseErrorKind] of [CorruptInput], [UnsupportedFeature] or [Truncated].
//
// # Geometry
//
// [BBox] and [Point] support the positional heuristics used when
// reconstructing structure from PDF glyph streams.
package model
