// Package pdfdoc parses PDF documents into the document model.
//
// PDF carries no semantic structure, so the parser rebuilds it from the
// positioned glyph stream:
//
//   - glyphs that share a font and baseline are merged into fragments
//     (see Config.CharGapRatio and Config.WordGapRatio)
//   - the layout package groups fragments into lines and paragraphs, finds
//     headings by font size, list items by their markers, and drops
//     running headers and footers
//   - the tables package replaces whitespace-aligned rows with a Table when
//     it is confident enough, scoring candidates against the ruling lines
//     drawn on each page
//   - image XObjects become Image nodes placed after their page's text
//
// Pages that fail to decode are logged and skipped. A document whose pages
// all fail is rejected as corrupt.
//
// # OCR
//
// With Config.OCR set and a binary built with the "ocr" tag, pages that
// have images but no text layer are run through Tesseract and the
// recognized text takes the place of the missing text layer.
package pdfdoc
