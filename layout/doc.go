// Package layout recovers document structure from positioned PDF text.
//
// The input is a list of [Fragment] values per page: runs of text drawn in
// one font on one baseline. Detectors then build progressively larger
// structures:
//
//   - [ColumnDetector] splits multi-column pages at their gutters
//   - [LineDetector] groups fragments into text lines
//   - [ParagraphDetector] groups lines into paragraphs
//   - [HeadingDetector] marks paragraphs set in a larger or bold font
//   - [ListDetector] marks paragraphs that start with a bullet or number
//   - [HeaderFooterDetector] removes lines repeated at the top or bottom
//     of many pages
//
// Each detector has a Config with a DefaultXxxConfig constructor:
//
//	config := layout.DefaultParagraphConfig()
//	config.SpacingThreshold = 1.6
//	paragraphs := layout.NewParagraphDetectorWithConfig(config).Detect(lines)
//
// [Analyzer] chains the detectors over a whole document. Heading and list
// detection run once over every paragraph, since the body font size is a
// document-level property. A [Claimer] such as a table detector can take
// over runs of lines before paragraphs are formed.
//
// Coordinates are PDF user space: X grows to the right, Y grows upward.
package layout
