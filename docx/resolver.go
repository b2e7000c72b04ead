package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/docmark/model"
)

// ResolvedStyle contains the fully resolved properties for a style.
type ResolvedStyle struct {
	// Identity
	ID   string
	Name string
	Type string // paragraph, character, table

	// Heading info
	IsHeading    bool
	HeadingLevel int // 1-9, 0 if not a heading

	// IsCode marks preformatted paragraph styles
	IsCode bool

	// Numbering inherited from the style definition
	NumID    string
	NumLevel int

	// Run/character properties
	FontName  string
	FontSize  float64 // points
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Hidden    bool
}

// StyleResolver resolves styles with inheritance support. It caches
// resolutions and is therefore owned by a single parse.
type StyleResolver struct {
	styles      map[string]*styleDefXML
	resolved    map[string]*ResolvedStyle
	defaultFont string
	defaultSize float64
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:      make(map[string]*styleDefXML),
		resolved:    make(map[string]*ResolvedStyle),
		defaultFont: "Calibri", // Word default
		defaultSize: 11,        // Word default (11pt)
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
	}

	rpr := styles.DocDefaults.RPrDefault.RPr
	if rpr.Font.ASCII != "" {
		sr.defaultFont = rpr.Font.ASCII
	}
	if size := parseHalfPoints(rpr.FontSize.Val); size > 0 {
		sr.defaultSize = size
	}

	return sr
}

// DefaultFontSize returns the document default font size in points.
func (sr *StyleResolver) DefaultFontSize() float64 {
	return sr.defaultSize
}

// Resolve returns the fully resolved style for the given style ID.
// If the style doesn't exist, returns a default style.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if styleID == "" {
		return sr.defaultStyle()
	}

	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := sr.defaultStyle()
	resolved.ID = styleID

	styleDef, ok := sr.styles[styleID]
	if !ok {
		// Style not found - check for built-in style IDs
		resolved.IsHeading, resolved.HeadingLevel = detectBuiltInHeading(styleID)
		resolved.IsCode = isCodeStyleName(styleID)
		sr.resolved[styleID] = resolved
		return resolved
	}

	resolved.Name = styleDef.Name.Val
	resolved.Type = styleDef.Type

	// Apply properties from base to derived
	for _, sid := range sr.buildInheritanceChain(styleID) {
		if def, ok := sr.styles[sid]; ok {
			sr.applyStyleDef(resolved, def)
		}
	}

	resolved.IsHeading, resolved.HeadingLevel = sr.detectHeading(styleDef, resolved)
	resolved.IsCode = isCodeStyleName(styleDef.StyleID) || isCodeStyleName(styleDef.Name.Val) ||
		isMonospaceFont(resolved.FontName)

	sr.resolved[styleID] = resolved
	return resolved
}

// defaultStyle returns a style with default values.
func (sr *StyleResolver) defaultStyle() *ResolvedStyle {
	return &ResolvedStyle{
		FontName: sr.defaultFont,
		FontSize: sr.defaultSize,
	}
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend

		if def, ok := sr.styles[current]; ok {
			current = def.BasedOn.Val
		} else {
			break
		}
	}

	return chain
}

// applyStyleDef applies a style definition's properties to a resolved style.
func (sr *StyleResolver) applyStyleDef(resolved *ResolvedStyle, def *styleDefXML) {
	if def.PPr.NumPr.NumID.Val != "" {
		resolved.NumID = def.PPr.NumPr.NumID.Val
		resolved.NumLevel, _ = strconv.Atoi(def.PPr.NumPr.ILvl.Val)
	}
	applyRunProps(resolved, def.RPr)
}

// applyRunProps overlays direct or style run properties.
func applyRunProps(resolved *ResolvedStyle, rpr runPropsXML) {
	if rpr.Font.ASCII != "" {
		resolved.FontName = rpr.Font.ASCII
	}
	if size := parseHalfPoints(rpr.FontSize.Val); size > 0 {
		resolved.FontSize = size
	}
	if rpr.Bold.set() {
		resolved.Bold = rpr.Bold.on()
	}
	if rpr.Italic.set() {
		resolved.Italic = rpr.Italic.on()
	}
	if rpr.Strike.set() {
		resolved.Strike = rpr.Strike.on()
	}
	if rpr.DStrike.set() {
		resolved.Strike = resolved.Strike || rpr.DStrike.on()
	}
	if rpr.Vanish.set() {
		resolved.Hidden = rpr.Vanish.on()
	}
	if rpr.Underline.Val != "" {
		resolved.Underline = rpr.Underline.Val != "none"
	}
}

// detectHeading determines if a style represents a heading.
func (sr *StyleResolver) detectHeading(def *styleDefXML, resolved *ResolvedStyle) (bool, int) {
	if isHeading, level := detectBuiltInHeading(def.StyleID); isHeading {
		return true, level
	}

	// Check style name for heading patterns
	name := strings.ToLower(def.Name.Val)
	if name == "title" {
		return true, 1
	}
	if strings.HasPrefix(name, "heading") {
		for i := 1; i <= 9; i++ {
			if strings.Contains(name, strconv.Itoa(i)) {
				return true, i
			}
		}
		return true, 1
	}

	// Outline level, possibly inherited from a base style
	for _, sid := range sr.buildInheritanceChain(def.StyleID) {
		if d, ok := sr.styles[sid]; ok && d.PPr.OutlineLvl.Val != "" {
			if level := parseOutlineLevel(d.PPr.OutlineLvl.Val); level >= 0 {
				return true, level + 1 // OutlineLvl is 0-based
			}
		}
	}

	// Large, bold custom paragraph styles are headings in documents that
	// were not built from the built-in heading styles.
	if def.Type == "paragraph" && resolved.Bold && resolved.FontSize >= 14 {
		return true, estimateHeadingLevel(resolved.FontSize)
	}

	return false, 0
}

// detectBuiltInHeading checks for Word's built-in heading style IDs.
func detectBuiltInHeading(styleID string) (bool, int) {
	id := strings.ToLower(styleID)

	headingMap := map[string]int{
		"heading1": 1, "heading2": 2, "heading3": 3,
		"heading4": 4, "heading5": 5, "heading6": 6,
		"heading7": 7, "heading8": 8, "heading9": 9,
		"title": 1, "subtitle": 2,
	}

	if level, ok := headingMap[id]; ok {
		return true, level
	}

	return false, 0
}

// isCodeStyleName reports whether a style ID or name denotes preformatted
// text.
func isCodeStyleName(s string) bool {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "")) {
	case "code", "sourcecode", "htmlpreformatted", "htmlcode", "macrotext", "codeblock", "preformattedtext":
		return true
	}
	return false
}

func isMonospaceFont(name string) bool {
	switch strings.ToLower(name) {
	case "courier", "courier new", "consolas", "menlo", "monaco", "lucida console", "source code pro":
		return true
	}
	return false
}

// estimateHeadingLevel estimates heading level from font size.
func estimateHeadingLevel(fontSize float64) int {
	switch {
	case fontSize >= 24:
		return 1
	case fontSize >= 18:
		return 2
	default:
		return 3
	}
}

// parseOutlineLevel parses an outline level string; -1 means none.
func parseOutlineLevel(s string) int {
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 || level > 8 {
		return -1
	}
	return level
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 2
}

// ResolveRun resolves the style of a run: paragraph style, then character
// style, then direct formatting. Headings pass includeParagraph=false so the
// heading's own weight is not repeated as emphasis.
func (sr *StyleResolver) ResolveRun(paragraphStyle string, props runPropsXML, includeParagraph bool) (model.Style, bool) {
	resolved := sr.defaultStyle()
	if includeParagraph {
		base := sr.Resolve(paragraphStyle)
		resolved.Bold, resolved.Italic = base.Bold, base.Italic
		resolved.Underline, resolved.Strike = base.Underline, base.Strike
		resolved.Hidden = base.Hidden
	}
	if props.Style.Val != "" {
		for _, sid := range sr.buildInheritanceChain(props.Style.Val) {
			if def, ok := sr.styles[sid]; ok {
				applyRunProps(resolved, def.RPr)
			}
		}
	}
	applyRunProps(resolved, props)

	return model.Style{
		Bold:      resolved.Bold,
		Italic:    resolved.Italic,
		Underline: resolved.Underline,
		Strike:    resolved.Strike,
	}, resolved.Hidden
}
