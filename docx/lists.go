package docx

import (
	"strconv"

	"github.com/tsawler/docmark/model"
)

// ListType represents the type of list.
type ListType int

const (
	ListTypeUnordered ListType = iota // Bullet list
	ListTypeOrdered                   // Numbered list
)

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	nums         map[string]*numXML         // numId -> instance
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		nums:         make(map[string]*numXML),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}
	for i := range numbering.Nums {
		num := &numbering.Nums[i]
		nr.nums[num.NumID] = num
	}

	return nr
}

// ResolveLevel returns the list type and first number for a numId and
// level. Unknown numbering defaults to a bullet list starting at 1.
func (nr *NumberingResolver) ResolveLevel(numID string, level int) (listType ListType, startAt int) {
	listType = ListTypeUnordered
	startAt = 1

	num, ok := nr.nums[numID]
	if !ok {
		return
	}

	levelStr := strconv.Itoa(level)
	if abstractNum, ok := nr.abstractNums[num.AbstractNumID.Val]; ok {
		for _, lvl := range abstractNum.Levels {
			if lvl.ILvl != levelStr {
				continue
			}
			switch lvl.NumFmt.Val {
			case "bullet", "none", "":
				listType = ListTypeUnordered
			default:
				// decimal, lowerLetter, upperLetter, lowerRoman, upperRoman, ...
				listType = ListTypeOrdered
			}
			if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
				startAt = s
			}
			break
		}
	}

	for _, o := range num.Overrides {
		if o.ILvl == levelStr {
			if s, err := strconv.Atoi(o.StartOverride.Val); err == nil {
				startAt = s
			}
		}
	}

	return
}

// IsListParagraph returns true if the numbering ID denotes a list. numId 0
// explicitly removes numbering inherited from a style.
func IsListParagraph(numID string) bool {
	return numID != "" && numID != "0"
}

// ListParser groups consecutive numbered paragraphs into nested lists.
type ListParser struct {
	resolver  *NumberingResolver
	builder   model.ListBuilder
	lastNumID string
}

// NewListParser creates a new list parser.
func NewListParser(resolver *NumberingResolver) *ListParser {
	return &ListParser{
		resolver: resolver,
	}
}

// Add appends a list item. It returns a completed list when the item cannot
// continue the current one: a different top-level numbering instance or a
// change between bulleted and numbered at the top level.
func (lp *ListParser) Add(numID string, level int, content []model.Inline) *model.List {
	listType, startAt := lp.resolver.ResolveLevel(numID, level)
	ordered := listType == ListTypeOrdered

	var finished *model.List
	if lp.builder.Active() && level == 0 && numID != lp.lastNumID {
		finished = lp.builder.Finish()
	}
	fresh := !lp.builder.Active()
	if done := lp.builder.Add(level, ordered, content); done != nil {
		finished = done
		fresh = true
	}
	if fresh && ordered && level == 0 && startAt != 1 {
		lp.builder.SetStart(startAt)
	}
	if level == 0 || fresh {
		lp.lastNumID = numID
	}
	return finished
}

// Finish returns the list under construction, or nil.
func (lp *ListParser) Finish() *model.List {
	lp.lastNumID = ""
	return lp.builder.Finish()
}
