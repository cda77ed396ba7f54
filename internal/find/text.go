package find

import (
	"strings"

	"github.com/dshills/docsurface/internal/model"
)

// ObjectReplacement stands in for inline objects in flattened text.
const ObjectReplacement = '\uFFFC'

// RangeToText flattens a range into the string matchers run on. Text
// contributes its data, a soft break contributes "\n" and any other inline
// element contributes ObjectReplacement. For a flat range the rune length
// of the result equals the number of offsets the range spans, so rune
// offsets into the string map straight back to positions. A range that
// crosses element boundaries flattens each text block it touches and joins
// them with "\n".
func RangeToText(schema *model.Schema, r model.Range) string {
	if !r.IsFlat() {
		return blocksToText(schema, r)
	}
	var sb strings.Builder
	depth := 0
	for v := range r.All() {
		switch v.Type {
		case model.TextValue:
			if depth == 0 {
				sb.WriteString(v.Item.(model.TextProxy).Data)
			}
		case model.ElementStart:
			if depth == 0 {
				sb.WriteRune(flattenElement(schema, v.Element()))
			}
			depth++
		case model.ElementEnd:
			depth--
		}
	}
	return sb.String()
}

func blocksToText(schema *model.Schema, r model.Range) string {
	var sb strings.Builder
	var block *model.Element
	write := func(parent *model.Element, data string) {
		if block != nil && parent != block {
			sb.WriteByte('\n')
		}
		block = parent
		sb.WriteString(data)
	}

	// skip counts open inline elements whose content is already flattened.
	skip := 0
	for v := range r.All() {
		switch v.Type {
		case model.TextValue:
			if skip == 0 {
				tp := v.Item.(model.TextProxy)
				write(tp.Parent(), tp.Data)
			}
		case model.ElementStart:
			el := v.Element()
			if skip > 0 {
				skip++
				continue
			}
			if schema.IsInline(el) {
				write(el.Parent(), string(flattenElement(schema, el)))
				skip = 1
			}
		case model.ElementEnd:
			if skip > 0 {
				skip--
			}
		}
	}
	return sb.String()
}

func flattenElement(schema *model.Schema, el *model.Element) rune {
	if role, _ := schema.RoleOf(el); role == model.RoleSoftBreak {
		return '\n'
	}
	return ObjectReplacement
}

// ElementText flattens the whole content of el.
func ElementText(schema *model.Schema, el *model.Element) string {
	return RangeToText(schema, model.RangeIn(el))
}
