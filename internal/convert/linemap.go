package convert

import "sort"

// Mapping ties a run of generated Ruby lines to the template line they came from
type Mapping struct {
	OutputLine int `json:"outputLine"`
	SourceLine int `json:"sourceLine"`
	Span       int `json:"span"`
}

// LineMapper records where each generated Ruby line came from in the template.
// The zero value is ready to use.
type LineMapper struct {
	mappings map[int]Mapping
}

// NewLineMapper creates an empty mapper
func NewLineMapper() *LineMapper {
	return &LineMapper{mappings: make(map[int]Mapping)}
}

// Record maps span generated lines starting at outputLine to sourceLine,
// replacing any previous entry for outputLine. Spans below 1 are treated as 1.
func (m *LineMapper) Record(outputLine, sourceLine, span int) {
	if m.mappings == nil {
		m.mappings = make(map[int]Mapping)
	}
	if span < 1 {
		span = 1
	}
	m.mappings[outputLine] = Mapping{
		OutputLine: outputLine,
		SourceLine: sourceLine,
		Span:       span,
	}
}

// Lookup returns the template line for a generated line. The entry with the
// greatest start line whose span covers line wins; lines covered by no entry
// have no mapping.
func (m *LineMapper) Lookup(line int) (int, bool) {
	best, found := 0, false
	for start, mapping := range m.mappings {
		if start <= line && line < start+mapping.Span && (!found || start > best) {
			best, found = start, true
		}
	}
	if !found {
		return 0, false
	}
	return m.mappings[best].SourceLine, true
}

// Len returns the number of recorded entries
func (m *LineMapper) Len() int {
	return len(m.mappings)
}

// Mappings returns all entries ordered by output line
func (m *LineMapper) Mappings() []Mapping {
	out := make([]Mapping, 0, len(m.mappings))
	for _, mapping := range m.mappings {
		out = append(out, mapping)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OutputLine < out[j].OutputLine
	})
	return out
}
