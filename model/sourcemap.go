package model

// Location is a byte-range source position, supplied by the upstream
// surface syntax parser for diagnostic attribution. The engine never
// produces these itself; it only carries them through to diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
	Start  int // byte offset, half-open span
	End    int
}

// SourceMap associates task and resource qualified ids with the source
// location that declared them, allowing diagnostics to carry precise
// file/line/span information back to the caller's original text. An empty
// SourceMap is valid; diagnostics simply carry no Location in that case.
type SourceMap struct {
	Tasks     map[string]Location
	Resources map[string]Location
}

// NewSourceMap creates an empty SourceMap ready for population.
func NewSourceMap() *SourceMap {
	return &SourceMap{
		Tasks:     make(map[string]Location),
		Resources: make(map[string]Location),
	}
}

// TaskLocation returns the location recorded for a task id, if any.
func (s *SourceMap) TaskLocation(id string) (Location, bool) {
	if s == nil {
		return Location{}, false
	}
	loc, ok := s.Tasks[id]
	return loc, ok
}

// ResourceLocation returns the location recorded for a resource id, if any.
func (s *SourceMap) ResourceLocation(id string) (Location, bool) {
	if s == nil {
		return Location{}, false
	}
	loc, ok := s.Resources[id]
	return loc, ok
}
