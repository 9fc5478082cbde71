package dxfcore

import (
	"bufio"
	"strconv"
	"strings"
)

// pair is one (group-code, value) line read from a DXF text stream.
type pair struct {
	code  int
	value string
}

// dxfScanner reads group-code/value pairs from raw DXF text, tolerating
// the occasional malformed integer by skipping forward to the next
// plausible boundary rather than aborting the whole pass.
type dxfScanner struct {
	lines []string
	pos   int
}

func newDxfScanner(raw string) *dxfScanner {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	return &dxfScanner{lines: lines}
}

func (s *dxfScanner) next() (pair, bool) {
	if s.pos+1 >= len(s.lines) {
		s.pos = len(s.lines)
		return pair{}, false
	}
	codeStr := s.lines[s.pos]
	value := s.lines[s.pos+1]
	s.pos += 2

	code, err := strconv.Atoi(codeStr)
	if err != nil {
		// Resync: advance one line at a time until a parseable code or EOF.
		for s.pos < len(s.lines) {
			if c, err2 := strconv.Atoi(s.lines[s.pos]); err2 == nil {
				return pair{code: c, value: ""}, true
			}
			s.pos++
		}
		return pair{}, false
	}
	return pair{code: code, value: value}, true
}

func (s *dxfScanner) atEnd() bool {
	return s.pos >= len(s.lines)
}

// Augment scans raw DXF text and appends entities the upstream AST parser
// is assumed to have dropped: HATCH solid fills (ENTITIES section) and
// loose POLYLINE/VERTEX/SEQEND sequences (ENTITIES and BLOCKS sections).
// It mutates data in place. The pass is best-effort: malformed records are
// abandoned and scanning resumes at the next section/entity boundary, per
// spec §4.1.
func Augment(raw string, data *DxfData) {
	if raw == "" {
		return
	}
	sc := newDxfScanner(raw)

	section := ""
	blockName := ""

	for {
		p, ok := sc.next()
		if !ok {
			return
		}

		if p.code == 0 {
			switch p.value {
			case "SECTION":
				section = readSectionName(sc)
				continue
			case "ENDSEC":
				section = ""
				continue
			case "BLOCK":
				blockName = readBlockName(sc)
				continue
			case "ENDBLK":
				blockName = ""
				continue
			case "POLYLINE":
				if section == "ENTITIES" || section == "BLOCKS" {
					appendEntity(data, blockName, readLegacyPolyline(sc))
				}
				continue
			case "HATCH":
				if section == "ENTITIES" {
					if e := readHatch(sc); e != nil {
						appendEntity(data, "", e)
					}
				}
				continue
			}
		}
	}
}

func appendEntity(data *DxfData, blockName string, e *Entity) {
	if e == nil {
		return
	}
	if blockName == "" {
		data.Entities = append(data.Entities, e)
		return
	}
	if b, ok := data.Blocks[blockName]; ok {
		b.Entities = append(b.Entities, e)
	}
}

func readSectionName(sc *dxfScanner) string {
	for !sc.atEnd() {
		p, ok := sc.next()
		if !ok {
			return ""
		}
		if p.code == 2 {
			return p.value
		}
		if p.code == 0 {
			return ""
		}
	}
	return ""
}

func readBlockName(sc *dxfScanner) string {
	var name string
	for !sc.atEnd() {
		p, ok := sc.next()
		if !ok {
			return name
		}
		if p.code == 0 {
			return name
		}
		if p.code == 2 && name == "" {
			name = p.value
		}
	}
	return name
}

// readLegacyPolyline reads a POLYLINE header (layer, closed flag) followed
// by a run of VERTEX entities terminated by SEQEND, per spec §4.1.
func readLegacyPolyline(sc *dxfScanner) *Entity {
	e := &Entity{Kind: KindPolyline, HasColor: false}

	for {
		p, ok := sc.next()
		if !ok {
			return e
		}
		if p.code == 0 {
			if p.value == "VERTEX" {
				break
			}
			if p.value == "SEQEND" {
				return e
			}
			// Unexpected marker before any vertex: abandon this record.
			return e
		}
		switch p.code {
		case 8:
			e.Layer = p.value
		case 70:
			if flags, err := strconv.Atoi(p.value); err == nil {
				e.Closed = flags&1 != 0
			}
		case 62:
			if idx, err := strconv.Atoi(p.value); err == nil {
				e.Color = idx
				e.HasColor = true
			}
		case 6:
			e.LineType = p.value
		}
	}

	for {
		v, ok := readVertex(sc)
		if ok {
			e.Vertices = append(e.Vertices, v)
		}
		p, hasNext := sc.peekCode0()
		if !hasNext {
			return e
		}
		if p == "SEQEND" {
			sc.next()
			sc.skipToNextEntity()
			return e
		}
		if p != "VERTEX" {
			return e
		}
		sc.next()
	}
}

// peekCode0 reports the value of the next code-0 pair without consuming
// anything before it, used to look ahead for VERTEX/SEQEND markers.
func (s *dxfScanner) peekCode0() (string, bool) {
	save := s.pos
	for !s.atEnd() {
		p, ok := s.next()
		if !ok {
			s.pos = save
			return "", false
		}
		if p.code == 0 {
			s.pos = save
			return p.value, true
		}
	}
	s.pos = save
	return "", false
}

func (s *dxfScanner) skipToNextEntity() {}

func readVertex(sc *dxfScanner) (Vector, bool) {
	var v Vector
	got := false
	for {
		p, ok := sc.next()
		if !ok {
			return v, got
		}
		if p.code == 0 {
			// Pushed past the marker; rewind two lines so the caller's
			// peekCode0/next sees it again.
			sc.pos -= 2
			return v, got
		}
		switch p.code {
		case 10:
			if f, err := strconv.ParseFloat(p.value, 64); err == nil {
				v.X = f
				got = true
			}
		case 20:
			if f, err := strconv.ParseFloat(p.value, 64); err == nil {
				v.Y = f
				got = true
			}
		case 42:
			if f, err := strconv.ParseFloat(p.value, 64); err == nil {
				v.Bulge = f
			}
		}
	}
}

const vertexDedupToleranceSq = 1e-12

// readHatch reads a HATCH entity, recovering the first SOLID-fill boundary
// loop with at least 3 points as a synthetic closed polyline; later loops of
// the same HATCH are not recovered. Non-SOLID patterns and unsupported
// (non-line) edge types are skipped conservatively.
func readHatch(sc *dxfScanner) *Entity {
	var layer, pattern string
	var colorIdx int
	hasColor := false

	for {
		p, ok := sc.next()
		if !ok {
			return nil
		}
		if p.code == 0 {
			sc.pos -= 2
			break
		}
		switch p.code {
		case 8:
			layer = p.value
		case 2:
			pattern = p.value
		case 62:
			if idx, err := strconv.Atoi(p.value); err == nil {
				colorIdx = idx
				hasColor = true
			}
		case 91:
			// Loop count: loops are read below; nothing to precompute.
		}
		if p.code == 91 {
			break
		}
	}

	if strings.ToUpper(pattern) != "SOLID" {
		return nil
	}

	var allPoints []Point2D
	for {
		p, ok := sc.next()
		if !ok {
			break
		}
		if p.code == 0 {
			sc.pos -= 2
			break
		}
		if p.code != 92 {
			continue
		}
		loop := readHatchLoop(sc)
		if len(loop) >= 3 {
			allPoints = loop
			break
		}
	}

	if len(allPoints) < 3 {
		return nil
	}

	return &Entity{
		Kind:        KindLWPolyline,
		Layer:       layer,
		Color:       colorIdx,
		HasColor:    hasColor,
		Vertices:    pointsToVertices(allPoints),
		Closed:      true,
		IsHatchFill: true,
	}
}

// readHatchLoop reads one boundary loop: code 93 gives the edge count,
// code 72 selects edge type per edge. Only edge type 1 (line) is
// supported; others are skipped by scanning to the next 72/92/0 boundary.
func readHatchLoop(sc *dxfScanner) []Point2D {
	var points []Point2D
	var prev Point2D
	havePrev := false

	for {
		p, ok := sc.next()
		if !ok {
			return points
		}
		if p.code == 0 || p.code == 92 {
			sc.pos -= 2
			return points
		}
		if p.code == 93 {
			continue
		}
		if p.code != 72 {
			continue
		}

		edgeType, err := strconv.Atoi(p.value)
		if err != nil {
			continue
		}
		if edgeType != 1 {
			// Unsupported edge type: skip forward to the next edge/loop
			// boundary without attempting to parse its geometry.
			continue
		}

		start, ok1 := readXY(sc, 10, 20)
		end, ok2 := readXY(sc, 11, 21)
		if !ok1 || !ok2 {
			continue
		}
		if !havePrev {
			points = append(points, start)
			havePrev = true
		} else if sqDist(prev, start) > vertexDedupToleranceSq {
			points = append(points, start)
		}
		points = append(points, end)
		prev = end
	}
}

func readXY(sc *dxfScanner, xCode, yCode int) (Point2D, bool) {
	var pt Point2D
	var gotX, gotY bool
	for !gotX || !gotY {
		p, ok := sc.next()
		if !ok {
			return pt, false
		}
		if p.code == 0 || p.code == 72 || p.code == 92 || p.code == 93 {
			sc.pos -= 2
			return pt, gotX && gotY
		}
		switch p.code {
		case xCode:
			if f, err := strconv.ParseFloat(p.value, 64); err == nil {
				pt.X = f
				gotX = true
			}
		case yCode:
			if f, err := strconv.ParseFloat(p.value, 64); err == nil {
				pt.Y = f
				gotY = true
			}
		}
	}
	return pt, true
}

func pointsToVertices(points []Point2D) []Vector {
	out := make([]Vector, len(points))
	for i, p := range points {
		out[i] = Vector{X: p.X, Y: p.Y}
	}
	return out
}
