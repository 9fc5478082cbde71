package dxfparse

import (
	"errors"
	"io"
	"strconv"

	"github.com/corvid-cad/dxfimport/dxfcore"
)

// ErrUnexpectedEOF reports a stream that ends mid-section. [Parse] does not
// return it: a stream that ends early yields whatever was read before the
// end, with a nil error.
var ErrUnexpectedEOF = errors.New("dxfparse: unexpected end of stream")

// Parse reads an ASCII DXF stream and builds a [dxfcore.DxfData]. It is
// intentionally permissive: entities with fields it doesn't recognize are
// still emitted with whatever it could read, leaving load-bearing
// validation to [dxfcore.Import] and its augmenter/processor stages.
func Parse(r io.Reader) (*dxfcore.DxfData, error) {
	p := &parser{
		reader: NewReader(r, ""),
		data: &dxfcore.DxfData{
			Layers:    map[string]*dxfcore.LayerDef{},
			Linetypes: map[string]*dxfcore.LinetypeDef{},
			Styles:    map[string]*dxfcore.StyleDef{},
			Blocks:    map[string]*dxfcore.Block{},
		},
	}
	return p.parse()
}

type parser struct {
	reader  *Reader
	data    *dxfcore.DxfData
	current Pair
	have    bool
}

func (p *parser) next() (Pair, bool) {
	if p.have {
		p.have = false
		return p.current, true
	}
	pr, err := p.reader.Next()
	if err != nil {
		return Pair{}, false
	}
	return pr, true
}

func (p *parser) pushback(pr Pair) {
	p.current = pr
	p.have = true
}

func (p *parser) parse() (*dxfcore.DxfData, error) {
	for {
		pr, ok := p.next()
		if !ok {
			return p.data, nil
		}
		if pr.Code != 0 || pr.Value != "SECTION" {
			continue
		}

		name, ok := p.next()
		if !ok || name.Code != 2 {
			continue
		}

		switch name.Value {
		case "HEADER":
			p.parseHeader()
		case "TABLES":
			p.parseTables()
		case "BLOCKS":
			p.parseBlocks()
		case "ENTITIES":
			entities := p.parseEntities("")
			p.data.Entities = append(p.data.Entities, entities...)
		default:
			p.skipSection()
		}
	}
}

func (p *parser) skipSection() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 && pr.Value == "ENDSEC" {
			return
		}
	}
}

func (p *parser) parseHeader() {
	var varName string
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 {
			p.pushback(pr)
			return
		}
		if pr.Code == 9 {
			varName = pr.Value
			continue
		}
		switch varName {
		case "$INSUNITS":
			if v, err := strconv.Atoi(pr.Value); err == nil {
				p.data.Header.InsUnits = &v
			}
		case "$TEXTSIZE":
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				p.data.Header.TextSize = &v
			}
		case "$LTSCALE":
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				p.data.Header.LtScale = &v
			}
		case "$CELTSCALE":
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				p.data.Header.CelTScale = &v
			}
		case "$EXTMIN":
			p.foldHeaderVector(&p.data.Header.ExtMin, pr)
		case "$EXTMAX":
			p.foldHeaderVector(&p.data.Header.ExtMax, pr)
		}
	}
}

// foldHeaderVector accumulates the 10/20/30 triplet of a header point
// variable. Since header vars are read one code at a time, this lazily
// allocates on first component and fills in X/Y on sight.
func (p *parser) foldHeaderVector(dst **dxfcore.Vector, pr Pair) {
	if *dst == nil {
		*dst = &dxfcore.Vector{}
	}
	switch pr.Code {
	case 10:
		if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
			(*dst).X = v
		}
	case 20:
		if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
			(*dst).Y = v
		}
	case 30:
		if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
			(*dst).Z = v
		}
	}
}

func (p *parser) parseTables() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 && pr.Value == "ENDSEC" {
			return
		}
		if pr.Code != 0 || pr.Value != "TABLE" {
			continue
		}
		name, ok := p.next()
		if !ok || name.Code != 2 {
			continue
		}
		switch name.Value {
		case "LAYER":
			p.parseLayerTable()
		case "LTYPE":
			p.parseLtypeTable()
		case "STYLE":
			p.parseStyleTable()
		default:
			p.skipTable()
		}
	}
}

func (p *parser) skipTable() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 && pr.Value == "ENDTAB" {
			return
		}
	}
}

func (p *parser) parseLayerTable() {
	var def *dxfcore.LayerDef
	flush := func() {
		if def != nil {
			p.data.Layers[def.Name] = def
		}
	}
	for {
		pr, ok := p.next()
		if !ok {
			flush()
			return
		}
		if pr.Code == 0 {
			if pr.Value == "ENDTAB" {
				flush()
				return
			}
			if pr.Value == "LAYER" {
				flush()
				def = &dxfcore.LayerDef{Visible: true}
				continue
			}
			continue
		}
		if def == nil {
			continue
		}
		switch pr.Code {
		case 2:
			def.Name = pr.Value
		case 62:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				def.Visible = v >= 0
				if v < 0 {
					v = -v
				}
				def.Color = v
				def.HasColor = true
			}
		case 6:
			def.LineType = pr.Value
		case 370:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				def.Lineweight = v
			}
		case 70:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				def.Frozen = v&1 != 0
			}
		}
	}
}

func (p *parser) parseLtypeTable() {
	var def *dxfcore.LinetypeDef
	flush := func() {
		if def != nil {
			p.data.Linetypes[def.Name] = def
		}
	}
	for {
		pr, ok := p.next()
		if !ok {
			flush()
			return
		}
		if pr.Code == 0 {
			if pr.Value == "ENDTAB" {
				flush()
				return
			}
			if pr.Value == "LTYPE" {
				flush()
				def = &dxfcore.LinetypeDef{}
				continue
			}
			continue
		}
		if def == nil {
			continue
		}
		switch pr.Code {
		case 2:
			def.Name = pr.Value
		case 49:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				def.Pattern = append(def.Pattern, v)
			}
		}
	}
}

func (p *parser) parseStyleTable() {
	var def *dxfcore.StyleDef
	flush := func() {
		if def != nil {
			p.data.Styles[def.Name] = def
		}
	}
	for {
		pr, ok := p.next()
		if !ok {
			flush()
			return
		}
		if pr.Code == 0 {
			if pr.Value == "ENDTAB" {
				flush()
				return
			}
			if pr.Value == "STYLE" {
				flush()
				def = &dxfcore.StyleDef{}
				continue
			}
			continue
		}
		if def == nil {
			continue
		}
		switch pr.Code {
		case 2:
			def.Name = pr.Value
		case 40:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				def.FixedTextHeight = v
			}
		case 41:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				def.WidthFactor = v
			}
		case 50:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				def.ObliqueAngle = v
			}
		case 3:
			def.FontFile = pr.Value
		}
	}
}

func (p *parser) parseBlocks() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 && pr.Value == "ENDSEC" {
			return
		}
		if pr.Code != 0 || pr.Value != "BLOCK" {
			continue
		}
		block := &dxfcore.Block{}
		for {
			hp, ok := p.next()
			if !ok {
				return
			}
			if hp.Code == 0 {
				p.pushback(hp)
				break
			}
			switch hp.Code {
			case 2:
				if block.Name == "" {
					block.Name = hp.Value
				}
			case 10:
				if v, err := strconv.ParseFloat(hp.Value, 64); err == nil {
					block.Base.X = v
				}
			case 20:
				if v, err := strconv.ParseFloat(hp.Value, 64); err == nil {
					block.Base.Y = v
				}
			}
		}
		block.Entities = p.parseEntities("ENDBLK")
		p.data.Blocks[block.Name] = block
	}
}

// parseEntities reads entities until it sees a code-0 marker equal to
// terminator (used for BLOCK bodies) or, when terminator is empty, until
// ENDSEC.
func (p *parser) parseEntities(terminator string) []*dxfcore.Entity {
	var out []*dxfcore.Entity
	for {
		pr, ok := p.next()
		if !ok {
			return out
		}
		if pr.Code != 0 {
			continue
		}
		if pr.Value == "ENDSEC" || (terminator != "" && pr.Value == terminator) {
			if terminator == "ENDBLK" {
				p.consumeUntilCode0()
			}
			return out
		}
		if terminator == "" && (pr.Value == "POLYLINE" || pr.Value == "HATCH") {
			// Left to the Augmenter's raw-text pass; skip here so the two
			// passes don't double-emit.
			p.skipToNextEntityMarker()
			continue
		}
		kind, ok := entityKind(pr.Value)
		if !ok {
			p.skipToNextEntityMarker()
			continue
		}
		e := p.parseEntityBody(kind)
		if e != nil {
			out = append(out, e)
		}
	}
}

func (p *parser) consumeUntilCode0() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 {
			p.pushback(pr)
			return
		}
	}
}

func (p *parser) skipToNextEntityMarker() {
	for {
		pr, ok := p.next()
		if !ok {
			return
		}
		if pr.Code == 0 {
			p.pushback(pr)
			return
		}
	}
}

func entityKind(marker string) (dxfcore.Kind, bool) {
	switch marker {
	case "LINE":
		return dxfcore.KindLine, true
	case "LWPOLYLINE":
		return dxfcore.KindLWPolyline, true
	case "SPLINE":
		return dxfcore.KindSpline, true
	case "CIRCLE":
		return dxfcore.KindCircle, true
	case "ARC":
		return dxfcore.KindArc, true
	case "TEXT":
		return dxfcore.KindText, true
	case "MTEXT":
		return dxfcore.KindMText, true
	case "ATTRIB":
		return dxfcore.KindAttrib, true
	case "INSERT":
		return dxfcore.KindInsert, true
	default:
		return "", false
	}
}

func (p *parser) parseEntityBody(kind dxfcore.Kind) *dxfcore.Entity {
	e := &dxfcore.Entity{Kind: kind, LineTypeScale: 1}
	var vertexX, vertexY float64
	var haveX, haveY bool

	flushVertex := func() {
		if haveX && haveY {
			e.Vertices = append(e.Vertices, dxfcore.Vector{X: vertexX, Y: vertexY})
		}
		haveX, haveY = false, false
	}

	for {
		pr, ok := p.next()
		if !ok {
			flushVertex()
			return e
		}
		if pr.Code == 0 {
			flushVertex()
			p.pushback(pr)
			return e
		}

		switch pr.Code {
		case 8:
			e.Layer = pr.Value
		case 67:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.InPaperSpace = v != 0
			}
		case 62:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.Color = v
				e.HasColor = true
			}
		case 420:
			if v, err := strconv.ParseInt(pr.Value, 10, 64); err == nil {
				tc := uint32(v) & 0xFFFFFF
				e.TrueColor = &tc
			}
		case 6:
			e.LineType = pr.Value
		case 48:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				e.LineTypeScale = v
			}
		case 370:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.Lineweight = v
			}
		case 70:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.Closed = v&1 != 0
			}
		case 10:
			if kind == dxfcore.KindLine || kind == dxfcore.KindLWPolyline {
				if haveX || haveY {
					flushVertex()
				}
				if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
					vertexX, haveX = v, true
				}
			} else {
				p.readPointField(kind, pr.Code, pr.Value, e)
			}
		case 20:
			if kind == dxfcore.KindLine || kind == dxfcore.KindLWPolyline {
				if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
					vertexY, haveY = v, true
				}
				if haveX && haveY {
					flushVertex()
				}
			} else {
				p.readPointField(kind, pr.Code, pr.Value, e)
			}
		case 11:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				switch kind {
				case dxfcore.KindLine:
					for len(e.Vertices) < 2 {
						e.Vertices = append(e.Vertices, dxfcore.Vector{})
					}
					e.Vertices[1].X = v
				case dxfcore.KindText, dxfcore.KindMText, dxfcore.KindAttrib:
					e.AlignmentPoint.X = v
					e.HasAlignmentPoint = true
				}
			}
		case 21:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				switch kind {
				case dxfcore.KindLine:
					for len(e.Vertices) < 2 {
						e.Vertices = append(e.Vertices, dxfcore.Vector{})
					}
					e.Vertices[1].Y = v
				case dxfcore.KindText, dxfcore.KindMText, dxfcore.KindAttrib:
					e.AlignmentPoint.Y = v
					e.HasAlignmentPoint = true
				}
			}
		case 42:
			if kind == dxfcore.KindLWPolyline && len(e.Vertices) > 0 {
				if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
					e.Vertices[len(e.Vertices)-1].Bulge = v
				}
			}
		case 40:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				switch kind {
				case dxfcore.KindCircle, dxfcore.KindArc:
					e.Radius = v
				case dxfcore.KindText, dxfcore.KindMText:
					e.Height = v
				}
			}
		case 50:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				switch kind {
				case dxfcore.KindArc:
					e.StartAngle = v
				case dxfcore.KindText, dxfcore.KindMText, dxfcore.KindInsert:
					e.Rotation = v
				}
			}
		case 51:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil && kind == dxfcore.KindArc {
				e.EndAngle = v
			}
		case 41:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil {
				switch kind {
				case dxfcore.KindText, dxfcore.KindMText:
					e.WidthFactor = v
				case dxfcore.KindInsert:
					e.ScaleX = v
				}
			}
		case 43:
			if v, err := strconv.ParseFloat(pr.Value, 64); err == nil && kind == dxfcore.KindInsert {
				e.ScaleY = v
			}
		case 1:
			if kind == dxfcore.KindText || kind == dxfcore.KindMText || kind == dxfcore.KindAttrib {
				e.Text += pr.Value
			}
		case 3:
			if kind == dxfcore.KindMText {
				e.Text += pr.Value
			} else if kind == dxfcore.KindInsert {
				e.BlockName = pr.Value
			}
		case 2:
			if kind == dxfcore.KindInsert {
				e.BlockName = pr.Value
			}
		case 7:
			e.StyleName = pr.Value
		case 72:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.HAlign = v
			}
		case 73:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.VAlign = v
			}
		case 71:
			if v, err := strconv.Atoi(pr.Value); err == nil {
				e.AttachmentPoint = v
			}
		}
	}
}

func (p *parser) readPointField(kind dxfcore.Kind, code int, value string, e *dxfcore.Entity) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	switch kind {
	case dxfcore.KindCircle, dxfcore.KindArc:
		if code == 10 {
			e.Center.X = v
		} else {
			e.Center.Y = v
		}
	case dxfcore.KindText, dxfcore.KindMText, dxfcore.KindAttrib:
		if code == 10 {
			e.InsertionPoint.X = v
		} else {
			e.InsertionPoint.Y = v
		}
	case dxfcore.KindInsert:
		if code == 10 {
			e.InsertPoint.X = v
		} else {
			e.InsertPoint.Y = v
		}
	case dxfcore.KindSpline:
		// Control points use code 10/20 pairs repeated per point; handled
		// by the caller accumulating into ControlPoints since Spline never
		// reaches the LINE/LWPOLYLINE vertex fast path above.
		appendSplineCoord(e, code, v)
	}
}

func appendSplineCoord(e *dxfcore.Entity, code int, v float64) {
	if code == 10 {
		e.ControlPoints = append(e.ControlPoints, dxfcore.Vector{X: v})
		return
	}
	if len(e.ControlPoints) == 0 {
		return
	}
	last := len(e.ControlPoints) - 1
	e.ControlPoints[last].Y = v
}
