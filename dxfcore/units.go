package dxfcore

import "math"

// unitsTable maps $INSUNITS codes to a centimeter scale factor, per
// spec §4.2. Codes 8-17 are the less common units AutoCAD defines;
// unrecognized codes fall through to the unitless heuristic.
var unitsTable = map[int]float64{
	1:  2.54,      // Inches
	2:  30.48,     // Feet
	3:  160934.4,  // Miles
	4:  0.1,       // Millimeters
	5:  1.0,       // Centimeters
	6:  100.0,     // Meters
	7:  100000.0,  // Kilometers
	8:  2.54e-6,   // Microinches
	9:  0.00254,   // Mils
	10: 91.44,     // Yards
	11: 1.0e-8,    // Angstroms
	12: 1.0e-7,    // Nanometers
	13: 0.0001,    // Microns
	14: 10.0,      // Decimeters
	15: 1000.0,    // Decameters
	16: 10000.0,   // Hectometers
	17: 1.0e11,    // Gigameters
}

// sourceUnitsTable maps an explicit caller override to meters, matching
// the override precedence in spec §4.2 step 1 ("compute sourceToMeters from
// a fixed table and return sourceToMeters * 100").
var sourceUnitsTable = map[SourceUnits]float64{
	UnitsMeters: 1.0,
	UnitsCm:     0.01,
	UnitsMm:     0.001,
	UnitsFeet:   0.3048,
	UnitsInches: 0.0254,
}

// autoScaleExtentThreshold is the magic constant in the unitless heuristic
// (spec §4.2 step 3, flagged as an undecided tunable in spec §9 open
// questions). It is kept private rather than exposed on ImportOptions.
const autoScaleExtentThreshold = 2000.0

// heuristicSampleLimit bounds how many entities the unitless heuristic
// scans before giving up on extending the bounding box.
const heuristicSampleLimit = 1000

// ResolveGlobalScale computes the single scalar mapping source units to
// centimeters, following the precedence chain in spec §4.2: an explicit
// override, then $INSUNITS, then the unitless heuristic over entity
// extents.
func ResolveGlobalScale(data *DxfData, opts ImportOptions) float64 {
	if opts.SourceUnits != "" && opts.SourceUnits != UnitsAuto {
		if toMeters, ok := sourceUnitsTable[opts.SourceUnits]; ok {
			return toMeters * 100
		}
	}

	if data.Header.InsUnits != nil {
		if scale, ok := unitsTable[*data.Header.InsUnits]; ok {
			return scale
		}
	}

	return unitlessHeuristic(data, opts)
}

// unitlessHeuristic seeds a bounding box from $EXTMIN/$EXTMAX (if present)
// then scans up to heuristicSampleLimit importable entities, guessing
// meters (scale 100) when the resulting extent looks like a small
// architectural drawing, centimeters (scale 1) otherwise.
func unitlessHeuristic(data *DxfData, opts ImportOptions) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	seen := false

	fold := func(x, y float64) {
		seen = true
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	if data.Header.ExtMin != nil && data.Header.ExtMax != nil {
		fold(data.Header.ExtMin.X, data.Header.ExtMin.Y)
		fold(data.Header.ExtMax.X, data.Header.ExtMax.Y)
	}

	sampled := 0
	for _, e := range data.Entities {
		if sampled >= heuristicSampleLimit {
			break
		}
		if e.InPaperSpace && !opts.IncludePaperSpace {
			continue
		}
		switch e.Kind {
		case KindLine, KindLWPolyline, KindPolyline:
			for _, v := range e.Vertices {
				fold(v.X, v.Y)
			}
		case KindInsert:
			fold(e.InsertPoint.X, e.InsertPoint.Y)
		case KindCircle, KindArc:
			fold(e.Center.X-e.Radius, e.Center.Y-e.Radius)
			fold(e.Center.X+e.Radius, e.Center.Y+e.Radius)
		default:
			continue
		}
		sampled++
	}

	if !seen {
		return 1
	}

	extent := math.Max(maxX-minX, maxY-minY)
	if extent > 0 && extent < autoScaleExtentThreshold {
		return 100
	}
	return 1
}
