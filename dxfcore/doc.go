// Package dxfcore implements the DXF import core for a browser-based CAD
// editor: it takes a parsed DXF AST (see [DxfData]) plus the raw DXF text it
// came from, and produces a normalized, renderer-agnostic scene graph of
// [Shape] and [Layer] values with a world origin and extent.
//
// The core is a pipeline of six stages, run leaves-first from [Import]:
// the raw-pass augmenter ([Augment]) recovers entities the upstream AST
// parser drops, the unit resolver ([ResolveGlobalScale]) picks one
// centimeter scale for the whole drawing, the style resolver
// ([StyleResolver.Resolve]) turns DXF color/linetype/lineweight into
// renderer-ready values, the curve tesselator ([TesselateArc] and friends) turns circles,
// arcs, bulges and splines into polylines, the entity processor
// ([Processor.ProcessEntity]) walks every entity (recursing into block
// references) to emit shapes, and the extents normalizer ([Normalize])
// translates the result so it starts at the origin.
package dxfcore
