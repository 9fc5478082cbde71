//go:build js && wasm

// Package main provides WebAssembly exports for the DXF import core.
package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/corvid-cad/dxfimport/dxfcore"
	"github.com/corvid-cad/dxfimport/dxfparse"
)

// Version of the WASM module.
const Version = "1.0.0"

var debugMode bool

func main() {
	js.Global().Set("dxfImport", js.FuncOf(dxfImport))
	js.Global().Set("dxfGetVersion", js.FuncOf(dxfGetVersion))
	js.Global().Set("dxfSetDebug", js.FuncOf(dxfSetDebug))

	<-make(chan struct{})
}

// dxfGetVersion returns the WASM module version.
// JS: dxfGetVersion() -> string
func dxfGetVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// dxfSetDebug enables or disables debug logging.
// JS: dxfSetDebug(enabled: boolean) -> void
func dxfSetDebug(this js.Value, args []js.Value) interface{} {
	if len(args) >= 1 {
		debugMode = args[0].Bool()
		if debugMode {
			logDebug("debug mode enabled")
		}
	}
	return nil
}

func logDebug(format string, args ...interface{}) {
	if debugMode {
		console := js.Global().Get("console")
		if len(args) == 0 {
			console.Call("log", "[dxfimport] "+format)
		} else {
			console.Call("log", "[dxfimport] "+format, args)
		}
	}
}

// importRequest is the JSON shape JS passes for dxfImport's options arg.
type importRequest struct {
	FloorID           string `json:"floorId"`
	DefaultLayerID    string `json:"defaultLayerId"`
	ColorScheme       string `json:"colorScheme"`
	CustomColorHex    string `json:"customColorHex"`
	SourceUnits       string `json:"sourceUnits"`
	IncludePaperSpace bool   `json:"includePaperSpace"`
	ReadOnly          bool   `json:"readOnly"`
	Theme             string `json:"theme"`
}

// dxfImport parses raw DXF text and runs the import core, returning the
// Result as JSON.
// JS: dxfImport(dxfText: string, optionsJson?: string) -> { ok, data?, error? }
func dxfImport(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("dxfImport requires at least 1 argument: dxfText")
	}

	raw := args[0].String()
	logDebug("received %d bytes of DXF text", len(raw))

	req := importRequest{ColorScheme: "original", SourceUnits: "auto"}
	if len(args) >= 2 && args[1].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[1].String()), &req); err != nil {
			return makeError("invalid options JSON: " + err.Error())
		}
	}

	data, err := dxfparse.Parse(strings.NewReader(raw))
	if err != nil {
		logDebug("parse error: %v", err.Error())
		return makeError("parse error: " + err.Error())
	}

	opts := dxfcore.ImportOptions{
		FloorID:           req.FloorID,
		DefaultLayerID:    req.DefaultLayerID,
		ColorScheme:       dxfcore.ColorScheme(req.ColorScheme),
		CustomColorHex:    req.CustomColorHex,
		SourceUnits:       dxfcore.SourceUnits(req.SourceUnits),
		IncludePaperSpace: req.IncludePaperSpace,
		ReadOnly:          req.ReadOnly,
	}

	theme := dxfcore.ThemeDark
	if req.Theme == "light" {
		theme = dxfcore.ThemeLight
	}

	result, diagnostics, err := dxfcore.Import(raw, data, opts, theme)
	if err != nil {
		logDebug("import error: %v", err.Error())
		return makeError("import error: " + err.Error())
	}
	logDebug("imported %d shapes, %d layers, %d diagnostics", len(result.Shapes), len(result.Layers), len(diagnostics))

	payload := struct {
		Result      dxfcore.Result       `json:"result"`
		Diagnostics []dxfcore.Diagnostic `json:"diagnostics"`
	}{result, diagnostics}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return makeError("JSON marshal error: " + err.Error())
	}
	return makeResult(string(jsonData))
}

func makeResult(data string) map[string]interface{} {
	return map[string]interface{}{
		"ok":   true,
		"data": data,
	}
}

func makeError(message string) map[string]interface{} {
	logDebug("error: %s", message)
	return map[string]interface{}{
		"ok":    false,
		"error": message,
	}
}
