//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/gesture"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
)

// One camera screen per page. JS calls arrive on the event loop, one at a time.
var (
	resolver  = gesture.NewResolver(gesture.DefaultTuning())
	debouncer = scan.NewDebouncer(scan.DefaultCooldownMs, nil)
)

// Starts a two-finger gesture.
// Args: touches [{x, y}, ...]
// Returns: {error: number, data: boolean | string}
func gestureStart(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: touches")
	}
	touches, err := readTouches(args[0])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	return makeResponse(resolver.Start(touches))
}

// Feeds a movement sample.
// Args: touches [{x, y}, ...], currentZoom number
// Returns: {error: number, data: {zoom, change, kind, feedback} | null | string}
func gestureMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: touches, currentZoom")
	}
	touches, err := readTouches(args[0])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	if args[1].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "currentZoom must be a number")
	}

	p, ok := resolver.Move(touches, args[1].Float())
	if !ok {
		return makeResponse(js.Null())
	}

	obj := js.Global().Get("Object").New()
	obj.Set("zoom", p.Zoom)
	obj.Set("change", p.Change)
	obj.Set("kind", p.Kind.String())
	obj.Set("feedback", p.Feedback)
	return makeResponse(obj)
}

// Ends the current gesture.
func gestureEnd(this js.Value, args []js.Value) interface{} {
	resolver.End()
	return makeResponse(js.Null())
}

// Decides whether a raw recognition callback is a new scan.
// Args: type string, data string, nowMs number, ready boolean
// Returns: {error: number, data: {accepted, reason} | string}
func scanEvent(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 4 arguments: type, data, nowMs, ready")
	}
	if args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "type and data must be strings")
	}
	if args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "nowMs must be a number")
	}
	if args[3].Type() != js.TypeBoolean {
		return makeErrorResponse(ErrorInvalidArgs, "ready must be a boolean")
	}

	e := scan.Event{Type: args[0].String(), Data: args[1].String()}
	res := debouncer.OnRawScan(e, int64(args[2].Float()), args[3].Bool())

	obj := js.Global().Get("Object").New()
	obj.Set("accepted", res.Accepted())
	if res.Reason != nil {
		obj.Set("reason", res.Reason.Error())
	} else {
		obj.Set("reason", js.Null())
	}
	return makeResponse(obj)
}

// Maps the viewfinder rect into camera surface coordinates.
// Args: frame {x, y, width, height} | null, surface {x, y, width, height} | null
// Returns: {error: number, data: {x, y, width, height} | null | string}
func computeRelativeFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: frame, surface")
	}
	f, err := readRect(args[0])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, "frame: "+err.Error())
	}
	s, err := readRect(args[1])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, "surface: "+err.Error())
	}

	rel := frame.ComputeRelativeFrame(f, s)
	if rel == nil {
		return makeResponse(js.Null())
	}
	obj := js.Global().Get("Object").New()
	obj.Set("x", rel.X)
	obj.Set("y", rel.Y)
	obj.Set("width", rel.Width)
	obj.Set("height", rel.Height)
	return makeResponse(obj)
}

func readTouches(v js.Value) ([]gesture.Point, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("touches must be an Array")
	}
	n := v.Length()
	points := make([]gesture.Point, n)
	for i := 0; i < n; i++ {
		t := v.Index(i)
		x, y := t.Get("x"), t.Get("y")
		if x.Type() != js.TypeNumber || y.Type() != js.TypeNumber {
			return nil, fmt.Errorf("touch %d must have numeric x and y", i)
		}
		points[i] = gesture.Point{X: x.Float(), Y: y.Float()}
	}
	return points, nil
}

// readRect returns nil for null or undefined.
func readRect(v js.Value) (*frame.Rect, error) {
	if v.IsNull() || v.IsUndefined() {
		return nil, nil
	}
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("expected an object")
	}
	var vals [4]float64
	for i, key := range []string{"x", "y", "width", "height"} {
		f := v.Get(key)
		if f.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s must be a number", key)
		}
		vals[i] = f.Float()
	}
	return &frame.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func makeResponse(data interface{}) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "🔧 FoodLens WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("gestureStart", js.FuncOf(gestureStart))
	js.Global().Set("gestureMove", js.FuncOf(gestureMove))
	js.Global().Set("gestureEnd", js.FuncOf(gestureEnd))
	js.Global().Set("scanEvent", js.FuncOf(scanEvent))
	js.Global().Set("computeRelativeFrame", js.FuncOf(computeRelativeFrame))

	if !console.IsUndefined() {
		console.Call("log", "📝 gesture, scan and frame functions registered")
	}

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "❌ window object is undefined!")
	}

	if !console.IsUndefined() {
		console.Call("log", "✅ FoodLens WASM module loaded and ready")
	}

	<-done
}
