package bridge

import (
	"encoding/json"
	"math"
)

// Event is a named event raised by the embedded runtime.
type Event struct {
	Type   string `json:"type"`
	Detail any    `json:"detail,omitempty"`
}

// DetailCarrier is implemented by platform events (for example DOM events in
// the wasm build) that know how to look up their own detail.arr payload.
type DetailCarrier interface {
	DetailArr() (any, bool)
}

// Normalize returns the payload a listener should receive for event.
// Events carrying a truthy detail.arr deliver that value; anything else is
// delivered unchanged.
func Normalize(event any) any {
	if arr, ok := detailArr(event); ok {
		return arr
	}
	return event
}

func detailArr(event any) (any, bool) {
	var detail any
	switch ev := event.(type) {
	case DetailCarrier:
		return ev.DetailArr()
	case *Event:
		if ev == nil {
			return nil, false
		}
		detail = ev.Detail
	case Event:
		detail = ev.Detail
	case map[string]any:
		detail = ev["detail"]
	default:
		return nil, false
	}

	d, ok := detail.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := d["arr"]
	if !ok || !truthy(arr) {
		return nil, false
	}
	return arr, true
}

// truthy follows script truthiness so a runtime-sent 0, "" or false in
// detail.arr falls back to the raw event like it does in the page.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
