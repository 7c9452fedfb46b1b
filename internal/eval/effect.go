package eval

import "github.com/specialistvlad/stitchgrid/internal/portvalue"

// EffectKind names a side effect the host runtime knows how to perform.
type EffectKind string

const (
	// EffectRestart asks for the whole prototype session to restart.
	EffectRestart EffectKind = "restart"
	// EffectHTTPRequest asks for an HTTP request whose response is fed back
	// into the issuing node.
	EffectHTTPRequest EffectKind = "http.request"
)

// Effect is a deferred side effect requested by an evaluation. The engine
// stamps NodeID and Frame before handing it out.
type Effect struct {
	Kind   EffectKind
	NodeID string
	Frame  int
	// Index is the loop index that requested the effect.
	Index int
	HTTP  *HTTPRequest
}

// HTTPRequest describes the request of an EffectHTTPRequest.
type HTTPRequest struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
	Body    any
}

// EffectResult is the outcome of an effect on its way back into the graph.
type EffectResult struct {
	Effect Effect
	Value  portvalue.Value
	Err    error
}

// HTTPResponse is what an EffectHTTPRequest resolves to.
type HTTPResponse struct {
	Status  int
	Headers map[string]any
	Body    any
}

// Value encodes the response as the JSON value carried by an EffectResult.
func (r HTTPResponse) Value() portvalue.Value {
	return portvalue.JSON{Data: map[string]any{
		"status":  float64(r.Status),
		"headers": r.Headers,
		"body":    r.Body,
	}}
}

// ReadHTTPResponse decodes a value produced by HTTPResponse.Value.
func ReadHTTPResponse(v portvalue.Value) (HTTPResponse, bool) {
	j, ok := portvalue.AsJSON(v)
	if !ok {
		return HTTPResponse{}, false
	}
	m, ok := j.Data.(map[string]any)
	if !ok {
		return HTTPResponse{}, false
	}
	status, _ := m["status"].(float64)
	headers, _ := m["headers"].(map[string]any)
	return HTTPResponse{Status: int(status), Headers: headers, Body: m["body"]}, true
}
