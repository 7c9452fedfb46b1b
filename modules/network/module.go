// Package network provides the networkRequest node. The node never performs
// I/O itself: a request pulse emits an http.request effect and the response
// comes back into the node's ephemeral state on a later tick.
package network

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/specialistvlad/stitchgrid/internal/ephemeral"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/loop"
	pv "github.com/specialistvlad/stitchgrid/internal/portvalue"
	"github.com/specialistvlad/stitchgrid/internal/pulse"
	"github.com/specialistvlad/stitchgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	inURL = iota
	inParameters
	inBody
	inHeaders
	inMethod
	inRequest
)

// NormalizeURL trims raw and adds an https scheme when none is given. It
// reports false when the result is not a usable absolute URL.
func NormalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, false
	}
	return u.String(), true
}

// stringMap flattens a JSON object into string values.
func stringMap(v pv.Value) map[string]string {
	j, ok := pv.AsJSON(v)
	if !ok {
		return nil
	}
	obj, ok := j.Data.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, val := range obj {
		if s, ok := val.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(val)
	}
	return out
}

func method(ctx *eval.Context, v pv.Value) string {
	m, _ := pv.AsString(v)
	switch strings.ToUpper(m) {
	case http.MethodGet, "":
		return http.MethodGet
	case http.MethodPost:
		return http.MethodPost
	}
	ctx.Invalid("Unsupported request method, using GET.", "method", m)
	return http.MethodGet
}

func evalNetworkRequest(ctx *eval.Context, inputs, previous pv.List, state ephemeral.State) eval.Result {
	req := state.(*ephemeral.Request)
	var effects []eval.Effect

	out := loop.EvalN(inputs, 5, func(args []pv.Value, i int) []pv.Value {
		result := orDefault(loop.At(previous[1], i), pv.KindJSON)
		headers := orDefault(loop.At(previous[4], i), pv.KindJSON)
		errored, failure := pv.Value(pv.Bool(false)), pv.Value(pv.JSON{})

		if res, ok := req.Result(i); ok {
			if res.Err != nil {
				errored = pv.Bool(true)
				failure = pv.JSON{Data: map[string]any{"message": res.Err.Error()}}
			} else if resp, ok := eval.ReadHTTPResponse(res.Value); ok {
				result = pv.JSON{Data: resp.Body}
				headers = pv.JSON{Data: resp.Headers}
			}
		}

		if pulse.Fired(args[inRequest], ctx.GraphTime) {
			raw, _ := pv.AsString(args[inURL])
			target, ok := NormalizeURL(raw)
			if !ok {
				ctx.Invalid("Network request has an invalid URL.", "url", raw, "index", i)
				return []pv.Value{pv.Bool(false), result, errored, failure, headers}
			}
			req.Begin(i)
			var body any
			if j, ok := pv.AsJSON(args[inBody]); ok {
				body = j.Data
			}
			effects = append(effects, eval.Effect{
				Kind:  eval.EffectHTTPRequest,
				Index: i,
				HTTP: &eval.HTTPRequest{
					Method:  method(ctx, args[inMethod]),
					URL:     target,
					Query:   stringMap(args[inParameters]),
					Headers: stringMap(args[inHeaders]),
					Body:    body,
				},
			})
		}
		return []pv.Value{pv.Bool(req.Loading(i)), result, errored, failure, headers}
	})
	return eval.Result{Outputs: out, Effects: effects}
}

func orDefault(v pv.Value, k pv.Kind) pv.Value {
	if v == nil {
		return pv.Default(k)
	}
	return v
}

// Register registers the node kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(&registry.Definition{
		Kind: "networkRequest",
		Inputs: registry.Static(
			registry.Port{Name: "url", Kind: pv.KindString},
			registry.Port{Name: "url_parameters", Kind: pv.KindJSON},
			registry.Port{Name: "body", Kind: pv.KindJSON},
			registry.Port{Name: "headers", Kind: pv.KindJSON},
			registry.Port{Name: "method", Kind: pv.KindString, Default: pv.Values{pv.String(http.MethodGet)}},
			registry.Port{Name: "request", Kind: pv.KindPulse},
		),
		Outputs: registry.Static(
			registry.Port{Name: "loading", Kind: pv.KindBool},
			registry.Port{Name: "result", Kind: pv.KindJSON},
			registry.Port{Name: "errored", Kind: pv.KindBool},
			registry.Port{Name: "error", Kind: pv.KindJSON},
			registry.Port{Name: "headers", Kind: pv.KindJSON},
		),
		Eval:     evalNetworkRequest,
		NewState: ephemeral.NewRequest,
	})
}
