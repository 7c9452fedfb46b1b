// Package ephemeral provides the per-node scratch state that survives between
// evaluations but is never persisted.
//
// A node kind declares a Factory; the engine calls it once when the node is
// created and hands the same State to every evaluation of that node. States
// are only touched from the evaluation goroutine and carry no locks.
package ephemeral

import "github.com/specialistvlad/stitchgrid/internal/portvalue"

// State is the scratch state of one node instance.
type State interface {
	// Reset returns the state to how the factory created it.
	Reset()
}

// Factory creates the initial state of a node.
type Factory func() State

// Receiver is implemented by states that accept effect results. index is the
// loop index the effect was issued for.
type Receiver interface {
	Receive(index int, value portvalue.Value, err error) bool
}

// PreviousValue remembers one value per loop index.
type PreviousValue struct {
	values map[int]portvalue.Value
}

func NewPreviousValue() State {
	return &PreviousValue{values: make(map[int]portvalue.Value)}
}

// Get returns the value stored for loop index i.
func (p *PreviousValue) Get(i int) (portvalue.Value, bool) {
	v, ok := p.values[i]
	return v, ok
}

func (p *PreviousValue) Set(i int, v portvalue.Value) {
	p.values[i] = v
}

func (p *PreviousValue) Reset() {
	clear(p.values)
}

// Queue is a bounded FIFO of values.
type Queue struct {
	Values portvalue.Values
}

func NewQueue() State {
	return &Queue{}
}

// Push appends v and drops the oldest values beyond max. A max of zero or
// less means unbounded.
func (q *Queue) Push(v portvalue.Value, max int) {
	q.Values = append(q.Values, v)
	if max > 0 && len(q.Values) > max {
		q.Values = append(portvalue.Values(nil), q.Values[len(q.Values)-max:]...)
	}
}

func (q *Queue) Reset() {
	q.Values = nil
}

// SmoothValue tracks an exponentially smoothed number per loop index.
type SmoothValue struct {
	current map[int]float64
}

func NewSmoothValue() State {
	return &SmoothValue{current: make(map[int]float64)}
}

// Step moves index i towards target and returns the new value. hysteresis is
// clamped to 0..1; zero jumps straight to target and one never moves. The
// first step for an index starts at target.
func (s *SmoothValue) Step(i int, target, hysteresis float64) float64 {
	prev, ok := s.current[i]
	if !ok {
		s.current[i] = target
		return target
	}
	h := min(max(hysteresis, 0), 1)
	next := prev*h + target*(1-h)
	s.current[i] = next
	return next
}

func (s *SmoothValue) Reset() {
	clear(s.current)
}

// Response is the outcome of an effect delivered back to a node.
type Response struct {
	Value portvalue.Value
	Err   error
}

// Request tracks in-flight effects and their responses per loop index.
type Request struct {
	loading map[int]bool
	results map[int]Response
}

func NewRequest() State {
	return &Request{loading: make(map[int]bool), results: make(map[int]Response)}
}

// Begin marks loop index i as waiting for a response.
func (r *Request) Begin(i int) {
	r.loading[i] = true
}

func (r *Request) Loading(i int) bool {
	return r.loading[i]
}

// Result returns the latest response for loop index i.
func (r *Request) Result(i int) (Response, bool) {
	res, ok := r.results[i]
	return res, ok
}

// Receive stores a response for a loop index. Responses for an index that is
// not loading, such as one issued before a Reset, are ignored.
func (r *Request) Receive(index int, value portvalue.Value, err error) bool {
	if !r.loading[index] {
		return false
	}
	r.loading[index] = false
	r.results[index] = Response{Value: value, Err: err}
	return true
}

func (r *Request) Reset() {
	clear(r.loading)
	clear(r.results)
}
