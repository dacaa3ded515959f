package layer

import "sort"

// Step is one explicit property value taking effect at AtMs.
type Step struct {
	AtMs  float64
	Value any
}

type overrideKey struct {
	layerID  string
	property string
}

// Overrides is a sparse timeline of explicit property values per
// (layer, property). Values hold from their step until the next one; there
// is no interpolation between steps.
type Overrides struct {
	steps map[overrideKey][]Step
}

func NewOverrides() *Overrides {
	return &Overrides{steps: make(map[overrideKey][]Step)}
}

// Set adds a step, replacing any step at the same instant.
func (o *Overrides) Set(layerID, prop string, atMs float64, v any) {
	k := overrideKey{layerID, prop}
	steps := o.steps[k]
	i := sort.Search(len(steps), func(i int) bool { return steps[i].AtMs >= atMs })
	if i < len(steps) && steps[i].AtMs == atMs {
		steps[i].Value = v
		return
	}
	steps = append(steps, Step{})
	copy(steps[i+1:], steps[i:])
	steps[i] = Step{AtMs: atMs, Value: v}
	o.steps[k] = steps
}

// ClearAt removes the step at atMs. It reports whether one existed.
func (o *Overrides) ClearAt(layerID, prop string, atMs float64) bool {
	k := overrideKey{layerID, prop}
	steps := o.steps[k]
	i := sort.Search(len(steps), func(i int) bool { return steps[i].AtMs >= atMs })
	if i == len(steps) || steps[i].AtMs != atMs {
		return false
	}
	steps = append(steps[:i], steps[i+1:]...)
	if len(steps) == 0 {
		delete(o.steps, k)
	} else {
		o.steps[k] = steps
	}
	return true
}

// Clear drops every step for (layerID, prop).
func (o *Overrides) Clear(layerID, prop string) {
	delete(o.steps, overrideKey{layerID, prop})
}

// RemoveLayer drops every step of the layer.
func (o *Overrides) RemoveLayer(layerID string) {
	for k := range o.steps {
		if k.layerID == layerID {
			delete(o.steps, k)
		}
	}
}

// Steps returns a copy of the steps for (layerID, prop).
func (o *Overrides) Steps(layerID, prop string) []Step {
	return append([]Step(nil), o.steps[overrideKey{layerID, prop}]...)
}

// Lookup returns the latest step at or before t.
func (o *Overrides) Lookup(layerID, prop string, t float64) (any, bool) {
	steps := o.steps[overrideKey{layerID, prop}]
	i := sort.Search(len(steps), func(i int) bool { return steps[i].AtMs > t })
	if i == 0 {
		return nil, false
	}
	return steps[i-1].Value, true
}

// ValueAt resolves prop for l at t: an override when one applies, else the
// layer's captured default.
func (o *Overrides) ValueAt(l *Layer, prop string, t float64) (any, bool) {
	if v, ok := o.Lookup(l.ID, prop, t); ok {
		return v, true
	}
	return l.Default(prop)
}
