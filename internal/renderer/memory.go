package renderer

import (
	"fmt"
	"sort"
	"sync"
)

// Object is a snapshot of one drawable held by a MemoryCanvas.
type Object struct {
	Handle Handle
	Kind   Kind
	Props  Props
}

// MemoryCanvas is a headless Canvas. It stores property bags per drawable
// and counts render requests; the CLI and the tests drive the engine
// against it.
type MemoryCanvas struct {
	mu      sync.RWMutex
	width   float64
	height  float64
	next    Handle
	objects map[Handle]*Object
	renders int
	measure *FontMeasurer
}

// NewMemoryCanvas creates an empty canvas of the given artboard size.
func NewMemoryCanvas(width, height float64) *MemoryCanvas {
	return &MemoryCanvas{
		width:   width,
		height:  height,
		objects: make(map[Handle]*Object),
		measure: NewFontMeasurer(),
	}
}

// Size returns the artboard dimensions.
func (c *MemoryCanvas) Size() (float64, float64) {
	return c.width, c.height
}

func baseProps(kind Kind) Props {
	p := Props{
		PropLeft:        0.0,
		PropTop:         0.0,
		PropScaleX:      1.0,
		PropScaleY:      1.0,
		PropAngle:       0.0,
		PropOpacity:     1.0,
		PropFill:        "#000000",
		PropStroke:      "",
		PropStrokeWidth: 1.0,
		PropVisible:     true,
	}
	if kind == KindText || kind == KindGroup {
		p[PropCharSpacing] = 0.0
		p[PropLineHeight] = 1.16
		p[PropFontSize] = 40.0
		p[PropFontWeight] = "normal"
	}
	return p
}

func (c *MemoryCanvas) Create(kind Kind, props Props) (Handle, error) {
	if kind == "" {
		return 0, fmt.Errorf("create drawable: empty kind")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	obj := &Object{Handle: c.next, Kind: kind, Props: baseProps(kind)}
	for k, v := range props {
		obj.Props[k] = v
	}
	c.objects[obj.Handle] = obj
	return obj.Handle, nil
}

func (c *MemoryCanvas) Set(h Handle, prop string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.objects[h]
	if !ok {
		return fmt.Errorf("set %s on %d: %w", prop, h, ErrUnknownHandle)
	}
	obj.Props[prop] = v
	return nil
}

func (c *MemoryCanvas) Get(h Handle, prop string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, ok := c.objects[h]
	if !ok {
		return nil, false
	}
	v, ok := obj.Props[prop]
	return v, ok
}

func (c *MemoryCanvas) MeasureTextWidth(text string, f Font) float64 {
	return c.measure.Width(text, f)
}

func (c *MemoryCanvas) RequestRender() {
	c.mu.Lock()
	c.renders++
	c.mu.Unlock()
}

func (c *MemoryCanvas) Remove(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[h]; !ok {
		return fmt.Errorf("remove %d: %w", h, ErrUnknownHandle)
	}
	delete(c.objects, h)
	return nil
}

// Renders returns how many repaints were requested.
func (c *MemoryCanvas) Renders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders
}

// Len returns the number of live drawables.
func (c *MemoryCanvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Snapshot copies every drawable, ordered by handle.
func (c *MemoryCanvas) Snapshot() []Object {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Object, 0, len(c.objects))
	for _, obj := range c.objects {
		props := make(Props, len(obj.Props))
		for k, v := range obj.Props {
			props[k] = v
		}
		out = append(out, Object{Handle: obj.Handle, Kind: obj.Kind, Props: props})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
