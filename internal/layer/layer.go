package layer

import (
	"github.com/ivlev/lyricsync/internal/renderer"
)

// Kind classifies a layer's asset.
type Kind int

const (
	KindShape Kind = iota
	KindText
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindText:
		return "text"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// TagColor is the colour of the layer's bar on the timeline surface.
func (k Kind) TagColor() string {
	switch k {
	case KindShape:
		return "#9211F7"
	case KindText:
		return "#F7119B"
	case KindAudio:
		return "#11C0F7"
	case KindVideo:
		return "#106CF6"
	default:
		return "#FFFFFF"
	}
}

func (k Kind) idPrefix() string {
	switch k {
	case KindShape:
		return "Shape"
	case KindText:
		return "Text"
	case KindAudio:
		return "Audio"
	default:
		return "Video"
	}
}

// DurationBound reports whether the window length comes from the media.
func (k Kind) DurationBound() bool {
	return k == KindAudio || k == KindVideo
}

// AudioPlayer is the playback handle behind an audio layer.
type AudioPlayer interface {
	PlayFrom(offsetMs, volume float64) error
	Pause() error
}

// Asset is the tagged payload of a layer. The set of variants is closed.
type Asset interface {
	Kind() Kind
	isAsset()
}

type Shape struct {
	Name string
}

type Text struct {
	Content string
}

type Audio struct {
	DurationMs float64
	Player     AudioPlayer
}

type Video struct {
	DurationMs float64
}

func (Shape) Kind() Kind { return KindShape }
func (Text) Kind() Kind  { return KindText }
func (Audio) Kind() Kind { return KindAudio }
func (Video) Kind() Kind { return KindVideo }

func (Shape) isAsset() {}
func (Text) isAsset()  {}
func (Audio) isAsset() {}
func (Video) isAsset() {}

// Default is a property value captured when the layer was registered.
type Default struct {
	Property string
	Value    any
}

// Layer is one entry of the timeline.
type Layer struct {
	ID       string
	Asset    Asset
	Color    string
	Handle   renderer.Handle
	Defaults []Default
}

// Kind is shorthand for l.Asset.Kind().
func (l *Layer) Kind() Kind {
	return l.Asset.Kind()
}

// Default returns the captured default for prop.
func (l *Layer) Default(prop string) (any, bool) {
	for _, d := range l.Defaults {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return nil, false
}
