// Package filtergraph decides the ffmpeg filter graph used to join an intro
// clip and a main clip.
//
// The planner only looks at whether each input carries audio. Video always
// follows the same path: each input is normalized (frame rate, pixel format,
// timestamps reset to zero) and the two normalized pads are joined by a
// video-only concat. Audio is where the inputs can differ:
//
//	intro  main   audio result
//	yes    yes    both normalized, then an audio-only concat
//	yes    no     intro's normalized track alone (ends when main starts)
//	no     yes    main's normalized track alone
//	no     no     no audio output
//
// When only one input has audio the single track is reused as is. No
// silence is synthesized for the other clip, so the audio track is shorter
// than the video.
package filtergraph

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StreamKind is the elementary stream type a pad carries.
type StreamKind string

const (
	Video StreamKind = "v"
	Audio StreamKind = "a"
)

// Pad is a filter graph label without brackets, e.g. "0:v" or "outv".
type Pad string

// String renders the pad the way ffmpeg expects it, in brackets.
func (p Pad) String() string {
	return "[" + string(p) + "]"
}

var rawPadRe = regexp.MustCompile(`^\d+:[va]$`)

// IsRaw reports whether p references an input stream rather than a derived pad.
func (p Pad) IsRaw() bool {
	return rawPadRe.MatchString(string(p))
}

// InputPad returns the raw pad for stream kind of input index.
func InputPad(index int, kind StreamKind) Pad {
	return Pad(strconv.Itoa(index) + ":" + string(kind))
}

// Filter is one element of a chain, e.g. {Name: "fps", Args: "30"}.
type Filter struct {
	Name string
	Args string
}

func (f Filter) String() string {
	if f.Args == "" {
		return f.Name
	}
	return f.Name + "=" + f.Args
}

// Stage is one filter chain: it consumes Inputs, applies Filters in order and
// produces Outputs.
type Stage struct {
	Name    string
	Kind    StreamKind
	Inputs  []Pad
	Filters []Filter
	Outputs []Pad
}

// String renders the stage as a filtergraph chain.
func (s Stage) String() string {
	var b strings.Builder
	for _, p := range s.Inputs {
		b.WriteString(p.String())
	}
	for i, f := range s.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	for _, p := range s.Outputs {
		b.WriteString(p.String())
	}
	return b.String()
}

// Plan is the ordered set of stages plus the pads mapped into the output.
// AudioLabel is empty when the output has no audio track.
type Plan struct {
	Stages     []Stage
	VideoLabel Pad
	AudioLabel Pad
}

// HasAudio reports whether the output carries an audio track.
func (p *Plan) HasAudio() bool {
	return p.AudioLabel != ""
}

// FilterComplex serializes the plan for -filter_complex.
func (p *Plan) FilterComplex() string {
	chains := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		chains[i] = s.String()
	}
	return strings.Join(chains, ";")
}

// StagesOf returns the stages that produce streams of kind.
func (p *Plan) StagesOf(kind StreamKind) []Stage {
	var out []Stage
	for _, s := range p.Stages {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Strategy names the audio branch taken, for logs and metrics.
func (p *Plan) Strategy() string {
	switch n := len(p.StagesOf(Audio)); {
	case n == 0:
		return "video_only"
	case n == 1:
		return "single_source"
	default:
		return "concat"
	}
}

// Validate checks label discipline: every consumed pad is raw or produced
// by an earlier stage, no pad is produced twice and both final labels exist.
func (p *Plan) Validate() error {
	produced := make(map[Pad]StreamKind)
	for i, s := range p.Stages {
		if len(s.Filters) == 0 {
			return fmt.Errorf("stage %d (%s): no filters", i, s.Name)
		}
		if len(s.Outputs) == 0 {
			return fmt.Errorf("stage %d (%s): no outputs", i, s.Name)
		}
		for _, in := range s.Inputs {
			if in.IsRaw() {
				continue
			}
			if _, ok := produced[in]; !ok {
				return fmt.Errorf("stage %d (%s): pad %s consumed before it is produced", i, s.Name, in)
			}
		}
		for _, out := range s.Outputs {
			if out == "" || out.IsRaw() {
				return fmt.Errorf("stage %d (%s): invalid output pad %q", i, s.Name, string(out))
			}
			if _, dup := produced[out]; dup {
				return fmt.Errorf("stage %d (%s): pad %s produced twice", i, s.Name, out)
			}
			produced[out] = s.Kind
		}
	}

	if p.VideoLabel == "" {
		return fmt.Errorf("plan has no video output")
	}
	if kind, ok := produced[p.VideoLabel]; !ok || kind != Video {
		return fmt.Errorf("video output %s is not produced by a video stage", p.VideoLabel)
	}
	if p.AudioLabel != "" {
		if kind, ok := produced[p.AudioLabel]; !ok || kind != Audio {
			return fmt.Errorf("audio output %s is not produced by an audio stage", p.AudioLabel)
		}
	}
	return nil
}
