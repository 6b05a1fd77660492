package filtergraph

import (
	"fmt"
	"strconv"
)

// Input indexes as passed to ffmpeg: intro is the first -i, main the second.
const (
	IntroInput = 0
	MainInput  = 1
)

// Final pad names for the concatenated streams.
const (
	ConcatVideoPad Pad = "outv"
	ConcatAudioPad Pad = "outa"
)

// Profile holds the normalization targets. Every clip is letterboxed onto a
// Width x Height canvas with square pixels so concat sees matching links.
type Profile struct {
	FrameRate     int
	PixelFormat   string
	SampleRate    int
	ChannelLayout string
	Width         int
	Height        int
}

// DefaultProfile is used by DefaultPlan.
var DefaultProfile = Profile{
	FrameRate:     30,
	PixelFormat:   "yuv420p",
	SampleRate:    48000,
	ChannelLayout: "stereo",
	Width:         1280,
	Height:        720,
}

// Planner builds plans for a fixed profile. The zero value uses DefaultProfile.
type Planner struct {
	Profile Profile
}

// NewPlanner returns a planner for profile, filling unset fields from
// DefaultProfile.
func NewPlanner(profile Profile) *Planner {
	if profile.FrameRate <= 0 {
		profile.FrameRate = DefaultProfile.FrameRate
	}
	if profile.PixelFormat == "" {
		profile.PixelFormat = DefaultProfile.PixelFormat
	}
	if profile.SampleRate <= 0 {
		profile.SampleRate = DefaultProfile.SampleRate
	}
	if profile.ChannelLayout == "" {
		profile.ChannelLayout = DefaultProfile.ChannelLayout
	}
	if profile.Width <= 0 || profile.Height <= 0 {
		profile.Width, profile.Height = DefaultProfile.Width, DefaultProfile.Height
	}
	return &Planner{Profile: profile}
}

// DefaultPlan builds the plan for DefaultProfile.
func DefaultPlan(introHasAudio, mainHasAudio bool) *Plan {
	return NewPlanner(DefaultProfile).Plan(introHasAudio, mainHasAudio)
}

// Plan is total: every combination of audio flags yields a valid plan.
func (p *Planner) Plan(introHasAudio, mainHasAudio bool) *Plan {
	prof := p.profile()
	plan := &Plan{VideoLabel: ConcatVideoPad}

	v0 := videoPad(IntroInput)
	v1 := videoPad(MainInput)
	plan.Stages = append(plan.Stages,
		prof.normalizeVideo(IntroInput, v0),
		prof.normalizeVideo(MainInput, v1),
		Stage{
			Name:    "concat-video",
			Kind:    Video,
			Inputs:  []Pad{v0, v1},
			Filters: []Filter{{Name: "concat", Args: "n=2:v=1:a=0"}},
			Outputs: []Pad{ConcatVideoPad},
		},
	)

	switch {
	case introHasAudio && mainHasAudio:
		a0 := audioPad(IntroInput)
		a1 := audioPad(MainInput)
		plan.Stages = append(plan.Stages,
			prof.normalizeAudio(IntroInput, a0),
			prof.normalizeAudio(MainInput, a1),
			Stage{
				Name:    "concat-audio",
				Kind:    Audio,
				Inputs:  []Pad{a0, a1},
				Filters: []Filter{{Name: "concat", Args: "n=2:v=0:a=1"}},
				Outputs: []Pad{ConcatAudioPad},
			},
		)
		plan.AudioLabel = ConcatAudioPad
	case introHasAudio:
		a0 := audioPad(IntroInput)
		plan.Stages = append(plan.Stages, prof.normalizeAudio(IntroInput, a0))
		plan.AudioLabel = a0
	case mainHasAudio:
		a1 := audioPad(MainInput)
		plan.Stages = append(plan.Stages, prof.normalizeAudio(MainInput, a1))
		plan.AudioLabel = a1
	}

	return plan
}

func (p *Planner) profile() Profile {
	if p == nil || p.Profile == (Profile{}) {
		return DefaultProfile
	}
	return p.Profile
}

func videoPad(index int) Pad { return Pad("v" + strconv.Itoa(index)) }
func audioPad(index int) Pad { return Pad("a" + strconv.Itoa(index)) }

func (prof Profile) normalizeVideo(index int, out Pad) Stage {
	filters := []Filter{
		{Name: "fps", Args: strconv.Itoa(prof.FrameRate)},
		{Name: "scale", Args: fmt.Sprintf("%d:%d:force_original_aspect_ratio=decrease", prof.Width, prof.Height)},
		{Name: "pad", Args: fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", prof.Width, prof.Height)},
		{Name: "setsar", Args: "1"},
		{Name: "format", Args: prof.PixelFormat},
		{Name: "setpts", Args: "PTS-STARTPTS"},
	}
	return Stage{
		Name:    "normalize-video-" + strconv.Itoa(index),
		Kind:    Video,
		Inputs:  []Pad{InputPad(index, Video)},
		Filters: filters,
		Outputs: []Pad{out},
	}
}

func (prof Profile) normalizeAudio(index int, out Pad) Stage {
	return Stage{
		Name:   "normalize-audio-" + strconv.Itoa(index),
		Kind:   Audio,
		Inputs: []Pad{InputPad(index, Audio)},
		Filters: []Filter{
			{Name: "aresample", Args: strconv.Itoa(prof.SampleRate)},
			{Name: "aformat", Args: "channel_layouts=" + prof.ChannelLayout},
			{Name: "asetpts", Args: "PTS-STARTPTS"},
		},
		Outputs: []Pad{out},
	}
}
