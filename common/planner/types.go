package planner

import (
	"fmt"
	"github.com/cineview/transcoder/common/models"
	"strconv"
)

/**
one encode operation maps onto one ffmpeg invocation inside the runner
execution. MarshalToArray returns the arguments specific to the operation;
the executor supplies the input file and output path around them.
*/
type EncodeOperation interface {
	OutputFile() string
	MarshalToArray() []string
}

type VideoLadderRung struct {
	SourceStreamIndex int
	Tier              int
	Rung              LadderRung
}

func (v VideoLadderRung) OutputFile() string {
	return fmt.Sprintf("h264_%s_%dp_%d.mp4", v.Rung.Profile, v.Tier, v.Rung.CRF)
}

func (v VideoLadderRung) MarshalToArray() []string {
	return []string{
		"-map", fmt.Sprintf("0:%d", v.SourceStreamIndex),
		"-c:v", "libx264",
		"-profile:v", v.Rung.Profile,
		"-level:v", v.Rung.Level,
		"-crf", strconv.Itoa(v.Rung.CRF),
		"-maxrate", v.Rung.Maxrate,
		"-bufsize", v.Rung.Bufsize,
		"-vf", fmt.Sprintf("scale=-2:%d", v.Tier),
		"-an", "-sn",
	}
}

type AudioTranscode struct {
	Track   models.AudioTrackSpec
	LangTag string //canonical form of Track.LanguageCode, resolved at plan time
}

func (a AudioTranscode) OutputFile() string {
	return fmt.Sprintf("aac_%d_%s_%s.mp4", a.Track.ChannelCount, a.Track.Bitrate, a.LangTag)
}

func (a AudioTranscode) MarshalToArray() []string {
	return []string{
		"-map", fmt.Sprintf("0:%d", a.Track.SourceStreamIndex),
		"-c:a", "aac",
		"-ac", strconv.Itoa(a.Track.ChannelCount),
		"-b:a", a.Track.Bitrate,
		"-vn", "-sn",
	}
}

type SubtitleExtract struct {
	Track   models.SubtitleTrackSpec
	LangTag string
}

func (s SubtitleExtract) OutputFile() string {
	return s.LangTag + ".vtt"
}

func (s SubtitleExtract) MarshalToArray() []string {
	return []string{
		"-map", fmt.Sprintf("0:%d", s.Track.SourceStreamIndex),
		"-c:s", "webvtt",
		"-vn", "-an",
	}
}

type PackagingRole string

const (
	ROLE_VIDEO PackagingRole = "video"
	ROLE_AUDIO PackagingRole = "audio"
	ROLE_TEXT  PackagingRole = "text"
)

type PackagingInput struct {
	Role     PackagingRole
	File     string
	LangTag  string //empty for video inputs
	TrackTag string //identifier the packager emits into the manifest; empty for video inputs
	Label    string //human-readable name the label edit applies afterwards
	Forced   bool
}

type PackagingStep struct {
	Inputs             []PackagingInput
	DefaultAudioTag    *string
	DefaultSubtitleTag *string
	ManifestFile       string
	PlaylistFile       string
}

/**
the packager has no native per-track display-name field, so labels are
applied as a textual pass over the generated playlist afterwards. One edit
per audio/subtitle track.
*/
type ManifestLabelEdit struct {
	TrackTag string
	Label    string
}

type EncodePlan struct {
	SourceFile string
	Operations []EncodeOperation
	Packaging  PackagingStep
	LabelEdits []ManifestLabelEdit
}
