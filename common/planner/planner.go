package planner

import (
	"fmt"
	"github.com/cineview/transcoder/common/languages"
	"github.com/cineview/transcoder/common/models"
)

type SpecValidationError struct {
	Detail string
}

func (e SpecValidationError) Error() string {
	return fmt.Sprintf("invalid transcode spec: %s", e.Detail)
}

/**
check everything that can be checked without touching the source media.
Called before any external process starts; a spec that fails here never
reaches the runner pool.
*/
func ValidateSpec(spec models.TranscodeSpec) error {
	if spec.SourceFile == "" {
		return SpecValidationError{Detail: "no source file given"}
	}

	for i, audioTrack := range spec.Audio {
		if _, lookupErr := languages.Lookup(audioTrack.LanguageCode); lookupErr != nil {
			return lookupErr
		}
		if audioTrack.ChannelCount < 1 {
			return SpecValidationError{Detail: fmt.Sprintf("audio track %d has no channels", i)}
		}
		if audioTrack.Bitrate == "" {
			return SpecValidationError{Detail: fmt.Sprintf("audio track %d has no bitrate", i)}
		}
	}
	for _, subTrack := range spec.Subtitles {
		if _, lookupErr := languages.Lookup(subTrack.LanguageCode); lookupErr != nil {
			return lookupErr
		}
	}

	if spec.DefaultAudioTrack != nil {
		if len(spec.Audio) == 0 {
			return SpecValidationError{Detail: "defaultAudioTrack given but the spec has no audio tracks"}
		}
		if *spec.DefaultAudioTrack < 0 || *spec.DefaultAudioTrack >= len(spec.Audio) {
			return SpecValidationError{Detail: fmt.Sprintf("defaultAudioTrack %d is out of range", *spec.DefaultAudioTrack)}
		}
	}
	if spec.DefaultSubtitleTrack != nil {
		if len(spec.Subtitles) == 0 {
			return SpecValidationError{Detail: "defaultSubtitleTrack given but the spec has no subtitle tracks"}
		}
		if *spec.DefaultSubtitleTrack < 0 || *spec.DefaultSubtitleTrack >= len(spec.Subtitles) {
			return SpecValidationError{Detail: fmt.Sprintf("defaultSubtitleTrack %d is out of range", *spec.DefaultSubtitleTrack)}
		}
	}
	return nil
}

/**
BuildPlan deterministically compiles a validated TranscodeSpec into the
ordered operation list plus packaging and label-edit instructions.

Flow:
 1. Validate (fail fast, nothing external has started yet)
 2. Emit the fixed video ladder, always all three rungs
 3. One AudioTranscode per audio track, one SubtitleExtract per subtitle track
 4. Packaging inputs with track tags and display labels
 5. Default-track tags from the spec's list indices
 6. One manifest label edit per audio/subtitle track
*/
func BuildPlan(spec models.TranscodeSpec) (*EncodePlan, error) {
	if validateErr := ValidateSpec(spec); validateErr != nil {
		return nil, validateErr
	}

	operations := make([]EncodeOperation, 0, len(ladderTiers)+len(spec.Audio)+len(spec.Subtitles))
	packagingInputs := make([]PackagingInput, 0, len(ladderTiers)+len(spec.Audio)+len(spec.Subtitles))
	labelEdits := make([]ManifestLabelEdit, 0, len(spec.Audio)+len(spec.Subtitles))

	for _, tier := range ladderTiers {
		rung, rungErr := RungFor(tier)
		if rungErr != nil {
			return nil, rungErr
		}
		op := VideoLadderRung{
			SourceStreamIndex: 0,
			Tier:              tier,
			Rung:              rung,
		}
		operations = append(operations, op)
		packagingInputs = append(packagingInputs, PackagingInput{
			Role: ROLE_VIDEO,
			File: op.OutputFile(),
		})
	}

	audioTags := make([]string, len(spec.Audio))
	for i, audioTrack := range spec.Audio {
		lang, _ := languages.Lookup(audioTrack.LanguageCode) //cannot fail, validated above
		op := AudioTranscode{
			Track:   audioTrack,
			LangTag: lang.Code,
		}
		operations = append(operations, op)

		trackTag := AudioTrackTag(lang.Code, audioTrack.ChannelCount)
		label := TrackLabel(lang.DisplayName, audioTrack.ChannelCount)
		audioTags[i] = trackTag

		packagingInputs = append(packagingInputs, PackagingInput{
			Role:     ROLE_AUDIO,
			File:     op.OutputFile(),
			LangTag:  lang.Code,
			TrackTag: trackTag,
			Label:    label,
		})
		labelEdits = append(labelEdits, ManifestLabelEdit{TrackTag: trackTag, Label: label})
	}

	subtitleTags := make([]string, len(spec.Subtitles))
	for i, subTrack := range spec.Subtitles {
		lang, _ := languages.Lookup(subTrack.LanguageCode)
		op := SubtitleExtract{
			Track:   subTrack,
			LangTag: lang.Code,
		}
		operations = append(operations, op)

		trackTag := SubtitleTrackTag(lang.Code)
		label := TrackLabel(lang.DisplayName, 0)
		subtitleTags[i] = trackTag

		packagingInputs = append(packagingInputs, PackagingInput{
			Role:     ROLE_TEXT,
			File:     op.OutputFile(),
			LangTag:  lang.Code,
			TrackTag: trackTag,
			Label:    label,
			Forced:   subTrack.Forced,
		})
		labelEdits = append(labelEdits, ManifestLabelEdit{TrackTag: trackTag, Label: label})
	}

	packaging := PackagingStep{
		Inputs:       packagingInputs,
		ManifestFile: "manifest.mpd",
		PlaylistFile: "master.m3u8",
	}
	if spec.DefaultAudioTrack != nil {
		packaging.DefaultAudioTag = &audioTags[*spec.DefaultAudioTrack]
	}
	if spec.DefaultSubtitleTrack != nil {
		packaging.DefaultSubtitleTag = &subtitleTags[*spec.DefaultSubtitleTrack]
	}

	return &EncodePlan{
		SourceFile: spec.SourceFile,
		Operations: operations,
		Packaging:  packaging,
		LabelEdits: labelEdits,
	}, nil
}
