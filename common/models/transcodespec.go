package models

/**
TranscodeSpec is the declarative description of what to produce for one source
file. It travels from job submission through the pending queue into the runner
execution; it is never mutated once accepted.
*/
type AudioTrackSpec struct {
	SourceStreamIndex int    `json:"sourceStreamIndex" mapstructure:"sourceStreamIndex"`
	ChannelCount      int    `json:"channelCount" mapstructure:"channelCount"`
	Bitrate           string `json:"bitrate" mapstructure:"bitrate"` //e.g. "128k"
	LanguageCode      string `json:"languageCode" mapstructure:"languageCode"`
}

type SubtitleTrackSpec struct {
	SourceStreamIndex int    `json:"sourceStreamIndex" mapstructure:"sourceStreamIndex"`
	LanguageCode      string `json:"languageCode" mapstructure:"languageCode"`
	Forced            bool   `json:"forced" mapstructure:"forced"`
}

type TranscodeSpec struct {
	SourceFile string              `json:"sourceFile" mapstructure:"sourceFile"`
	Audio      []AudioTrackSpec    `json:"audio" mapstructure:"audio"`
	Subtitles  []SubtitleTrackSpec `json:"subtitles" mapstructure:"subtitles"`
	//indices into the Audio/Subtitles lists above, NOT source stream indices
	DefaultAudioTrack    *int `json:"defaultAudioTrack,omitempty" mapstructure:"defaultAudioTrack"`
	DefaultSubtitleTrack *int `json:"defaultSubtitleTrack,omitempty" mapstructure:"defaultSubtitleTrack"`
}

/**
decode a spec that has arrived as a generic map (queue payload, dispatch inputs)
using the customised mapstructure decoder
*/
func SpecFromMap(raw map[string]interface{}) (*TranscodeSpec, error) {
	var spec TranscodeSpec
	decodeErr := CustomisedMapStructureDecode(raw, &spec)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &spec, nil
}
