package planner

import "fmt"

/**
the identifier the packager emits for an audio track is the language tag
qualified by channel count, so two encodes of the same language at different
channel layouts stay distinguishable in the manifest.
*/
func AudioTrackTag(langTag string, channelCount int) string {
	return fmt.Sprintf("%s_%d", langTag, channelCount)
}

func SubtitleTrackTag(langTag string) string {
	return langTag
}

/**
six channels means a 5.1 layout and the label always says so. This is a fixed
labelling rule, not spec data.
*/
func TrackLabel(displayName string, channelCount int) string {
	if channelCount == 6 {
		return displayName + " (5.1)"
	}
	return displayName
}
