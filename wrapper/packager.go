package main

import (
	"fmt"
	"github.com/cineview/transcoder/common/planner"
	"log"
	"os/exec"
	"strings"
)

/**
build the stream descriptor for one packaging input. Video streams carry no
language; audio and text streams carry the language tag plus the track tag
that the packager emits into the hls playlist (which the label edit pass
rewrites afterwards, see manifest.go).
*/
func streamDescriptor(input planner.PackagingInput, step planner.PackagingStep, outputPath string) string {
	parts := []string{
		fmt.Sprintf("in=%s", OutputPathFor(outputPath, input.File)),
		fmt.Sprintf("stream=%s", input.Role),
	}

	if input.Role != planner.ROLE_VIDEO {
		parts = append(parts, fmt.Sprintf("lang=%s", input.LangTag))
		parts = append(parts, fmt.Sprintf("hls_name=%s", input.TrackTag))
	}
	if input.Forced {
		parts = append(parts, "forced_subtitle=1")
	}

	isDefaultAudio := input.Role == planner.ROLE_AUDIO &&
		step.DefaultAudioTag != nil && *step.DefaultAudioTag == input.TrackTag
	isDefaultText := input.Role == planner.ROLE_TEXT &&
		step.DefaultSubtitleTag != nil && *step.DefaultSubtitleTag == input.TrackTag
	if isDefaultAudio || isDefaultText {
		parts = append(parts, "default=yes")
	}

	return strings.Join(parts, ",")
}

/**
one packager invocation covers the whole job: every encoded rendition goes in,
one dash manifest and one hls master playlist come out
*/
func BuildPackagingCommand(step planner.PackagingStep, outputPath string) *exec.Cmd {
	commandArgs := make([]string, 0, len(step.Inputs)+2)
	for _, input := range step.Inputs {
		commandArgs = append(commandArgs, streamDescriptor(input, step, outputPath))
	}
	commandArgs = append(commandArgs,
		fmt.Sprintf("--mpd_output=%s", OutputPathFor(outputPath, step.ManifestFile)),
		fmt.Sprintf("--hls_master_playlist_output=%s", OutputPathFor(outputPath, step.PlaylistFile)),
	)

	return exec.Command("/usr/bin/packager", commandArgs...)
}

func RunPackaging(step planner.PackagingStep, outputPath string) error {
	cmd := BuildPackagingCommand(step, outputPath)
	_, _, runErr := RunCommand(cmd)
	if runErr != nil {
		log.Printf("Could not execute packager: %s", runErr)
		return fmt.Errorf("packaging failed: %s", runErr)
	}
	return nil
}
