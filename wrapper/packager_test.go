package main

import (
	"github.com/cineview/transcoder/common/planner"
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func testPackagingStep() planner.PackagingStep {
	return planner.PackagingStep{
		Inputs: []planner.PackagingInput{
			{Role: planner.ROLE_VIDEO, File: "h264_main_540p_23.mp4"},
			{Role: planner.ROLE_AUDIO, File: "aac_2_128k_en-US.mp4", LangTag: "en-US", TrackTag: "en-US_2", Label: "English (US)"},
			{Role: planner.ROLE_AUDIO, File: "aac_6_384k_de-DE.mp4", LangTag: "de-DE", TrackTag: "de-DE_6", Label: "German (5.1)"},
			{Role: planner.ROLE_TEXT, File: "fr-FR.vtt", LangTag: "fr-FR", TrackTag: "fr-FR", Label: "French", Forced: true},
		},
		DefaultAudioTag: strPtr("en-US_2"),
		ManifestFile:    "manifest.mpd",
		PlaylistFile:    "master.m3u8",
	}
}

func TestStreamDescriptorVideo(t *testing.T) {
	step := testPackagingStep()
	descriptor := streamDescriptor(step.Inputs[0], step, "/out")

	if descriptor != "in=/out/h264_main_540p_23.mp4,stream=video" {
		t.Error("unexpected video descriptor: ", descriptor)
	}
}

func TestStreamDescriptorDefaultAudio(t *testing.T) {
	step := testPackagingStep()
	descriptor := streamDescriptor(step.Inputs[1], step, "/out")

	if !strings.Contains(descriptor, "lang=en-US") {
		t.Error("audio descriptor missing language: ", descriptor)
	}
	if !strings.Contains(descriptor, "hls_name=en-US_2") {
		t.Error("audio descriptor missing track tag: ", descriptor)
	}
	if !strings.Contains(descriptor, "default=yes") {
		t.Error("the indexed default track should carry the default marker: ", descriptor)
	}
}

func TestStreamDescriptorNonDefaultAudio(t *testing.T) {
	step := testPackagingStep()
	descriptor := streamDescriptor(step.Inputs[2], step, "/out")

	if strings.Contains(descriptor, "default=yes") {
		t.Error("non-default track should not carry the default marker: ", descriptor)
	}
}

func TestStreamDescriptorForcedSubtitle(t *testing.T) {
	step := testPackagingStep()
	descriptor := streamDescriptor(step.Inputs[3], step, "/out")

	if !strings.Contains(descriptor, "forced_subtitle=1") {
		t.Error("forced subtitle flag missing: ", descriptor)
	}
	//no default subtitle tag was given so nothing should be marked default
	if strings.Contains(descriptor, "default=yes") {
		t.Error("no default subtitle was requested: ", descriptor)
	}
}

func TestBuildPackagingCommandOutputs(t *testing.T) {
	step := testPackagingStep()
	cmd := BuildPackagingCommand(step, "/out")

	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "--mpd_output=/out/manifest.mpd") {
		t.Error("dash manifest output missing from command: ", joined)
	}
	if !strings.Contains(joined, "--hls_master_playlist_output=/out/master.m3u8") {
		t.Error("hls playlist output missing from command: ", joined)
	}
}
