package main

import (
	"fmt"
	"github.com/cineview/transcoder/common/planner"
	"io/ioutil"
	"os"
	"strings"
)

/**
the packager writes the track tag into the playlist NAME attribute; we want
the human label there instead. ManifestEditor isolates the rewriting so the
text-patching approach can be swapped for a structured playlist parser
without touching the execution flow.
*/
type ManifestEditor interface {
	ApplyLabelEdits(playlistFile string, edits []planner.ManifestLabelEdit) error
}

type TextPatchManifestEditor struct{}

func (e TextPatchManifestEditor) ApplyLabelEdits(playlistFile string, edits []planner.ManifestLabelEdit) error {
	content, readErr := ioutil.ReadFile(playlistFile)
	if readErr != nil {
		return readErr
	}

	patched := string(content)
	for _, edit := range edits {
		fromAttr := fmt.Sprintf(`NAME="%s"`, edit.TrackTag)
		toAttr := fmt.Sprintf(`NAME="%s"`, edit.Label)
		patched = strings.ReplaceAll(patched, fromAttr, toAttr)
	}

	info, statErr := os.Stat(playlistFile)
	if statErr != nil {
		return statErr
	}
	return ioutil.WriteFile(playlistFile, []byte(patched), info.Mode())
}
