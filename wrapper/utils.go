package main

import (
	"fmt"
	"path"
)

/**
all outputs are written flat into the job's output directory; operations name
their own files so we only need to anchor them
*/
func OutputPathFor(outputPath string, fileName string) string {
	if outputPath == "" {
		return fileName
	}
	return path.Join(outputPath, fileName)
}

/**
renders a whole-second offset as a webvtt cue timestamp, e.g. 75 -> 00:01:15.000
*/
func FormatCueTimestamp(totalSeconds int) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d.000", hours, minutes, seconds)
}
