package main

import (
	"fmt"
	"github.com/cineview/transcoder/common/planner"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

/**
run a single encode operation from the plan as one ffmpeg invocation. The
operation supplies its own arguments and output filename; we anchor the
output in the job's output directory.
*/
func ExecuteOperation(op planner.EncodeOperation, sourceFile string, outputPath string) error {
	outFileName := OutputPathFor(outputPath, op.OutputFile())

	commandArgs := []string{"-i", sourceFile}
	commandArgs = append(commandArgs, op.MarshalToArray()...)
	commandArgs = append(commandArgs, "-y", outFileName)

	startTime := time.Now()
	cmd := exec.Command("/usr/bin/ffmpeg", commandArgs...)
	_, _, runErr := RunCommand(cmd)
	duration := time.Now().UnixNano() - startTime.UnixNano()

	if runErr != nil {
		log.Printf("Could not execute command: %s", runErr)
		return fmt.Errorf("encode of %s failed: %s", outFileName, runErr)
	}

	_, statErr := os.Stat(outFileName)
	if statErr != nil {
		log.Printf("Encode completed but could not find output file: %s", statErr)
		return fmt.Errorf("encode of %s produced no output", outFileName)
	}

	log.Printf("Encoded %s in %.1fs", outFileName, float64(duration)/1e9)

	if subOp, isSubtitle := op.(planner.SubtitleExtract); isSubtitle {
		return validateSubtitleOutput(outFileName, subOp)
	}
	return nil
}

/**
ffmpeg will happily emit an empty or truncated vtt file from a malformed
subtitle stream and still exit zero, which then poisons the packaging step.
Check the extract actually produced webvtt before going any further. The
PARSER_FAILURE line written here is what the webapp's log scan looks for
when it diagnoses a failed run.
*/
func validateSubtitleOutput(outFileName string, op planner.SubtitleExtract) error {
	content, readErr := ioutil.ReadFile(outFileName)
	if readErr != nil {
		log.Printf("PARSER_FAILURE: Cannot parse media file %s", outFileName)
		return fmt.Errorf("subtitle extract for %s produced no readable output", op.LangTag)
	}

	trimmed := strings.TrimLeft(string(content), "\uFEFF\r\n ")
	if !strings.HasPrefix(trimmed, "WEBVTT") {
		log.Printf("PARSER_FAILURE: Cannot parse media file %s", outFileName)
		return fmt.Errorf("subtitle extract for %s is not valid webvtt", op.LangTag)
	}
	return nil
}
