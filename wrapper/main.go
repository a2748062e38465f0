package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/common/planner"
	"github.com/h2non/filetype"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path"
)

/**
decode the spec exactly as the dispatcher encoded it: json inside base64
*/
func ParseSpec(rawString string) (*models.TranscodeSpec, error) {
	jsonContent, decodeErr := base64.StdEncoding.DecodeString(rawString)
	if decodeErr != nil {
		log.Printf("Passed spec is not valid base64: %s", decodeErr)
		return nil, decodeErr
	}

	var spec models.TranscodeSpec
	marshalErr := json.Unmarshal(jsonContent, &spec)
	if marshalErr != nil {
		log.Printf("Could not understand passed spec: %s. Offending data was: %s", marshalErr, jsonContent)
		return nil, marshalErr
	}
	return &spec, nil
}

/**
cheap magic-number check that the source is actually a video container,
before we spend runner time encoding it
*/
func CheckSourceIsVideo(sourceFile string) (bool, error) {
	fp, openErr := os.Open(sourceFile)
	if openErr != nil {
		return false, openErr
	}
	defer fp.Close()

	head := make([]byte, 261)
	bytesRead, readErr := io.ReadFull(fp, head)
	if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
		//source shorter than the full magic-number window; match on what we got
		head = head[:bytesRead]
	} else if readErr != nil {
		return false, readErr
	}

	return filetype.IsVideo(head), nil
}

/**
we expect the following environment variables to be set:
JOB_ID={uuid-string}
TRANSCODE_SPEC={base64-encoded json spec, as passed by the dispatcher}
SOURCE_FILE={path to the media to transcode}
OUTPUT_PATH={directory to write renditions, manifests and sprites into}
*/
func main() {
	testSpecPtr := flag.String("spec", "", "testing option, base64 spec to run with")
	flag.Parse()

	rawSpec := os.Getenv("TRANSCODE_SPEC")
	if rawSpec == "" {
		rawSpec = *testSpecPtr
	}

	spec, specErr := ParseSpec(rawSpec)
	if specErr != nil {
		log.Fatal("No usable transcode spec, can't continue")
	}

	sourceFile := os.Getenv("SOURCE_FILE")
	if sourceFile == "" {
		sourceFile = spec.SourceFile
	}
	outputPath := os.Getenv("OUTPUT_PATH")

	log.Printf("Running job %s on %s", os.Getenv("JOB_ID"), sourceFile)

	isVideo, checkErr := CheckSourceIsVideo(sourceFile)
	if checkErr != nil {
		log.Fatalf("Could not read source file %s: %s", sourceFile, checkErr)
	}
	if !isVideo {
		log.Fatalf("Source file %s is not a recognised video format", sourceFile)
	}

	plan, planErr := planner.BuildPlan(*spec)
	if planErr != nil {
		log.Fatal("Could not compile an encode plan: ", planErr)
	}

	for _, op := range plan.Operations {
		opErr := ExecuteOperation(op, sourceFile, outputPath)
		if opErr != nil {
			log.Fatal("Encode operation failed: ", opErr)
		}
	}

	packageErr := RunPackaging(plan.Packaging, outputPath)
	if packageErr != nil {
		log.Fatal("Packaging failed: ", packageErr)
	}

	editErr := TextPatchManifestEditor{}.ApplyLabelEdits(
		OutputPathFor(outputPath, plan.Packaging.PlaylistFile), plan.LabelEdits)
	if editErr != nil {
		log.Fatal("Could not apply track labels to the playlist: ", editErr)
	}

	frameDir, tempErr := ioutil.TempDir("", "framesample")
	if tempErr != nil {
		log.Fatal("Could not create a working directory for frame sampling: ", tempErr)
	}
	defer os.RemoveAll(frameDir)

	sampleErr := ExtractSampleFrames(sourceFile, frameDir)
	if sampleErr != nil {
		log.Fatal("Could not sample frames from the source: ", sampleErr)
	}

	spriteErr := BuildSpriteSheets(frameDir, outputPath)
	if spriteErr != nil {
		log.Fatal("Could not build thumbnail sprites: ", spriteErr)
	}

	log.Printf("Job %s completed, outputs are in %s", os.Getenv("JOB_ID"), path.Clean(outputPath))
}
