package diagnosis

import (
	"archive/zip"
	"bytes"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"io/ioutil"
	"log"
	"regexp"
	"strings"
)

/**
the one failure cause common enough to be worth recognising: the packaging
step choking on a malformed subtitle file. Everything else stays undiagnosed.
*/
var parserFailurePattern = regexp.MustCompile(`PARSER_FAILURE: Cannot parse media file \S*?([^/\s]+\.vtt)`)

//log files worth scanning, matched by path substring (case-insensitive)
var transcodeLogNames = []string{"transcode", "wrapper", "package"}

func isTranscodeLog(fileName string) bool {
	lowered := strings.ToLower(fileName)
	for _, name := range transcodeLogNames {
		if strings.Contains(lowered, name) {
			return true
		}
	}
	return false
}

/**
DiagnoseFailure fetches the execution logs for a failed run and tries to
extract a structured failure reason. It is strictly best-effort: every
internal error is logged and swallowed, and a nil return simply means "no
reason available", which is a valid outcome. It never blocks the failure
from being reported.
*/
func DiagnoseFailure(pool runnerpool.PoolClient, runId int64) *string {
	archive, fetchErr := pool.FetchRunLogs(runId)
	if fetchErr != nil {
		log.Printf("Could not fetch logs for failed run %d, reporting failure without a reason: %s", runId, fetchErr)
		return nil
	}

	zipReader, zipErr := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if zipErr != nil {
		log.Printf("Log archive for run %d was not readable, reporting failure without a reason: %s", runId, zipErr)
		return nil
	}

	for _, archivedFile := range zipReader.File {
		if !isTranscodeLog(archivedFile.Name) {
			continue
		}

		fileReader, openErr := archivedFile.Open()
		if openErr != nil {
			log.Printf("Could not open %s within the log archive for run %d: %s", archivedFile.Name, runId, openErr)
			continue
		}
		content, readErr := ioutil.ReadAll(fileReader)
		fileReader.Close()
		if readErr != nil {
			log.Printf("Could not read %s within the log archive for run %d: %s", archivedFile.Name, runId, readErr)
			continue
		}

		if matches := parserFailurePattern.FindSubmatch(content); matches != nil {
			reason := string(matches[1])
			log.Printf("Run %d failed on unparseable subtitle file %s", runId, reason)
			return &reason
		}
	}
	return nil
}
