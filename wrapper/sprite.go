package main

import (
	"fmt"
	"github.com/cineview/transcoder/common/models"
	"github.com/disintegration/imaging"
	"image"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path"
	"sort"
	"strings"
)

const (
	SpriteGridCols  = 5
	SpriteGridRows  = 3
	SpriteTileCount = SpriteGridCols * SpriteGridRows
	//every sampled frame is scaled down to this height; width follows the
	//source aspect ratio, taken from the first frame
	SpriteTileHeight = 90
)

const cueFileName = "thumbnails.vtt"

/**
sample the source at one frame per second into numbered jpegs in frameDir
*/
func ExtractSampleFrames(sourceFile string, frameDir string) error {
	framePattern := path.Join(frameDir, "frame_%05d.jpg")
	cmd := exec.Command("/usr/bin/ffmpeg", "-i", sourceFile, "-vf", "fps=1", "-y", framePattern)
	_, _, runErr := RunCommand(cmd)
	if runErr != nil {
		return fmt.Errorf("frame sampling failed: %s", runErr)
	}
	return nil
}

func listSampleFrames(frameDir string) ([]string, error) {
	entries, readErr := ioutil.ReadDir(frameDir)
	if readErr != nil {
		return nil, readErr
	}

	frameFiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "frame_") && strings.HasSuffix(entry.Name(), ".jpg") {
			frameFiles = append(frameFiles, path.Join(frameDir, entry.Name()))
		}
	}
	sort.Strings(frameFiles)
	return frameFiles, nil
}

func spriteFileName(spriteIndex int) string {
	return fmt.Sprintf("sprite_%03d.jpg", spriteIndex)
}

/**
pure cue geometry: entry i lands on sprite floor(i/tileCount) at the
row-major grid cell (i mod tileCount), covering the second [i, i+1)
*/
func BuildCueSheet(frameCount int, tileWidth int, tileHeight int) []models.ThumbnailCueEntry {
	entries := make([]models.ThumbnailCueEntry, frameCount)
	for i := 0; i < frameCount; i++ {
		cell := i % SpriteTileCount
		entries[i] = models.ThumbnailCueEntry{
			StartSecond: i,
			EndSecond:   i + 1,
			SpriteIndex: i / SpriteTileCount,
			X:           (cell % SpriteGridCols) * tileWidth,
			Y:           (cell / SpriteGridCols) * tileHeight,
			Width:       tileWidth,
			Height:      tileHeight,
		}
	}
	return entries
}

/**
composite the sampled frames row-major onto as many sprite sheets as the
tile grid needs, then write the webvtt cue file pointing into them.
The tile width is derived from the first frame; if that frame cannot be
decoded there is nothing sensible to build and the whole run must fail,
since the player ui always requests a cue file.
*/
func BuildSpriteSheets(frameDir string, outputPath string) error {
	frameFiles, listErr := listSampleFrames(frameDir)
	if listErr != nil {
		return fmt.Errorf("could not list sampled frames: %s", listErr)
	}
	if len(frameFiles) == 0 {
		return fmt.Errorf("no frames were sampled from the source")
	}

	firstFrame, decodeErr := imaging.Open(frameFiles[0])
	if decodeErr != nil {
		return fmt.Errorf("could not determine frame dimensions: %s", decodeErr)
	}

	firstScaled := imaging.Resize(firstFrame, 0, SpriteTileHeight, imaging.Lanczos)
	tileWidth := firstScaled.Bounds().Dx()
	if tileWidth == 0 {
		return fmt.Errorf("could not determine frame dimensions: first frame scaled to zero width")
	}

	spriteCount := (len(frameFiles) + SpriteTileCount - 1) / SpriteTileCount
	log.Printf("Compositing %d sampled frames onto %d sprite sheets of %dx%d tiles",
		len(frameFiles), spriteCount, SpriteGridCols, SpriteGridRows)

	var sheet *image.NRGBA
	for i, frameFile := range frameFiles {
		cell := i % SpriteTileCount
		if cell == 0 {
			if sheet != nil {
				saveErr := saveSheet(sheet, i/SpriteTileCount-1, outputPath)
				if saveErr != nil {
					return saveErr
				}
			}
			sheet = imaging.New(SpriteGridCols*tileWidth, SpriteGridRows*SpriteTileHeight, image.Black)
		}

		frame, frameErr := imaging.Open(frameFile)
		if frameErr != nil {
			//a single undecodable frame after the first leaves a black tile;
			//the surrounding cues are still usable
			log.Printf("WARNING: could not decode sampled frame %s: %s", frameFile, frameErr)
			continue
		}
		scaled := imaging.Resize(frame, tileWidth, SpriteTileHeight, imaging.Lanczos)
		origin := image.Pt((cell%SpriteGridCols)*tileWidth, (cell/SpriteGridCols)*SpriteTileHeight)
		sheet = imaging.Paste(sheet, scaled, origin)
	}
	if sheet != nil {
		saveErr := saveSheet(sheet, spriteCount-1, outputPath)
		if saveErr != nil {
			return saveErr
		}
	}

	cueEntries := BuildCueSheet(len(frameFiles), tileWidth, SpriteTileHeight)
	return WriteCueFile(cueEntries, outputPath)
}

func saveSheet(sheet *image.NRGBA, spriteIndex int, outputPath string) error {
	sheetFile := OutputPathFor(outputPath, spriteFileName(spriteIndex))
	saveErr := imaging.Save(sheet, sheetFile)
	if saveErr != nil {
		return fmt.Errorf("could not save sprite sheet %s: %s", sheetFile, saveErr)
	}
	return nil
}

/**
webvtt cue file with media-fragment regions, one cue per sampled second:

	00:01:15.000 --> 00:01:16.000
	sprite_000.jpg#xywh=160,90,160,90
*/
func WriteCueFile(entries []models.ThumbnailCueEntry, outputPath string) error {
	builder := strings.Builder{}
	builder.WriteString("WEBVTT\n")

	for _, entry := range entries {
		builder.WriteString("\n")
		builder.WriteString(FormatCueTimestamp(entry.StartSecond))
		builder.WriteString(" --> ")
		builder.WriteString(FormatCueTimestamp(entry.EndSecond))
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("%s#xywh=%d,%d,%d,%d\n",
			spriteFileName(entry.SpriteIndex), entry.X, entry.Y, entry.Width, entry.Height))
	}

	cueFile := OutputPathFor(outputPath, cueFileName)
	return ioutil.WriteFile(cueFile, []byte(builder.String()), os.FileMode(0644))
}
