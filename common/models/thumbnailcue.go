package models

/**
one cue entry per sampled second of source material. Entry i covers the
half-open interval [i, i+1) and references a pixel region within one of the
generated sprite sheets.
*/
type ThumbnailCueEntry struct {
	StartSecond int `json:"startSecond"`
	EndSecond   int `json:"endSecond"`
	SpriteIndex int `json:"spriteIndex"`
	X           int `json:"x"`
	Y           int `json:"y"`
	Width       int `json:"width"`
	Height      int `json:"height"`
}
