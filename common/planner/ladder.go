package planner

import "fmt"

/**
every job gets exactly this ladder, regardless of what the spec asks for in
audio and subtitles. The table is fixed: specs cannot add, remove or retune
rungs.
*/
type LadderRung struct {
	Level   string
	Profile string
	CRF     int
	Maxrate string
	Bufsize string
}

type UnknownTierError struct {
	Tier int
}

func (e UnknownTierError) Error() string {
	return fmt.Sprintf("%dp is not a ladder tier", e.Tier)
}

//emission order for the ladder operations
var ladderTiers = []int{540, 720, 1080}

var resolutionLadder = map[int]LadderRung{
	540:  {Level: "3.1", Profile: "main", CRF: 23, Maxrate: "2400k", Bufsize: "4800k"},
	720:  {Level: "4.0", Profile: "main", CRF: 22, Maxrate: "4400k", Bufsize: "8800k"},
	1080: {Level: "4.2", Profile: "high", CRF: 20, Maxrate: "8000k", Bufsize: "16000k"},
}

func RungFor(tier int) (LadderRung, error) {
	rung, haveTier := resolutionLadder[tier]
	if !haveTier {
		return LadderRung{}, UnknownTierError{Tier: tier}
	}
	return rung, nil
}

func LadderTiers() []int {
	rtn := make([]int, len(ladderTiers))
	copy(rtn, ladderTiers)
	return rtn
}
