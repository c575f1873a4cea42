package stage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage is one state of a conversion job.
type Stage string

const (
	Created    Stage = "created"
	Extracting Stage = "extracting"
	Converting Stage = "converting"
	Packing    Stage = "packing"
	CleaningUp Stage = "cleaning_up"
	Relocating Stage = "relocating"
	Done       Stage = "done"
	Failed     Stage = "failed"
)

// order lists the non-failure stages in the sequence a job visits them.
var order = []Stage{Created, Extracting, Converting, Packing, CleaningUp, Relocating, Done}

// Label returns a human readable name such as "Cleaning Up".
func (s Stage) Label() string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool {
	return s == Done || s == Failed
}

// Next returns the stage that follows s on the success path. Terminal stages
// return themselves.
func (s Stage) Next() Stage {
	for i, candidate := range order {
		if candidate == s && i+1 < len(order) {
			return order[i+1]
		}
	}
	return s
}

// CanTransition reports whether moving from one stage to another is legal:
// one step forward on the success path, or to Failed from any non-terminal stage.
func CanTransition(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	return from.Next() == to && to != from
}

// Parse converts a persisted stage name back to a Stage.
func Parse(value string) (Stage, bool) {
	value = strings.TrimSpace(value)
	if Stage(value) == Failed {
		return Failed, true
	}
	for _, candidate := range order {
		if string(candidate) == value {
			return candidate, true
		}
	}
	return "", false
}
