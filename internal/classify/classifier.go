// Package classify assigns a case-role label to extracted document text.
//
// This is line-pattern matching, not semantic understanding: two fixed
// marker lists are scored against a bounded leading sample of the text and
// the label with strictly more hits wins. Treat the result as a hint.
package classify

import (
	"regexp"

	"github.com/caseflow/casepipe/constants"
)

// DefaultLabel resolves a tie where both marker lists scored the same
// positive count. The petition wins deliberately: in the review flow a
// misfiled petition is cheaper to correct than a misfiled defense.
const DefaultLabel = constants.LabelPetition

// SampleChars bounds how much text is scored; classification must not cost
// as much as extraction.
const SampleChars = constants.ClassifySampleChars

var petitionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)peti[çc][ãa]o\s+inicial`),
	regexp.MustCompile(`(?i)reclama[çc][ãa]o\s+trabalhista`),
	regexp.MustCompile(`(?i)\bdos\s+pedidos\b`),
	regexp.MustCompile(`(?i)\bdo\s+valor\s+da\s+causa\b`),
	regexp.MustCompile(`(?i)requer\s+a\s+(proced[êe]ncia|condena[çc][ãa]o)`),
	regexp.MustCompile(`(?i)\breclamante\b[^.]{0,80}\bvem\b`),
}

var defenseMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcontesta[çc][ãa]o\b`),
	regexp.MustCompile(`(?i)reclamada\s+apresenta`),
	regexp.MustCompile(`(?i)\bda\s+impugna[çc][ãa]o\b`),
	regexp.MustCompile(`(?i)\bpreliminarmente\b`),
	regexp.MustCompile(`(?i)\bimproced[êe]ncia\b`),
	regexp.MustCompile(`(?i)defesa\s+trabalhista`),
}

// Classify scores the leading sample of text against both marker lists.
// The boolean is false when neither list matched; an equal positive score
// resolves to DefaultLabel.
func Classify(text string) (constants.DocumentLabel, bool) {
	if len(text) > SampleChars {
		text = text[:SampleChars]
	}

	petition := score(petitionMarkers, text)
	defense := score(defenseMarkers, text)

	switch {
	case petition == 0 && defense == 0:
		return "", false
	case petition > defense:
		return constants.LabelPetition, true
	case defense > petition:
		return constants.LabelDefense, true
	default:
		return DefaultLabel, true
	}
}

func score(markers []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range markers {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}
