package suggestions

import (
	"fmt"
	"strings"
	"time"

	"github.com/castlane/backend/internal/models"
)

// Factor weights for requirement scoring. A requirement with no criteria at
// all still collects the neutral gender/age/ethnicity points (25 total),
// which keeps it under the qualification threshold.
const (
	genderMatchScore = 20
	genderOpenScore  = 10

	ageRangeScore   = 20
	ageBoundScore   = 15
	ageNeutralScore = 10

	ethnicityMatchScore   = 15
	ethnicityNeutralScore = 5

	heightScore = 10

	skillPointsPer = 5
	skillPointsCap = 25

	// Casting calls already passed the location entitlement filter, so they
	// start from a base score instead of accumulating demographic factors.
	castingCallBase = 40

	// Minimum score a requirement must reach to be suggested. Casting calls
	// are exempt.
	requirementThreshold = 30
)

// talentFacts is the normalized view of a profile that the scorers consume.
// Strings are lowercased and trimmed; a nil age means date of birth is not
// on file.
type talentFacts struct {
	gender    string
	ethnicity string
	age       *int
	hasHeight bool
	skills    []string
}

func factsFor(p *models.TalentProfile, asOf time.Time) talentFacts {
	f := talentFacts{
		gender:    strings.ToLower(strings.TrimSpace(p.Gender)),
		ethnicity: strings.ToLower(strings.TrimSpace(p.Ethnicity)),
		hasHeight: p.HeightCM != nil,
		skills:    normalizeSkills(p.Skills),
	}
	if p.DateOfBirth != nil {
		age := ageAt(*p.DateOfBirth, asOf)
		f.age = &age
	}
	return f
}

// ageAt returns full years lived at asOf: the calendar-year difference, minus
// one if the birthday has not yet occurred within asOf's year.
func ageAt(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}

func normalizeSkills(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// splitSkills adapts a requirement's free-text, comma-separated skill list
// into the normalized form shared with structured casting-call skills.
func splitSkills(s string) []string {
	return normalizeSkills(strings.Split(s, ","))
}

// skillNames adapts structured casting-call skills into the same form.
func skillNames(skills []models.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return normalizeSkills(names)
}

// matchingSkills counts how many required skills the talent covers. A
// required skill matches when it contains, or is contained in, any of the
// talent's skills ("stage dance" covers a "dance" requirement and vice
// versa). Inputs must already be normalized.
func matchingSkills(required, have []string) int {
	n := 0
	for _, req := range required {
		for _, h := range have {
			if strings.Contains(req, h) || strings.Contains(h, req) {
				n++
				break
			}
		}
	}
	return n
}

func skillBonus(matched int) int {
	bonus := matched * skillPointsPer
	if bonus > skillPointsCap {
		bonus = skillPointsCap
	}
	return bonus
}

// scoreRequirement rates a project requirement against the talent. Pure and
// deterministic; reasons come out in factor order (gender, age, ethnicity,
// height, skills). A criterion both sides state but fail scores zero; a
// criterion either side leaves open scores the neutral points.
func scoreRequirement(f talentFacts, req *models.TalentRequirement) (int, []string) {
	score := 0
	reasons := []string{}

	reqGender := strings.ToLower(strings.TrimSpace(req.Gender))
	switch {
	case reqGender != "" && f.gender != "" && reqGender == f.gender:
		score += genderMatchScore
		reasons = append(reasons, "Gender match")
	case reqGender == "" || f.gender == "":
		score += genderOpenScore
	}

	switch {
	case f.age != nil && req.AgeMin != nil && req.AgeMax != nil &&
		*f.age >= *req.AgeMin && *f.age <= *req.AgeMax:
		score += ageRangeScore
		reasons = append(reasons, "Age match")
	case f.age != nil && req.AgeMin != nil && req.AgeMax == nil && *f.age >= *req.AgeMin:
		score += ageBoundScore
		reasons = append(reasons, "Above minimum age")
	case f.age != nil && req.AgeMax != nil && req.AgeMin == nil && *f.age <= *req.AgeMax:
		score += ageBoundScore
		reasons = append(reasons, "Below maximum age")
	case f.age == nil || (req.AgeMin == nil && req.AgeMax == nil):
		score += ageNeutralScore
	}

	reqEthnicity := strings.ToLower(strings.TrimSpace(req.Ethnicity))
	switch {
	case reqEthnicity != "" && f.ethnicity != "" &&
		(strings.Contains(reqEthnicity, f.ethnicity) || strings.Contains(f.ethnicity, reqEthnicity)):
		score += ethnicityMatchScore
		reasons = append(reasons, "Ethnicity match")
	case reqEthnicity == "" || f.ethnicity == "":
		score += ethnicityNeutralScore
	}

	// Height is presence-only: the hint is free text, so no range check.
	if strings.TrimSpace(req.HeightRange) != "" && f.hasHeight {
		score += heightScore
		reasons = append(reasons, "Height considered")
	}

	if matched := matchingSkills(splitSkills(req.Skills), f.skills); matched > 0 {
		score += skillBonus(matched)
		reasons = append(reasons, fmt.Sprintf("%d matching skills", matched))
	}

	return score, reasons
}

// scoreCastingCall rates an open casting call in an entitled location: the
// in-region base plus the shared skills bonus.
func scoreCastingCall(f talentFacts, call *models.CastingCall) (int, []string) {
	score := castingCallBase
	reasons := []string{"In your subscribed region"}

	if matched := matchingSkills(skillNames(call.Skills), f.skills); matched > 0 {
		score += skillBonus(matched)
		reasons = append(reasons, fmt.Sprintf("%d matching skills", matched))
	}

	return score, reasons
}
