package suggestions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlane/backend/internal/models"
)

func intp(v int) *int { return &v }

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		asOf time.Time
		want int
	}{
		{
			name: "birthday already passed this year",
			dob:  time.Date(2001, time.March, 2, 0, 0, 0, 0, time.UTC),
			asOf: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: 25,
		},
		{
			name: "birthday later this year",
			dob:  time.Date(2001, time.November, 20, 0, 0, 0, 0, time.UTC),
			asOf: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: 24,
		},
		{
			name: "birthday today counts as reached",
			dob:  time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC),
			asOf: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: 26,
		},
		{
			name: "day before birthday in same month",
			dob:  time.Date(2000, time.June, 16, 0, 0, 0, 0, time.UTC),
			asOf: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: 25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ageAt(tt.dob, tt.asOf))
		})
	}
}

func TestScoreRequirement(t *testing.T) {
	asOf := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	// Age 25 at asOf.
	dob := time.Date(2001, time.March, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		profile     models.TalentProfile
		req         models.TalentRequirement
		wantScore   int
		wantReasons []string
	}{
		{
			name: "gender age ethnicity and one skill match",
			profile: models.TalentProfile{
				Gender:      "Female",
				Ethnicity:   "Asian",
				DateOfBirth: &dob,
				Skills:      []string{"dance"},
			},
			req: models.TalentRequirement{
				Gender:    "female",
				AgeMin:    intp(18),
				AgeMax:    intp(30),
				Ethnicity: "asian",
				Skills:    "dance,singing",
			},
			wantScore:   60,
			wantReasons: []string{"Gender match", "Age match", "Ethnicity match", "1 matching skills"},
		},
		{
			name:        "unconstrained requirement and blank profile score neutral points only",
			profile:     models.TalentProfile{},
			req:         models.TalentRequirement{},
			wantScore:   25,
			wantReasons: []string{},
		},
		{
			name:        "gender mismatch earns nothing for the factor",
			profile:     models.TalentProfile{Gender: "Male"},
			req:         models.TalentRequirement{Gender: "Female"},
			wantScore:   15,
			wantReasons: []string{},
		},
		{
			name:        "requirement gender with unknown talent gender stays neutral",
			profile:     models.TalentProfile{},
			req:         models.TalentRequirement{Gender: "female"},
			wantScore:   25,
			wantReasons: []string{},
		},
		{
			name:        "minimum-only age bound satisfied",
			profile:     models.TalentProfile{DateOfBirth: &dob},
			req:         models.TalentRequirement{AgeMin: intp(18)},
			wantScore:   30,
			wantReasons: []string{"Above minimum age"},
		},
		{
			name:        "maximum-only age bound satisfied",
			profile:     models.TalentProfile{DateOfBirth: &dob},
			req:         models.TalentRequirement{AgeMax: intp(30)},
			wantScore:   30,
			wantReasons: []string{"Below maximum age"},
		},
		{
			name:        "age outside stated range earns nothing",
			profile:     models.TalentProfile{DateOfBirth: &dob},
			req:         models.TalentRequirement{AgeMin: intp(30), AgeMax: intp(40)},
			wantScore:   15,
			wantReasons: []string{},
		},
		{
			name:        "age range with unknown age stays neutral",
			profile:     models.TalentProfile{},
			req:         models.TalentRequirement{AgeMin: intp(18), AgeMax: intp(30)},
			wantScore:   25,
			wantReasons: []string{},
		},
		{
			name:        "ethnicity containment counts as match",
			profile:     models.TalentProfile{Ethnicity: "African American"},
			req:         models.TalentRequirement{Ethnicity: "african"},
			wantScore:   35,
			wantReasons: []string{"Ethnicity match"},
		},
		{
			name:        "ethnicity mismatch earns nothing for the factor",
			profile:     models.TalentProfile{Ethnicity: "Asian"},
			req:         models.TalentRequirement{Ethnicity: "Hispanic"},
			wantScore:   20,
			wantReasons: []string{},
		},
		{
			name:        "height hint plus talent height",
			profile:     models.TalentProfile{HeightCM: intp(170)},
			req:         models.TalentRequirement{HeightRange: `5'6"-6'0"`},
			wantScore:   35,
			wantReasons: []string{"Height considered"},
		},
		{
			name:        "talent height without a hint is ignored",
			profile:     models.TalentProfile{HeightCM: intp(170)},
			req:         models.TalentRequirement{},
			wantScore:   25,
			wantReasons: []string{},
		},
		{
			name:        "skill substrings match in either direction",
			profile:     models.TalentProfile{Skills: []string{"stage dance", "sing"}},
			req:         models.TalentRequirement{Skills: "dance, singing"},
			wantScore:   35,
			wantReasons: []string{"2 matching skills"},
		},
		{
			name:        "skill bonus caps at six matches worth",
			profile:     models.TalentProfile{Skills: []string{"a", "b", "c", "d", "e", "f"}},
			req:         models.TalentRequirement{Skills: "a,b,c,d,e,f"},
			wantScore:   50,
			wantReasons: []string{"6 matching skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := factsFor(&tt.profile, asOf)
			score, reasons := scoreRequirement(facts, &tt.req)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantReasons, reasons)
		})
	}
}

func TestScoreRequirement_Deterministic(t *testing.T) {
	asOf := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	dob := time.Date(2001, time.March, 2, 0, 0, 0, 0, time.UTC)
	profile := models.TalentProfile{
		Gender: "Female", Ethnicity: "Asian", DateOfBirth: &dob, HeightCM: intp(165),
		Skills: []string{"dance", "singing", "stunt"},
	}
	req := models.TalentRequirement{
		Gender: "female", AgeMin: intp(18), AgeMax: intp(30),
		Ethnicity: "asian", HeightRange: "160-175", Skills: "dance,singing,stunt",
	}

	facts := factsFor(&profile, asOf)
	firstScore, firstReasons := scoreRequirement(facts, &req)
	for i := 0; i < 10; i++ {
		score, reasons := scoreRequirement(facts, &req)
		require.Equal(t, firstScore, score)
		require.Equal(t, firstReasons, reasons)
	}
}

func TestScoreCastingCall(t *testing.T) {
	asOf := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	callSkills := func(names ...string) []models.Skill {
		out := make([]models.Skill, len(names))
		for i, n := range names {
			out[i] = models.Skill{ID: uuid.New(), Name: n}
		}
		return out
	}

	tests := []struct {
		name        string
		skills      []string
		call        models.CastingCall
		wantScore   int
		wantReasons []string
	}{
		{
			name:        "base score with no skills on either side",
			skills:      nil,
			call:        models.CastingCall{},
			wantScore:   40,
			wantReasons: []string{"In your subscribed region"},
		},
		{
			name:        "three of four structured skills match",
			skills:      []string{"Dance", "singing", "stunt"},
			call:        models.CastingCall{Skills: callSkills("dance", "Singing", "stunts", "archery")},
			wantScore:   55,
			wantReasons: []string{"In your subscribed region", "3 matching skills"},
		},
		{
			name:        "skill bonus caps at the same ceiling",
			skills:      []string{"a", "b", "c", "d", "e", "f"},
			call:        models.CastingCall{Skills: callSkills("a", "b", "c", "d", "e", "f")},
			wantScore:   65,
			wantReasons: []string{"In your subscribed region", "6 matching skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := factsFor(&models.TalentProfile{Skills: tt.skills}, asOf)
			score, reasons := scoreCastingCall(facts, &tt.call)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantReasons, reasons)
		})
	}
}
