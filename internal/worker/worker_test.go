package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/queue"
)

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, nil, nil, nil, nil, 60, zap.NewNop())

	err := p.Process(context.Background(), &queue.Job{ID: "j1", Type: "resize_avatar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job type")
}

func TestProcessRejectsMalformedPayloads(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, nil, nil, nil, nil, 60, zap.NewNop())

	for _, jobType := range []queue.JobType{queue.JobTypeMediaIngest, queue.JobTypeEmail, queue.JobTypeRoleAlert} {
		t.Run(string(jobType), func(t *testing.T) {
			err := p.Process(context.Background(), &queue.Job{
				ID:      "j1",
				Type:    jobType,
				Payload: json.RawMessage(`{broken`),
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unmarshal payload")
		})
	}
}

func TestDigestEmail(t *testing.T) {
	reqRole := models.SuggestedRole{
		Type:         models.RoleTypeRequirement,
		ProjectTitle: "Northern Lights",
		StudioName:   "Aurora Films",
		MatchScore:   72,
		Requirement:  &models.TalentRequirement{RoleName: "Lead Detective"},
	}
	callRole := models.SuggestedRole{
		Type:         models.RoleTypeCastingCall,
		ProjectTitle: "Harbor Run",
		StudioName:   "Dockside Studio",
		MatchScore:   65,
		CastingCall:  &models.CastingCall{Title: "Stunt Double"},
	}

	subject, body := digestEmail([]models.SuggestedRole{reqRole, callRole})
	assert.Equal(t, "2 roles match your profile", subject)
	assert.Contains(t, body, "Lead Detective in Northern Lights by Aurora Films (match score 72)")
	assert.Contains(t, body, "Stunt Double in Harbor Run by Dockside Studio (match score 65)")

	subject, _ = digestEmail([]models.SuggestedRole{reqRole})
	assert.Equal(t, "A role matches your profile", subject)
}

func TestDigestEmailCapsListedRoles(t *testing.T) {
	var hits []models.SuggestedRole
	for i := 0; i < maxAlertRoles+5; i++ {
		hits = append(hits, models.SuggestedRole{
			Type:         models.RoleTypeCastingCall,
			ProjectTitle: "Project",
			StudioName:   "Studio",
			MatchScore:   90 - i,
			CastingCall:  &models.CastingCall{Title: "Role"},
		})
	}

	subject, body := digestEmail(hits)
	assert.Equal(t, "10 roles match your profile", subject)
	assert.Equal(t, maxAlertRoles, strings.Count(body, "match score"))
}
