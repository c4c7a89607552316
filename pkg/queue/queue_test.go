package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueue(client, zap.NewNop()), mr
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	mediaID := uuid.New()
	talentID := uuid.New()
	userID := uuid.New()
	logID := uuid.New()

	require.NoError(t, q.EnqueueRoleAlert(ctx, RoleAlertPayload{UserID: userID}))
	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{
		EmailLogID:     logID,
		EmailType:      "role_alert",
		RecipientEmail: "talent@example.com",
		Subject:        "hi",
		Body:           "body",
	}))
	require.NoError(t, q.EnqueueMediaIngest(ctx, MediaIngestPayload{
		MediaID:   mediaID,
		TalentID:  talentID,
		SourceURL: "https://cdn.example.com/reel.mp4",
	}))

	// BLPOP scans the queues in declaration order, so media drains first.
	job, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, QueueMedia, key)
	assert.Equal(t, JobTypeMediaIngest, job.Type)
	assert.Equal(t, 0, job.Attempt)
	assert.NotEmpty(t, job.ID)
	var mp MediaIngestPayload
	require.NoError(t, json.Unmarshal(job.Payload, &mp))
	assert.Equal(t, mediaID, mp.MediaID)
	assert.Equal(t, talentID, mp.TalentID)
	assert.Equal(t, "https://cdn.example.com/reel.mp4", mp.SourceURL)

	job, key, err = q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, QueueEmails, key)
	assert.Equal(t, JobTypeEmail, job.Type)
	var ep EmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &ep))
	assert.Equal(t, logID, ep.EmailLogID)
	assert.Equal(t, "talent@example.com", ep.RecipientEmail)

	job, key, err = q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, QueueAlerts, key)
	assert.Equal(t, JobTypeRoleAlert, job.Type)
	var ap RoleAlertPayload
	require.NoError(t, json.Unmarshal(job.Payload, &ap))
	assert.Equal(t, userID, ap.UserID)
}

func TestDequeueSkipsMalformedJob(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	_, err := mr.Lpush(QueueMedia, "not-json")
	require.NoError(t, err)

	job, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.Empty(t, key)
}

func TestRetryRequeuesWithIncrementedAttempt(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{EmailLogID: uuid.New(), Subject: "x"}))
	job, _, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, 1, job.Attempt)
	assert.False(t, mr.Exists(QueueDLQ))

	again, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, QueueEmails, key)
	assert.Equal(t, job.ID, again.ID)
	assert.Equal(t, 1, again.Attempt)
}

func TestRetryExhaustedMovesToDLQ(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	job := &Job{
		ID:      uuid.New().String(),
		Type:    JobTypeMediaIngest,
		Payload: json.RawMessage(`{}`),
		Attempt: MaxRetries - 1,
	}
	require.NoError(t, q.Retry(ctx, job))

	assert.False(t, mr.Exists(QueueMedia))
	items, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var dead Job
	require.NoError(t, json.Unmarshal([]byte(items[0]), &dead))
	assert.Equal(t, job.ID, dead.ID)
	assert.Equal(t, MaxRetries, dead.Attempt)
}
