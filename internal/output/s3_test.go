package output

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/store"
)

type memBucket struct {
	objects map[string]string
	err     error
}

func (m *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkUploadsTables(t *testing.T) {
	bucket := &memBucket{}
	sink := NewS3Sink(bucket, "snapshots", "season", nil)

	err := sink.Checkpoint(context.Background(), backfill.Snapshot{
		Label:         "20162017",
		Events:        events(3),
		Shifts:        []store.Shift{{GameID: "2016020001", Player: "AUSTON MATTHEWS"}},
		IncludeShifts: true,
	})
	require.NoError(t, err)

	pbp, ok := bucket.objects["snapshots/season/nhl_pbp20162017.csv"]
	require.True(t, ok)
	lines := strings.Split(strings.TrimSpace(pbp), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Game_Id,Date,Period,Event"))

	_, ok = bucket.objects["snapshots/season/nhl_shifts20162017.csv"]
	assert.True(t, ok)
}

func TestS3SinkSkipsShiftsWhenNotRequested(t *testing.T) {
	bucket := &memBucket{}
	sink := NewS3Sink(bucket, "snapshots", "", nil)
	require.NoError(t, sink.Checkpoint(context.Background(), backfill.Snapshot{Label: "20162017", Events: events(1)}))
	assert.Len(t, bucket.objects, 1)
	assert.Contains(t, bucket.objects, "snapshots/nhl_pbp20162017.csv")
}

func TestS3SinkWrapsUploadError(t *testing.T) {
	sink := NewS3Sink(&memBucket{err: errors.New("AccessDenied")}, "snapshots", "", nil)
	err := sink.Checkpoint(context.Background(), backfill.Snapshot{Label: "20162017"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://snapshots/nhl_pbp20162017.csv")
	assert.Contains(t, err.Error(), "AccessDenied")
}
