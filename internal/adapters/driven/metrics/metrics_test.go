package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/core/domain"
)

func TestObserver_RecordsStages(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewObserver(reg)
	require.NoError(t, err)

	o.StageStarted(domain.StageLoad)
	o.StageFinished(domain.StageLoad, 10*time.Millisecond, nil)
	o.StageFinished(domain.StageSearch, time.Second, fmt.Errorf("%w: boom", domain.ErrService))
	o.Milestone(domain.StageLoad, "loaded")
	o.Milestone(domain.StageLoad, "again")

	assert.Equal(t, 1.0, testutil.ToFloat64(o.stageFailures.WithLabelValues("search", "service")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.milestones.WithLabelValues("load")))
	assert.Equal(t, 2, testutil.CollectAndCount(o.stageDuration))
}

func TestObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)

	assert.Error(t, err)
}

func TestObserver_WriteTextfile(t *testing.T) {
	o, err := NewObserver(nil)
	require.NoError(t, err)
	o.StageFinished(domain.StageAlign, 2*time.Second, nil)

	path := filepath.Join(t.TempDir(), domain.MetricsFile)
	require.NoError(t, o.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "meows_pipeline_stage_duration_seconds_count{stage=\"align\",status=\"ok\"} 1"), text)
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{context.Canceled, "cancelled"},
		{domain.ErrInputFormat, "input_format"},
		{&domain.FetchError{ID: "1", Err: errors.New("x")}, "fetch"},
		{&domain.ToolError{Tool: "aligner", ExitCode: 1}, "external_tool"},
		{fmt.Errorf("%w: dup", domain.ErrArtifactExists), "artifact_exists"},
		{&domain.StageError{Stage: domain.StageRetrieve, Err: domain.ErrNoRelatedSequences}, "no_related_sequences"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}
