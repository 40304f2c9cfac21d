package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordsAndShutsDown(t *testing.T) {
	obs, err := New("finportal-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordLead(ctx, "quote")
	obs.RecordJobProcessed(ctx, "lead-email-send", "completed")
	obs.RecordJobDuration(ctx, "lead-email-send", 120*time.Millisecond, "completed")

	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordLead(ctx, "quote")
		obs.RecordJobProcessed(ctx, "x", "failed")
		obs.RecordJobDuration(ctx, "x", time.Second, "failed")
	})
	assert.NoError(t, obs.Shutdown(ctx))

	empty := &Observability{}
	assert.NotPanics(t, func() { empty.RecordLead(ctx, "quote") })
}
