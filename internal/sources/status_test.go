package sources

import (
	"testing"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatuses(t *testing.T) {
	latest := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	got := Statuses(Descriptors(false), []store.SourceCount{
		{Source: "manual-import", Count: 3, Latest: latest},
		{Source: SourceSeed, Count: 40, Latest: latest},
	})

	require.Len(t, got, 6)
	assert.Equal(t, SourceFRED, got[0].Name)
	assert.False(t, got[0].Configured)
	assert.False(t, got[0].Active)
	assert.Nil(t, got[0].LastObserved)

	seed := got[4]
	assert.Equal(t, SourceSeed, seed.Name)
	assert.True(t, seed.Active)
	assert.Equal(t, 40, seed.Observations)
	require.NotNil(t, seed.LastObserved)
	assert.True(t, seed.LastObserved.Equal(latest))

	extra := got[5]
	assert.Equal(t, "manual-import", extra.Name)
	assert.True(t, extra.Configured)
	assert.True(t, extra.Active)
}

func TestFREDClient_Configured(t *testing.T) {
	assert.False(t, NewFREDClient("", "").Configured())
	assert.True(t, NewFREDClient("key", "").Configured())
	assert.True(t, Descriptors(true)[0].Configured)
}
