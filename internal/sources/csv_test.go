package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := `metric,value,region,function,timestamp
fx_volatility,18,LATAM,,2024-11-01
ai_wage_growth,22.5,NA,AI,2024-11-02T09:30:00Z

ads_exec_postings,-30,EMEA,Ads,2024-11-03T10:00:00+02:00
`
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	want := []insight.Observation{
		{Metric: "fx_volatility", Value: 18, Region: "LATAM", Timestamp: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		{Metric: "ai_wage_growth", Value: 22.5, Region: "NA", Function: "AI", Timestamp: time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)},
		{Metric: "ads_exec_postings", Value: -30, Region: "EMEA", Function: "Ads", Timestamp: time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, want, got)
}

func TestReadCSV_ColumnOrder(t *testing.T) {
	in := "Timestamp,Region,Metric,Value,Function\n2024-01-01,NA,org_changes,12,\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "org_changes", got[0].Metric)
	assert.Equal(t, 12.0, got[0].Value)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":          {"", "missing header"},
		"missing column": {"metric,value,region\n", `missing column "function"`},
		"bad value":      {"metric,value,region,function,timestamp\nx,abc,NA,,2024-01-01\n", "line 2: value"},
		"bad timestamp":  {"metric,value,region,function,timestamp\nx,1,NA,,yesterday\n", "line 2: timestamp"},
		"no region":      {"metric,value,region,function,timestamp\nx,1,,,2024-01-01\n", "region is required"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
