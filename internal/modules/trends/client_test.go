package trends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHowsItTrending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)

		var body struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "howsItTrending")
		assert.Equal(t, "apple", body.Variables["keyword"])
		assert.Equal(t, "2023-3-10", body.Variables["startDate"])
		assert.Equal(t, "2023-3-11", body.Variables["endDate"])

		w.Write([]byte(`{"data": {"howsItTrending": {
			"keyword": "apple",
			"trending_index": 1.4,
			"articles_for_target_period": 12,
			"average_article_count_per_period": 8.5,
			"target_period_start_date": "2023-3-10"
		}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	point, err := client.HowsItTrending(context.Background(), "apple", "2023-3-10", "2023-3-11")
	require.NoError(t, err)

	assert.Equal(t, "apple", point.Keyword)
	assert.Equal(t, 1.4, point.TrendingIndex)
	assert.Equal(t, 12, point.ArticlesForTargetPeriod)
	assert.Equal(t, 8.5, point.AverageArticleCountPerPeriod)
	assert.Equal(t, "2023-3-10", point.TargetPeriodStartDate)
}

func TestHowsItTrendingErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"http error status",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) },
		},
		{
			"graphql errors array",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"errors": [{"message": "keyword required"}]}`))
			},
		},
		{
			"garbage body",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, zerolog.Nop())
			_, err := client.HowsItTrending(context.Background(), "apple", "2023-3-10", "2023-3-11")
			assert.Error(t, err)
		})
	}
}

func TestFormatQueryDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			// Month is zero-based on the wire: April emits 3
			name: "april",
			in:   time.Date(2023, time.April, 15, 10, 0, 0, 0, time.UTC),
			want: "2023-3-15",
		},
		{
			// January emits month 0
			name: "january",
			in:   time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
			want: "2024-0-2",
		},
		{
			name: "december",
			in:   time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: "2023-11-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatQueryDate(tt.in))
		})
	}
}

func TestParsePeriodDateRoundTrip(t *testing.T) {
	in := time.Date(2023, time.April, 15, 0, 0, 0, 0, time.UTC)

	got, ok := parsePeriodDate(FormatQueryDate(in))
	require.True(t, ok)
	assert.True(t, got.Equal(in))
}
