// AngelaMos | 2026
// query_test.go

package question

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/core"
)

func TestParseSort(t *testing.T) {
	tests := map[string]Sort{
		"":          SortNewest,
		"newest":    SortNewest,
		"oldest":    SortOldest,
		"VOTES":     SortVotes,
		" views ":   SortViews,
		"activity":  SortActivity,
		"relevance": SortNewest,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseSort(in), "input %q", in)
	}
}

func TestSortAlwaysTieBreaksOnID(t *testing.T) {
	for _, s := range []Sort{SortNewest, SortOldest, SortVotes, SortViews, SortActivity} {
		order := s.orderBy()
		assert.True(t, strings.HasSuffix(order, "q.id DESC") || strings.HasSuffix(order, "q.id ASC"), order)
	}
	assert.Equal(t, "q.created_at ASC, q.id ASC", SortOldest.orderBy())
}

func TestBuildListQueryActiveOnly(t *testing.T) {
	q := buildListQuery(ListParams{Sort: SortNewest, Page: core.NewPage(1, 10, 10)})

	assert.Equal(t, "SELECT COUNT(*) FROM questions q WHERE q.is_active", q.count)
	assert.Contains(t, q.page, "WHERE q.is_active\n")
	assert.Contains(t, q.page, "ORDER BY q.created_at DESC, q.id DESC")
	assert.Contains(t, q.page, "LIMIT $1 OFFSET $2")
	assert.Empty(t, q.args)
}

func TestBuildListQueryAllFilters(t *testing.T) {
	q := buildListQuery(ListParams{
		Tags:       []string{"Go", "go", " SQL "},
		Search:     "50%_off",
		Unanswered: true,
		Sort:       SortVotes,
	})

	require.Len(t, q.args, 2)
	assert.Equal(t, core.StringList{"go", "sql"}, q.args[0])
	assert.Equal(t, `%50\%\_off%`, q.args[1])

	assert.Contains(t, q.count, "q.tags && $1::text[]")
	assert.Contains(t, q.count, "q.title ILIKE $2 OR q.body ILIKE $2")
	assert.Contains(t, q.count, "t ILIKE $2")
	assert.Contains(t, q.count, "NOT EXISTS (SELECT 1 FROM answers a0 WHERE a0.question_id = q.id AND a0.is_active)")
	assert.Contains(t, q.page, "ORDER BY vote_score DESC, q.id DESC")
	assert.Contains(t, q.page, "LIMIT $3 OFFSET $4")

	countWhere := strings.TrimPrefix(q.count, "SELECT COUNT(*) FROM questions q WHERE ")
	assert.Contains(t, q.page, countWhere, "count and page share one predicate")
}

func TestBuildListQueryIgnoresBlankFilters(t *testing.T) {
	q := buildListQuery(ListParams{Tags: []string{" ", ""}, Search: "   "})
	assert.Empty(t, q.args)
	assert.Contains(t, q.page, "LIMIT $1 OFFSET $2")
}

func TestParseTags(t *testing.T) {
	assert.Nil(t, ParseTags(""))
	assert.Equal(t, []string{"go", "postgres"}, ParseTags("Go, postgres,,GO"))
}
