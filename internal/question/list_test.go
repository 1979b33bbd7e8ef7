// AngelaMos | 2026
// list_test.go

package question

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
)

// catalogRepo answers List from the in-memory questions, applying the
// unanswered and tag filters, newest-first order with an id tie-break and
// the requested page window.
type catalogRepo struct {
	*fakeRepo
}

func (c catalogRepo) List(_ context.Context, params ListParams) ([]Summary, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []Summary
	for _, q := range c.questions {
		if !q.IsActive {
			continue
		}
		answers := len(c.answers[q.ID])
		if params.Unanswered && answers > 0 {
			continue
		}
		if len(params.Tags) > 0 && !slices.ContainsFunc(params.Tags, func(t string) bool {
			return slices.Contains(q.Tags, t)
		}) {
			continue
		}
		matched = append(matched, Summary{
			ID:          q.ID,
			Title:       q.Title,
			Tags:        q.Tags,
			AnswerCount: answers,
			CreatedAt:   q.CreatedAt,
			Author:      Author{AuthorID: q.AuthorID},
		})
	}

	slices.SortFunc(matched, func(a, b Summary) int {
		if byTime := b.CreatedAt.Compare(a.CreatedAt); byTime != 0 {
			return byTime
		}
		return strings.Compare(b.ID, a.ID)
	})

	total := len(matched)
	start := min(params.Page.Offset(), total)
	end := min(start+params.Page.Size, total)
	return matched[start:end], total, nil
}

// seedCatalog adds n questions, every third one without answers. Pairs of
// questions share a creation time so ordering relies on the id.
func seedCatalog(repo *fakeRepo, n int) (all, unanswered []string) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range n {
		id := core.NewID()
		repo.questions[id] = &Question{
			ID:        id,
			Title:     fmt.Sprintf("Question %d", i),
			Tags:      core.StringList{"go"},
			AuthorID:  author.UserID,
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i/2) * time.Minute),
		}
		all = append(all, id)
		if i%3 == 0 {
			unanswered = append(unanswered, id)
			continue
		}
		repo.answers[id] = []AnswerView{{ID: core.NewID(), Body: "An answer with enough text"}}
	}
	return all, unanswered
}

func listPage(t *testing.T, r http.Handler, query string) ListResponse {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions?"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func newCatalogRouter(repo *fakeRepo) chi.Router {
	h := NewHandler(NewService(catalogRepo{fakeRepo: repo}, nil), nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Guards{})
	return r
}

func TestListPagesAreDisjointAndCoverTotal(t *testing.T) {
	repo := newFakeRepo()
	all, _ := seedCatalog(repo, 23)
	r := newCatalogRouter(repo)

	seen := map[string]int{}
	var pages int
	for page := 1; ; page++ {
		resp := listPage(t, r, fmt.Sprintf("page=%d&limit=5", page))
		assert.Equal(t, len(all), resp.Pagination.Total)
		assert.Equal(t, 5, resp.Pagination.TotalPages)
		if len(resp.Questions) == 0 {
			assert.False(t, resp.Pagination.HasNext)
			break
		}
		pages++
		for _, q := range resp.Questions {
			seen[q.ID]++
		}
		assert.Equal(t, page < 5, resp.Pagination.HasNext)
	}

	assert.Equal(t, 5, pages)
	assert.Len(t, seen, len(all))
	for id, n := range seen {
		assert.Equal(t, 1, n, "question %s listed on more than one page", id)
	}
}

func TestListUnansweredReturnsOnlyEmptyQuestions(t *testing.T) {
	repo := newFakeRepo()
	_, unanswered := seedCatalog(repo, 12)
	r := newCatalogRouter(repo)

	resp := listPage(t, r, "unanswered=true&limit=100")

	assert.Equal(t, len(unanswered), resp.Pagination.Total)
	got := make([]string, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		assert.Zero(t, q.AnswerCount)
		got = append(got, q.ID)
	}
	assert.ElementsMatch(t, unanswered, got)
}

func TestListHugePageIsEmptyNotAnError(t *testing.T) {
	repo := newFakeRepo()
	seedCatalog(repo, 4)
	r := newCatalogRouter(repo)

	resp := listPage(t, r, "page=9223372036854775807&limit=10")

	assert.Empty(t, resp.Questions)
	assert.Equal(t, 4, resp.Pagination.Total)
	assert.Equal(t, core.MaxPageNumber, resp.Pagination.Page)
	assert.False(t, resp.Pagination.HasNext)
}
