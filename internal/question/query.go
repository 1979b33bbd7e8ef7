// AngelaMos | 2026
// query.go

package question

import (
	"fmt"
	"strings"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Sort string

const (
	SortNewest   Sort = "newest"
	SortOldest   Sort = "oldest"
	SortVotes    Sort = "votes"
	SortViews    Sort = "views"
	SortActivity Sort = "activity"
)

// ParseSort falls back to newest for anything unrecognised.
func ParseSort(s string) Sort {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortOldest, SortVotes, SortViews, SortActivity:
		return v
	default:
		return SortNewest
	}
}

// orderBy always ends on the id so equal keys page deterministically.
func (s Sort) orderBy() string {
	switch s {
	case SortOldest:
		return "q.created_at ASC, q.id ASC"
	case SortVotes:
		return "vote_score DESC, q.id DESC"
	case SortViews:
		return "q.view_count DESC, q.id DESC"
	case SortActivity:
		return "q.last_activity DESC, q.id DESC"
	default:
		return "q.created_at DESC, q.id DESC"
	}
}

type ListParams struct {
	Tags       []string
	Search     string
	Unanswered bool
	Sort       Sort
	Page       core.Page
}

// ParseTags splits a comma separated tags query value.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return core.NormalizeTags(strings.Split(raw, ","))
}

type listQuery struct {
	count string
	page  string
	args  []any
}

const summarySelect = `
	SELECT q.id, q.title, q.body, q.tags, q.view_count, q.accepted_answer_id,
		q.last_activity, q.created_at, q.updated_at,
		u.id AS author_id, u.first_name AS author_first_name,
		u.last_name AS author_last_name, u.username AS author_username,
		u.reputation AS author_reputation,
		vs.score AS vote_score, ac.n AS answer_count
	FROM questions q
	JOIN users u ON u.id = q.author_id
	CROSS JOIN LATERAL (
		SELECT COUNT(*) FILTER (WHERE v.direction = 'up')
		     - COUNT(*) FILTER (WHERE v.direction = 'down') AS score
		FROM votes v
		WHERE v.target_type = 'question' AND v.target_id = q.id
	) vs
	CROSS JOIN LATERAL (
		SELECT COUNT(*) AS n
		FROM answers a
		WHERE a.question_id = q.id AND a.is_active
	) ac`

// buildListQuery translates params into a count query and a page query
// over the same predicate. The page query takes two extra trailing args
// for limit and offset.
func buildListQuery(p ListParams) listQuery {
	conditions := []string{"q.is_active"}
	var args []any
	argIdx := 1

	if tags := core.NormalizeTags(p.Tags); len(tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("q.tags && $%d::text[]", argIdx))
		args = append(args, core.StringList(tags))
		argIdx++
	}

	if search := strings.TrimSpace(p.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(q.title ILIKE $%[1]d OR q.body ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(q.tags) t WHERE t ILIKE $%[1]d))",
			argIdx))
		args = append(args, "%"+core.EscapeLike(search)+"%")
		argIdx++
	}

	if p.Unanswered {
		conditions = append(conditions,
			"NOT EXISTS (SELECT 1 FROM answers a0 WHERE a0.question_id = q.id AND a0.is_active)")
	}

	where := strings.Join(conditions, " AND ")

	return listQuery{
		count: "SELECT COUNT(*) FROM questions q WHERE " + where,
		page: fmt.Sprintf("%s\n\tWHERE %s\n\tORDER BY %s\n\tLIMIT $%d OFFSET $%d",
			summarySelect, where, p.Sort.orderBy(), argIdx, argIdx+1),
		args: args,
	}
}
