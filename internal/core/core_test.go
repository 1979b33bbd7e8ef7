// AngelaMos | 2026
// core_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, CodeNotFound, "question not found"},
		{"forbidden", ErrForbidden, http.StatusForbidden, CodeForbidden, "insufficient permissions"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, "authentication required"},
		{"input", Invalid("vote_type must be up or down"), http.StatusBadRequest, CodeValidation, "vote_type must be up or down"},
		{"bare input", ErrInvalidInput, http.StatusBadRequest, CodeValidation, "invalid input"},
		{"duplicate", ErrDuplicateKey, http.StatusConflict, CodeConflict, "question already exists"},
		{"expired", ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired, "token has expired"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, CodeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "question")
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestClassifyKeepsAppError(t *testing.T) {
	appErr := ForbiddenError("only the question author can accept an answer")
	got := Classify(fmt.Errorf("accept: %w", appErr), "answer")
	assert.Same(t, appErr, got)
}

func TestJSONErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, NotFoundError("answer"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "answer not found", body.Error.Message)
}

func TestInternalErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(w, errors.New("pq: relation does not exist"), "question")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestOKEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]int{"vote_score": 2})

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data["vote_score"])
}

func TestFormatValidationError(t *testing.T) {
	type req struct {
		Title string `validate:"required,min=10"`
		Kind  string `validate:"oneof=up down"`
	}

	err := validator.New().Struct(req{Title: "short", Kind: "sideways"})
	msg := FormatValidationError(err)

	assert.Contains(t, msg, "title must be at least 10 characters")
	assert.Contains(t, msg, "kind must be one of: up down")
	assert.Equal(t, "invalid request", FormatValidationError(errors.New("x")))
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		size       int
		want       Page
		wantOffset int
	}{
		{"defaults", 0, 0, Page{Number: 1, Size: 10}, 0},
		{"size capped", 3, 500, Page{Number: 3, Size: 100}, 200},
		{"explicit", 2, 20, Page{Number: 2, Size: 20}, 20},
		{"third page", 3, 10, Page{Number: 3, Size: 10}, 20},
		{"number capped", math.MaxInt, 10, Page{Number: MaxPageNumber, Size: 10}, (MaxPageNumber - 1) * 10},
		{"number capped at max size", math.MaxInt, MaxPageSize, Page{Number: MaxPageNumber, Size: MaxPageSize}, (MaxPageNumber - 1) * MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.number, tt.size, 10)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.GreaterOrEqual(t, p.Offset(), 0)
		})
	}
}

func TestPageFromQueryHugePageStaysInRange(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/questions?page=9223372036854775807&limit=10", nil)
	p := PageFromQuery(r, 10)

	assert.Equal(t, MaxPageNumber, p.Number)
	assert.GreaterOrEqual(t, p.Offset(), 0)

	meta := NewPagination(p, 25)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(Page{Number: 2, Size: 10}, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(Page{Number: 3, Size: 10}, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(Page{Number: 1, Size: 10}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestPageFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/questions?page=4&limit=abc", nil)
	p := PageFromQuery(r, 10)
	assert.Equal(t, 4, p.Number)
	assert.Equal(t, 10, p.Size)

	r = httptest.NewRequest(http.MethodGet, "/v1/questions?unanswered=true", nil)
	assert.True(t, QueryBool(r, "unanswered"))
	assert.False(t, QueryBool(r, "missing"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `snake\_case`, EscapeLike("snake_case"))
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
}

func TestStringListValue(t *testing.T) {
	v, err := StringList{"go", `say "hi"`}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"go","say \"hi\""}`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestStringListScan(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan(`{go,postgres,"two words"}`))
	assert.Equal(t, StringList{"go", "postgres", "two words"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}
