// AngelaMos | 2026
// service_test.go

package vote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
	"github.com/carterperez-dev/stackit/internal/notification"
)

type voteKey struct {
	kind   Kind
	target string
	user   string
}

type entity struct {
	author     string
	questionID string
	active     bool
	touched    int
}

// memLedger serializes WithinTx the way the row lock does.
type memLedger struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	entities map[Kind]map[string]*entity
	votes    map[voteKey]Direction
	writes   int
}

func newMemLedger() *memLedger {
	return &memLedger{
		entities: map[Kind]map[string]*entity{KindQuestion: {}, KindAnswer: {}},
		votes:    map[voteKey]Direction{},
	}
}

func (m *memLedger) addQuestion(id, author string, active bool) {
	m.entities[KindQuestion][id] = &entity{author: author, questionID: id, active: active}
}

func (m *memLedger) addAnswer(id, questionID, author string) {
	m.entities[KindAnswer][id] = &entity{author: author, questionID: questionID, active: true}
}

func (m *memLedger) WithinTx(_ context.Context, fn func(repo Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *memLedger) LockTarget(_ context.Context, kind Kind, id string) (*Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[kind][id]
	if !ok || !e.active {
		return nil, fmt.Errorf("lock %s: %w", kind, core.ErrNotFound)
	}
	if kind == KindAnswer {
		if q, ok := m.entities[KindQuestion][e.questionID]; ok && !q.active {
			return nil, fmt.Errorf("lock %s: %w", kind, core.ErrNotFound)
		}
	}
	return &Target{Kind: kind, ID: id, AuthorID: e.author, QuestionID: e.questionID, QuestionTitle: "Channels"}, nil
}

func (m *memLedger) GetVote(_ context.Context, kind Kind, target, user string) (Direction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.votes[voteKey{kind, target, user}], nil
}

func (m *memLedger) PutVote(_ context.Context, kind Kind, target, user string, dir Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.votes[voteKey{kind, target, user}] = dir
	return nil
}

func (m *memLedger) DeleteVote(_ context.Context, kind Kind, target, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	delete(m.votes, voteKey{kind, target, user})
	return nil
}

func (m *memLedger) TouchActivity(_ context.Context, kind Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[kind][id].touched++
	return nil
}

func (m *memLedger) Score(_ context.Context, kind Kind, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score := 0
	for k, d := range m.votes {
		if k.kind == kind && k.target == id {
			score += d.weight()
		}
	}
	return score, nil
}

func (m *memLedger) UserVotes(_ context.Context, kind Kind, user string, ids []string) (map[string]Direction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Direction{}
	for _, id := range ids {
		if d, ok := m.votes[voteKey{kind, id, user}]; ok {
			out[id] = d
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

const (
	q1 = "0b8f6a52-54f4-4d8e-9a3c-0f5f0c1e2a01"
	r1 = "0b8f6a52-54f4-4d8e-9a3c-0f5f0c1e2a02"
)

var (
	alice = access.Actor{UserID: "alice", Role: access.RoleUser, Name: "Alice"}
	bob   = access.Actor{UserID: "bob", Role: access.RoleUser, Name: "Bob"}
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		existing  Direction
		requested Direction
		next      Direction
		action    Action
		delta     int
	}{
		{"new up", None, Up, Up, ActionAdded, 1},
		{"new down", None, Down, Down, ActionAdded, -1},
		{"repeat up", Up, Up, None, ActionRemoved, -1},
		{"repeat down", Down, Down, None, ActionRemoved, 1},
		{"flip to down", Up, Down, Down, ActionChanged, -2},
		{"flip to up", Down, Up, Up, ActionChanged, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, action, delta := Resolve(tt.existing, tt.requested)
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.delta, delta)
		})
	}
}

func TestCastUpUpDownScenario(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, true)
	notes := &recordingNotifier{}
	svc := NewService(ledger, notes)
	ctx := context.Background()

	res, err := svc.Cast(ctx, bob, KindQuestion, q1, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, Up, res.Vote)
	assert.Equal(t, None, res.Previous)
	assert.Equal(t, ActionAdded, res.Action)

	res, err = svc.Cast(ctx, bob, KindQuestion, q1, "up")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, None, res.Vote)
	assert.Equal(t, Up, res.Previous)
	assert.Equal(t, ActionRemoved, res.Action)

	res, err = svc.Cast(ctx, bob, KindQuestion, q1, "down")
	require.NoError(t, err)
	assert.Equal(t, -1, res.Score)
	assert.Equal(t, Down, res.Vote)
	assert.Equal(t, ActionAdded, res.Action)

	assert.Equal(t, 3, ledger.entities[KindQuestion][q1].touched)

	require.Len(t, notes.events, 2)
	assert.Equal(t, notification.TypeQuestionVoted, notes.events[0].Type)
	assert.Equal(t, alice.UserID, notes.events[0].Recipient)
	assert.Equal(t, bob.UserID, notes.events[0].Sender)
	assert.Contains(t, notes.events[1].Title, "downvote")
}

func TestCastOwnEntityForbidden(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, true)
	svc := NewService(ledger, nil)

	_, err := svc.Cast(context.Background(), alice, KindQuestion, q1, "up")
	assert.ErrorIs(t, err, core.ErrForbidden)

	score, err := ledger.Score(context.Background(), KindQuestion, q1)
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Zero(t, ledger.writes)
}

func TestCastValidationBeforeMutation(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, false)
	svc := NewService(ledger, nil)
	ctx := context.Background()

	_, err := svc.Cast(ctx, bob, KindQuestion, q1, "sideways")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Cast(ctx, bob, KindQuestion, q1, "up")
	assert.ErrorIs(t, err, core.ErrNotFound, "inactive question")

	_, err = svc.Cast(ctx, bob, KindQuestion, "nope", "up")
	assert.ErrorIs(t, err, core.ErrNotFound)

	guest := access.Actor{UserID: "carol", Role: access.RoleGuest}
	_, err = svc.Cast(ctx, guest, KindQuestion, q1, "up")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Cast(ctx, access.Actor{Role: access.RoleGuest}, KindQuestion, q1, "up")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	assert.Zero(t, ledger.writes)
}

func TestCastAnswerOnInactiveQuestion(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, false)
	ledger.addAnswer(r1, q1, "carol")
	svc := NewService(ledger, nil)

	_, err := svc.Cast(context.Background(), bob, KindAnswer, r1, "up")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCastAnswerNotifiesAuthor(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, true)
	ledger.addAnswer(r1, q1, "carol")
	notes := &recordingNotifier{}
	svc := NewService(ledger, notes)

	_, err := svc.Cast(context.Background(), bob, KindAnswer, r1, "up")
	require.NoError(t, err)
	_, err = svc.Cast(context.Background(), bob, KindAnswer, r1, "down")
	require.NoError(t, err)

	require.Len(t, notes.events, 2)
	ev := notes.events[0]
	assert.Equal(t, notification.TypeAnswerVoted, ev.Type)
	assert.Equal(t, "carol", ev.Recipient)
	assert.Equal(t, r1, ev.AnswerID)
	assert.Equal(t, q1, ev.QuestionID)
}

func TestCastConcurrentVotersAllCounted(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, true)
	svc := NewService(ledger, nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			voter := access.Actor{UserID: fmt.Sprintf("voter-%d", i), Role: access.RoleUser}
			_, err := svc.Cast(context.Background(), voter, KindQuestion, q1, "up")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	score, err := ledger.Score(context.Background(), KindQuestion, q1)
	require.NoError(t, err)
	assert.Equal(t, 20, score)
}

func TestCastHandler(t *testing.T) {
	ledger := newMemLedger()
	ledger.addQuestion(q1, alice.UserID, true)
	h := NewHandler(NewService(ledger, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), bob)))
		})
	})
	r.Post("/questions/{questionID}/vote", h.Cast(KindQuestion, "questionID"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions/"+q1+"/vote", strings.NewReader(`{"vote_type":"up"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"success":true,"data":{"vote_score":1,"user_vote":"up","previous_vote":null,"action":"added"}}`,
		w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions/"+q1+"/vote", strings.NewReader(`{"type":"up"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_vote":null`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions/"+q1+"/vote", strings.NewReader(`{"vote_type":"meh"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), core.CodeValidation)
}
