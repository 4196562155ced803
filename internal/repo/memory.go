package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"Plant3D/internal/review"
)

// Memory implements both repositories in process. It backs `server --memory`
// and the handler tests.
type Memory struct {
	mu      sync.RWMutex
	nextID  int
	users   map[string]memUser
	reviews map[uuid.UUID]review.Review
}

type memUser struct {
	id         int
	email, pwd string
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]memUser),
		reviews: make(map[uuid.UUID]review.Review),
	}
}

func (m *Memory) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrLoginTaken
	}
	m.nextID++
	m.users[login] = memUser{id: m.nextID, email: email, pwd: password}
	return m.nextID, nil
}

func (m *Memory) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.users[login]
	return u.id, u.pwd, nil
}

func (m *Memory) CreateReview(_ context.Context, r review.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.ID] = r
	return nil
}

func (m *Memory) GetReview(_ context.Context, id uuid.UUID) (review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	return r, nil
}

func (m *Memory) UpdateReview(_ context.Context, r review.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[r.ID]; !ok {
		return review.ErrNotFound
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *Memory) ListReviews(_ context.Context, ownerID int) ([]review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []review.Review
	for _, r := range m.reviews {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
