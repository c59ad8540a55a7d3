// Package memstore 进程内基线存储：map + 插入序切片。
// 与 gorm 仓库实现同一组 domain 接口，db.driver=memory 时启用。
package memstore

import (
	"sync"
	"time"

	"indierise/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User // key: email
	userOrder []string
	books     map[string]domain.Book // key: book ID
	bookOrder []string
	promos    []domain.PromoPost
}

func New() *Store {
	return &Store{
		users: make(map[string]domain.User),
		books: make(map[string]domain.Book),
	}
}

// Users / Books / Promos 返回各集合的仓库视图（同一底层锁）
func (s *Store) Users() domain.UserRepository   { return (*userRepo)(s) }
func (s *Store) Books() domain.BookRepository   { return (*bookRepo)(s) }
func (s *Store) Promos() domain.PromoRepository { return (*promoRepo)(s) }

// ---------- users ----------

type userRepo Store

func (r *userRepo) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.Email]; exists {
		return domain.ErrDuplicateIdentity
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.Email] = *u
	r.userOrder = append(r.userOrder, u.Email)
	return nil
}

func (r *userRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	out := u
	return &out, nil
}

func (r *userRepo) List() ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.userOrder))
	for _, email := range r.userOrder {
		if u, ok := r.users[email]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) Update(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.users[u.Email] = *u
	return nil
}

func (r *userRepo) Delete(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, email)
	filtered := r.userOrder[:0]
	for _, e := range r.userOrder {
		if e != email {
			filtered = append(filtered, e)
		}
	}
	r.userOrder = filtered
	return nil
}

// ---------- books ----------

type bookRepo Store

func (r *bookRepo) Create(b *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	if _, exists := r.books[b.ID]; !exists {
		r.bookOrder = append(r.bookOrder, b.ID)
	}
	r.books[b.ID] = *b
	return nil
}

func (r *bookRepo) FindByID(id string) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	out := b
	return &out, nil
}

func (r *bookRepo) list(keep func(domain.Book) bool) []domain.Book {
	out := make([]domain.Book, 0, len(r.bookOrder))
	for _, id := range r.bookOrder {
		if b, ok := r.books[id]; ok && keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *bookRepo) ListApproved() ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(b domain.Book) bool { return b.Approved }), nil
}

func (r *bookRepo) ListPending() ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(b domain.Book) bool { return !b.Approved }), nil
}

func (r *bookRepo) ListByAuthor(email string) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(b domain.Book) bool { return b.AuthorEmail == email }), nil
}

func (r *bookRepo) Update(b *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return domain.ErrNotFound
	}
	b.UpdatedAt = time.Now()
	r.books[b.ID] = *b
	return nil
}

func (r *bookRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.books, id)
	filtered := r.bookOrder[:0]
	for _, item := range r.bookOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	r.bookOrder = filtered
	return nil
}

func (r *bookRepo) DeleteByAuthor(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtered := r.bookOrder[:0]
	for _, id := range r.bookOrder {
		if b, ok := r.books[id]; ok && b.AuthorEmail == email {
			delete(r.books, id)
			continue
		}
		filtered = append(filtered, id)
	}
	r.bookOrder = filtered
	return nil
}

// ---------- promos ----------

type promoRepo Store

func (r *promoRepo) Create(p *domain.PromoPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = time.Now()
	r.promos = append(r.promos, *p)
	return nil
}

func (r *promoRepo) List() ([]domain.PromoPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PromoPost, len(r.promos))
	copy(out, r.promos)
	return out, nil
}

func (r *promoRepo) DeleteByAuthor(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtered := r.promos[:0]
	for _, p := range r.promos {
		if p.AuthorEmail != email {
			filtered = append(filtered, p)
		}
	}
	r.promos = filtered
	return nil
}
