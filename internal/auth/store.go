package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errUserNotFound = errors.New("user not found")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, string, error)
	GetByID(ctx context.Context, id string) (User, error)
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, email, passwordHash string) (User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx)
	var u User
	u.Email = email
	if err := tx.QueryRow(ctx, `insert into users (email) values ($1) returning id`, email).Scan(&u.ID); err != nil {
		return User{}, err
	}
	if _, err := tx.Exec(ctx, `insert into user_credentials (user_id, password_hash) values ($1, $2)`, u.ID, passwordHash); err != nil {
		return User{}, err
	}
	return u, tx.Commit(ctx)
}

func (s *PGStore) GetByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := s.pool.QueryRow(ctx,
		`select u.id, u.email, c.password_hash
		 from users u join user_credentials c on c.user_id = u.id
		 where u.email = $1`, email).Scan(&u.ID, &u.Email, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, "", errUserNotFound
	}
	return u, hash, err
}

func (s *PGStore) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `select id, email from users where id = $1`, id).Scan(&u.ID, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, errUserNotFound
	}
	return u, err
}

type memUser struct {
	user User
	hash string
}

type MemStore struct {
	mu      sync.Mutex
	seq     int
	byEmail map[string]memUser
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]memUser)}
}

func (s *MemStore) Create(ctx context.Context, email, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return User{}, errors.New("email already registered")
	}
	s.seq++
	u := User{ID: fmt.Sprintf("usr_%06d", s.seq), Email: email}
	s.byEmail[email] = memUser{user: u, hash: passwordHash}
	return u, nil
}

func (s *MemStore) GetByEmail(ctx context.Context, email string) (User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.byEmail[email]
	if !ok {
		return User{}, "", errUserNotFound
	}
	return mu.user, mu.hash, nil
}

func (s *MemStore) GetByID(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mu := range s.byEmail {
		if mu.user.ID == id {
			return mu.user, nil
		}
	}
	return User{}, errUserNotFound
}
