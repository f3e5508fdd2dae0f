package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trimly-app/trimly/libs/db"
)

type User struct {
	ID           string
	BarbershopID string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
}

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, barbershop_id, email, phone, password_hash, role)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
	`, user.ID, user.BarbershopID, user.Email, user.Phone, user.PasswordHash, user.Role)
	return err
}

func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, barbershop_id, email, phone, password_hash, role)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
	`, user.ID, user.BarbershopID, user.Email, user.Phone, user.PasswordHash, user.Role)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, barbershop_id, COALESCE(email, ''), COALESCE(phone, ''), password_hash, role
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.BarbershopID, &user.Email, &user.Phone, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, barbershop_id, COALESCE(email, ''), COALESCE(phone, ''), password_hash, role
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.BarbershopID, &user.Email, &user.Phone, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UpsertClientByPhone finds or creates the client user identified by phone
// within one shop, returning the user plus whether it was newly created.
// Clients never carry a password hash; they authenticate via OTP only.
func (r *UserRepository) UpsertClientByPhone(ctx context.Context, tx pgx.Tx, barbershopID, phone string) (User, bool, error) {
	user := User{
		BarbershopID: barbershopID,
		Phone:        phone,
		Role:         "client",
	}
	err := tx.QueryRow(ctx, `
		SELECT id, role
		FROM users
		WHERE barbershop_id = $1 AND phone = $2
	`, barbershopID, phone).Scan(&user.ID, &user.Role)
	if err == nil {
		return user, false, nil
	}
	if err != pgx.ErrNoRows {
		return User{}, false, err
	}

	user.ID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, barbershop_id, phone, password_hash, role)
		VALUES ($1, $2, $3, '', 'client')
	`, user.ID, barbershopID, phone)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func IsNotFound(err error) bool {
	return err == pgx.ErrNoRows
}
