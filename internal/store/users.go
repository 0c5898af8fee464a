package store

import (
	"context"
	"fmt"
	"time"

	"pharmatrack/m/domain"
)

const userColumns = `id, username, password_hash, shop_id, role, is_active, last_login, created_at`

func (q *Queries) InsertUser(ctx context.Context, user *domain.User) error {
	id, err := q.insertID(ctx, `INSERT INTO users (username, password_hash, shop_id, role, is_active, created_at)
            VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		user.Username, user.PasswordHash, user.ShopID, user.Role, user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	if err := q.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`, username); err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return user, nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	if err := q.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return user, nil
}

func (q *Queries) GetShopUser(ctx context.Context, shopID, id int64) (domain.User, error) {
	var user domain.User
	if err := q.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE shop_id = ? AND id = ?`, shopID, id); err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return user, nil
}

func (q *Queries) ListShopUsers(ctx context.Context, shopID int64) ([]domain.User, error) {
	users := []domain.User{}
	if err := q.sel(ctx, &users, `SELECT `+userColumns+` FROM users WHERE shop_id = ? ORDER BY id`, shopID); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (q *Queries) SetUserActive(ctx context.Context, shopID, id int64, active bool) error {
	res, err := q.exec(ctx, `UPDATE users SET is_active = ? WHERE shop_id = ? AND id = ?`, active, shopID, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return affectedOne(res, "user")
}

func (q *Queries) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := q.exec(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (q *Queries) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	if err := q.get(ctx, &n, `SELECT COUNT(*) FROM users WHERE username = ?`, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}
