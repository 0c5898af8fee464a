package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/subscription"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

var errInvalidCredentials = &domain.AuthError{Message: "invalid credentials"}

// Session is what a successful signup or login hands back.
type Session struct {
	Token        string                 `json:"token"`
	ExpiresAt    time.Time              `json:"expiresAt"`
	User         domain.User            `json:"user"`
	Subscription *subscription.Snapshot `json:"subscription,omitempty"`
}

type SignupInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	ShopName  string `json:"shopName"`
	OwnerName string `json:"ownerName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type NewUserInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Service authenticates users and manages shop accounts.
type Service struct {
	store      *store.Store
	tokens     *Tokens
	subs       *subscription.Service
	activity   *activity.Recorder
	clock      clock.Clock
	bcryptCost int
	log        *zap.Logger
}

func NewService(st *store.Store, tokens *Tokens, subs *subscription.Service, rec *activity.Recorder, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{
		store:      st,
		tokens:     tokens,
		subs:       subs,
		activity:   rec,
		clock:      clk,
		bcryptCost: bcrypt.DefaultCost,
		log:        log.Named("auth"),
	}
}

// WithBcryptCost overrides the hashing cost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

// Signup creates a shop on a fresh trial together with its first admin.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateCredentials(username, in.Password); err != nil {
		return Session{}, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return Session{}, &domain.ValidationError{Message: "email is not valid"}
		}
	}
	shopName := strings.TrimSpace(in.ShopName)
	if shopName == "" {
		shopName = username + "'s Pharmacy"
	}
	ownerName := strings.TrimSpace(in.OwnerName)
	if ownerName == "" {
		ownerName = username
	}

	hashed, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	trialEnds := s.subs.TrialWindow(now)
	shop := domain.Shop{
		ShopName:           shopName,
		OwnerName:          ownerName,
		OwnerEmail:         email,
		Phone:              strings.TrimSpace(in.Phone),
		Address:            strings.TrimSpace(in.Address),
		SubscriptionType:   domain.PlanTrial,
		SubscriptionStatus: domain.StatusTrial,
		TrialEndsAt:        &trialEnds,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	user := domain.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
	}

	err = s.store.Global(ctx, func(q *store.Queries) error {
		taken, err := q.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return &domain.ConflictError{Message: "username already exists"}
		}
		if err := q.InsertShop(ctx, &shop); err != nil {
			return err
		}
		user.ShopID = &shop.ID
		if err := q.InsertUser(ctx, &user); err != nil {
			return err
		}
		_, err = q.EnsureSetting(ctx, shop.ID, domain.Setting{
			StoreName:     shop.ShopName,
			OwnerName:     shop.OwnerName,
			Address:       shop.Address,
			Phone:         shop.Phone,
			InvoicePrefix: domain.DefaultInvoicePrefix,
			Currency:      domain.DefaultCurrency,
		}, now)
		return err
	})
	if database.IsDuplicateKey(err) {
		return Session{}, &domain.ConflictError{Message: "username already exists"}
	}
	if err != nil {
		return Session{}, err
	}

	s.log.Info("shop signed up", zap.Int64("shop_id", shop.ID), zap.String("username", username))
	snap := subscription.NewSnapshot(shop, now)
	return s.session(user, &snap)
}

// Login verifies credentials and, for shop users, that the shop may operate.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, &domain.ValidationError{Message: "username and password are required"}
	}

	var user domain.User
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		user, err = q.GetUserByUsername(ctx, username)
		return err
	})
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return Session{}, errInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return Session{}, errInvalidCredentials
	}
	if !user.IsActive {
		return Session{}, &domain.AuthError{Message: "account is disabled"}
	}

	var snap *subscription.Snapshot
	if user.Role != domain.RoleSuperAdmin {
		if user.ShopID == nil {
			return Session{}, &domain.AuthError{Message: "user is not linked to a shop"}
		}
		current, err := s.subs.CheckLogin(ctx, *user.ShopID)
		if err != nil {
			return Session{}, err
		}
		snap = &current
	}

	now := s.clock.Now()
	err = s.store.Global(ctx, func(q *store.Queries) error {
		return q.TouchLastLogin(ctx, user.ID, now)
	})
	if err != nil {
		return Session{}, err
	}
	user.LastLogin = &now

	if user.ShopID != nil {
		s.activity.Record(ctx, *user.ShopID, activity.Entry{Action: domain.ActionLogin, Entity: "user", EntityID: user.ID, Details: user.Username})
	}
	return s.session(user, snap)
}

// Me returns the caller's user record.
func (s *Service) Me(ctx context.Context, userID int64) (domain.User, error) {
	var user domain.User
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		user, err = q.GetUser(ctx, userID)
		return err
	})
	return user, err
}

// EnsureActive rejects a token whose user has since been removed or
// deactivated.
func (s *Service) EnsureActive(ctx context.Context, userID int64) error {
	user, err := s.Me(ctx, userID)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return &domain.AuthError{Message: "account no longer exists"}
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return &domain.AuthError{Message: "account is disabled"}
	}
	return nil
}

// CreateUser adds a staff member or another admin to shopID.
func (s *Service) CreateUser(ctx context.Context, shopID int64, in NewUserInput) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateCredentials(username, in.Password); err != nil {
		return domain.User{}, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleStaff
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return domain.User{}, &domain.ValidationError{Message: "role must be admin or staff"}
	}
	hashed, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:     username,
		PasswordHash: hashed,
		ShopID:       &shopID,
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}
	err = s.store.Global(ctx, func(q *store.Queries) error {
		taken, err := q.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return &domain.ConflictError{Message: "username already exists"}
		}
		return q.InsertUser(ctx, &user)
	})
	if database.IsDuplicateKey(err) {
		return domain.User{}, &domain.ConflictError{Message: "username already exists"}
	}
	if err != nil {
		return domain.User{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionManageUser, Entity: "user", EntityID: user.ID, Details: "created " + username})
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, shopID int64) ([]domain.User, error) {
	var users []domain.User
	err := s.store.Global(ctx, func(q *store.Queries) error {
		var err error
		users, err = q.ListShopUsers(ctx, shopID)
		return err
	})
	return users, err
}

// SetUserActive enables or disables a user of shopID. Nobody can disable
// themselves.
func (s *Service) SetUserActive(ctx context.Context, shopID, actorID, userID int64, active bool) (domain.User, error) {
	if actorID == userID && !active {
		return domain.User{}, &domain.ValidationError{Message: "you cannot deactivate your own account"}
	}
	var user domain.User
	err := s.store.Global(ctx, func(q *store.Queries) error {
		if err := q.SetUserActive(ctx, shopID, userID, active); err != nil {
			return err
		}
		var err error
		user, err = q.GetShopUser(ctx, shopID, userID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	state := "deactivated "
	if active {
		state = "activated "
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionManageUser, Entity: "user", EntityID: userID, Details: state + user.Username})
	return user, nil
}

// EnsureSuperAdmin creates the platform operator account if it is missing.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return false, err
	}
	hashed, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	created := false
	err = s.store.Global(ctx, func(q *store.Queries) error {
		taken, err := q.UsernameTaken(ctx, username)
		if err != nil || taken {
			return err
		}
		created = true
		return q.InsertUser(ctx, &domain.User{
			Username:     username,
			PasswordHash: hashed,
			Role:         domain.RoleSuperAdmin,
			IsActive:     true,
			CreatedAt:    s.clock.Now(),
		})
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Service) session(user domain.User, snap *subscription.Snapshot) (Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user, Subscription: snap}, nil
}

func validateCredentials(username, password string) error {
	if len(username) < minUsernameLen {
		return &domain.ValidationError{Message: fmt.Sprintf("username must be at least %d characters", minUsernameLen)}
	}
	if len(password) < minPasswordLen {
		return &domain.ValidationError{Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	return nil
}
