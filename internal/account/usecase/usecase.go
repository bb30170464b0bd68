package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/chemvis/internal/account/entity"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameLen = 150

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var errInvalidCredentials = pkgerror.NewRejected("unable to log in with provided credentials")

type Store interface {
	CountUsers(ctx context.Context) (int, error)
	GetUser(ctx context.Context, id int64) (entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (entity.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]entity.User, int, error)
	CreateUser(ctx context.Context, u entity.User) error
	UpdateUser(ctx context.Context, u entity.User) error
	// DeleteUser removes the user and its token.
	DeleteUser(ctx context.Context, id int64) error
	// IssueToken returns the user's existing token, or stores and returns
	// candidate when there is none.
	IssueToken(ctx context.Context, candidate entity.Token) (entity.Token, error)
	// FindToken returns the token and its owner.
	FindToken(ctx context.Context, key string) (entity.Token, entity.User, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store    Store
	ID       pkguid.NumberID
	Token    pkguid.StringID
	Clock    Clock
	HashCost int
}

type Usecase struct {
	store    Store
	id       pkguid.NumberID
	token    pkguid.StringID
	clock    Clock
	hashCost int

	dummyOnce sync.Once
	dummyHash string
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	token := dep.Token
	if token == nil {
		token = pkguid.NewToken()
	}

	cost := dep.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Usecase{
		store:    dep.Store,
		id:       dep.ID,
		token:    token,
		clock:    clock,
		hashCost: cost,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Login checks the credentials and returns the user's API token, issuing one
// on first login.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return LoginResult{}, pkgerror.NewRejected("username and password are required")
	}

	user, err := u.store.GetUserByUsername(ctx, username)
	if errors.Is(err, pkgerror.ErrNotFound) {
		// Keep timing close to the found-user path.
		_ = checkPassword(u.dummy(), in.Password)
		return LoginResult{}, errInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, normalizeErr(err)
	}

	if !user.IsActive || !checkPassword(user.PasswordHash, in.Password) {
		return LoginResult{}, errInvalidCredentials
	}

	tok, err := u.store.IssueToken(ctx, entity.Token{
		Key:       u.token.Generate(),
		UserID:    user.ID,
		CreatedAt: u.clock.Now().UTC(),
	})
	if err != nil {
		return LoginResult{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return LoginResult{Token: tok.Key, User: user}, nil
}

// Authenticate resolves an API token to its owner for the auth middleware.
func (u *Usecase) Authenticate(ctx context.Context, key string) (pkgrouter.Principal, error) {
	_, user, err := u.store.FindToken(ctx, key)
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgrouter.Principal{}, pkgerror.NewUnauthorized("invalid token")
	}
	if err != nil {
		return pkgrouter.Principal{}, normalizeErr(err)
	}

	if !user.IsActive {
		return pkgrouter.Principal{}, pkgerror.NewUnauthorized("user inactive or deleted")
	}

	return pkgrouter.Principal{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	}, nil
}

func (u *Usecase) ListUsers(ctx context.Context, page, pageSize int) (UsersResult, error) {
	if page < 1 || pageSize < 1 {
		return UsersResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	users, total, err := u.store.ListUsers(ctx, page, pageSize)
	if err != nil {
		return UsersResult{}, normalizeErr(err)
	}

	return UsersResult{
		Users: users,
		Page:  Page{Number: page, Size: pageSize, Total: total},
	}, nil
}

func (u *Usecase) GetUser(ctx context.Context, id int64) (entity.User, error) {
	user, err := u.store.GetUser(ctx, id)
	if err != nil {
		return entity.User{}, mapStoreErr(err)
	}
	return user, nil
}

func (u *Usecase) CreateUser(ctx context.Context, in CreateUserInput) (entity.User, error) {
	return u.createUser(ctx, in, false)
}

func (u *Usecase) createUser(ctx context.Context, in CreateUserInput, superuser bool) (entity.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return entity.User{}, err
	}

	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		return entity.User{}, err
	}

	hash, err := u.hashPassword(in.Password)
	if err != nil {
		return entity.User{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	user := entity.User{
		ID:           u.id.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      in.IsStaff,
		IsSuperuser:  superuser,
		IsActive:     active,
		DateJoined:   u.clock.Now().UTC().Truncate(time.Microsecond),
	}

	if err := u.store.CreateUser(ctx, user); err != nil {
		return entity.User{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "user created", "user_id", user.ID, "username", user.Username, "is_staff", user.IsStaff)

	return user, nil
}

func (u *Usecase) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (entity.User, error) {
	user, err := u.store.GetUser(ctx, id)
	if err != nil {
		return entity.User{}, mapStoreErr(err)
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return entity.User{}, err
		}
		user.Username = username
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			return entity.User{}, err
		}
		user.Email = email
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := u.hashPassword(*in.Password)
		if err != nil {
			return entity.User{}, err
		}
		user.PasswordHash = hash
	}

	if in.IsStaff != nil {
		user.IsStaff = *in.IsStaff
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := u.store.UpdateUser(ctx, user); err != nil {
		return entity.User{}, mapStoreErr(err)
	}

	return user, nil
}

// DeleteUser removes the account id on behalf of actorID. Nobody may delete
// their own account.
func (u *Usecase) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return pkgerror.NewRejected("cannot delete your own account")
	}

	if err := u.store.DeleteUser(ctx, id); err != nil {
		return mapStoreErr(err)
	}

	slog.InfoContext(ctx, "user deleted", "user_id", id, "by", actorID)

	return nil
}

// EnsureAdmin creates the configured superuser when no account exists yet.
// It reports whether a user was created.
func (u *Usecase) EnsureAdmin(ctx context.Context, in AdminInput) (bool, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return false, nil
	}

	n, err := u.store.CountUsers(ctx)
	if err != nil {
		return false, normalizeErr(err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := u.createUser(ctx, CreateUserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		IsStaff:  true,
	}, true); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	return true, nil
}

func (u *Usecase) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", pkgerror.NewRejected("password is too long")
	}
	if err != nil {
		return "", pkgerror.NewServer(err)
	}

	return string(hash), nil
}

func (u *Usecase) dummy() string {
	u.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("chemvis-dummy-password"), u.hashCost)
		if err == nil {
			u.dummyHash = string(hash)
		}
	})
	return u.dummyHash
}

func checkPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return pkgerror.NewRejected("username is required")
	case len(username) > maxUsernameLen:
		return pkgerror.NewRejected(fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	case !usernamePattern.MatchString(username):
		return pkgerror.NewRejected("username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return pkgerror.NewRejected("enter a valid email address")
	}
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("user not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
