package main

import (
	"errors"
	"fmt"
	"strings"

	"aula/models"

	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateUser reports a registration against an email that already has an account.
var ErrDuplicateUser = errors.New("user already exists")

// ErrInvalidInput tags failures caused by the client's own input; anything
// else out of Register is a store or signing failure.
var ErrInvalidInput = errors.New("invalid input")

// AuthOutcome is the closed set of terminal login outcomes.
type AuthOutcome int

const (
	OutcomeAuthenticated AuthOutcome = iota
	OutcomeWrongPassword
	OutcomeUserNotFound
)

// AuthResult is the tagged outcome of a credential or OAuth login. User and
// the token pair are populated only when Outcome is OutcomeAuthenticated.
type AuthResult struct {
	Outcome      AuthOutcome
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Authenticator validates credentials against the user store and mints the
// access/refresh pair on success.
type Authenticator struct {
	users UserStore
	codec *TokenCodec
}

func NewAuthenticator(users UserStore, codec *TokenCodec) *Authenticator {
	return &Authenticator{users: users, codec: codec}
}

// Register creates a local-credential account. Returns ErrDuplicateUser when
// the email already has one.
func (a *Authenticator) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email required", ErrInvalidInput)
	}
	if len(password) < 6 { // basic password policy
		return nil, fmt.Errorf("%w: password too short (min 6)", ErrInvalidInput)
	}
	// pre-check existing (optimistic)
	existing, err := a.users.FindByEmailOrName(email, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := a.users.Create(user); err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// Login resolves credentials to exactly one of the three outcomes. A non-nil
// error means the store or signing failed, not that the credentials were bad.
func (a *Authenticator) Login(name, email, password string) (AuthResult, error) {
	user, err := a.users.FindByEmailOrName(strings.TrimSpace(email), strings.TrimSpace(name))
	if err != nil {
		return AuthResult{}, err
	}
	if user == nil {
		return AuthResult{Outcome: OutcomeUserNotFound}, nil
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return AuthResult{Outcome: OutcomeWrongPassword}, nil
	}
	return a.mintPair(user)
}

// LoginOAuth completes a provider login for an already-resolved identity: the
// local account is upserted by email, then the same pair is minted.
func (a *Authenticator) LoginOAuth(email, name string) (AuthResult, error) {
	user, err := a.users.UpsertByEmail(email, name)
	if err != nil {
		return AuthResult{}, err
	}
	return a.mintPair(user)
}

func (a *Authenticator) mintPair(user *models.User) (AuthResult, error) {
	access, err := a.codec.MintAccess(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := a.codec.MintRefresh(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Outcome:      OutcomeAuthenticated,
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
