package hive

import (
	"context"
	"errors"
	"fmt"

	"github.com/hivescope/witnessboard/pkg/clock"
)

// Key types understood by the signing extension.
const (
	KeyPosting = "Posting"
	KeyActive  = "Active"
)

// Sentinel errors for the login and voting flows
var (
	// ErrAccountNotFound carries the exact user-facing message the login
	// screen surfaces for unknown usernames.
	ErrAccountNotFound = errors.New("The account does not exist on the Hive blockchain")
	ErrSigningRejected = errors.New("signing request rejected")
	ErrSigningFailed   = errors.New("signing request failed")
	ErrNoFreeVotes     = errors.New("no free witness-vote slots remaining")
)

// SignResult is the signing extension's callback payload.
type SignResult struct {
	Success   bool
	Message   string
	PublicKey string
	Result    string
}

// Signer abstracts the browser signing extension. It stays a black box:
// only its request/response contract is modeled.
type Signer interface {
	RequestSignBuffer(ctx context.Context, username, message, keyType string) (SignResult, error)
	RequestWitnessVote(ctx context.Context, username, witness string, approve bool) (SignResult, error)
}

// LoginService authenticates users through the signing extension and keeps
// the session store in sync.
type LoginService struct {
	accounts *AccountService
	composer *Composer
	signer   Signer
	sessions *SessionStore
	clock    Clock
}

// LoginOption configures the LoginService
type LoginOption func(*LoginService)

// WithLoginClock injects a custom Clock (e.g., for testing)
func WithLoginClock(c Clock) LoginOption {
	return func(s *LoginService) { s.clock = c }
}

// NewLoginService constructs a LoginService.
func NewLoginService(accounts *AccountService, composer *Composer, signer Signer, sessions *SessionStore, opts ...LoginOption) *LoginService {
	s := &LoginService{
		accounts: accounts,
		composer: composer,
		signer:   signer,
		sessions: sessions,
		clock:    clock.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the account exists, runs the sign-buffer challenge unless
// view-only mode is on, then composes and stores the session. Unknown
// usernames are rejected before any signing call is attempted.
func (s *LoginService) Login(ctx context.Context, username string) (SavedSession, error) {
	snap, err := s.accounts.Snapshot(ctx, username)
	if err != nil {
		return SavedSession{}, fmt.Errorf("verifying account: %w", err)
	}
	if snap == nil {
		return SavedSession{}, ErrAccountNotFound
	}

	if !s.sessions.ViewOnly() {
		challenge := fmt.Sprintf("witnessboard-login-%s-%d", username, s.clock.Now().Unix())
		res, err := s.signer.RequestSignBuffer(ctx, username, challenge, KeyPosting)
		if err != nil {
			return SavedSession{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
		}
		if !res.Success {
			return SavedSession{}, fmt.Errorf("%w: %s", ErrSigningRejected, res.Message)
		}
	}

	sess := SavedSession{
		Username:     username,
		Snapshot:     s.composer.UserData(ctx, username),
		ProfileImage: snap.ProfileImage,
	}
	if err := s.sessions.SetCurrent(sess); err != nil {
		return SavedSession{}, err
	}
	return sess, nil
}

// VoteWitness submits a witness vote through the signing extension after
// checking the account exists and, for approvals, that a free vote slot
// remains.
func (s *LoginService) VoteWitness(ctx context.Context, username, witness string, approve bool) error {
	snap, err := s.accounts.Snapshot(ctx, username)
	if err != nil {
		return fmt.Errorf("verifying account: %w", err)
	}
	if snap == nil {
		return ErrAccountNotFound
	}
	if approve && snap.FreeVotes == 0 {
		return ErrNoFreeVotes
	}

	res, err := s.signer.RequestWitnessVote(ctx, username, witness, approve)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrSigningRejected, res.Message)
	}
	return nil
}
