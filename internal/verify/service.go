// Package verify implements the DNS ownership state machine: challenge
// issuance, TXT polling and the one-way transitions between challenge states.
package verify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/errors"
	"github.com/mcpdex/mcpdex/internal/filter"
	"github.com/mcpdex/mcpdex/internal/store"
	"github.com/mcpdex/mcpdex/internal/trust"
)

// TXTRecordPrefix is prepended to the domain to form the challenge record name.
const TXTRecordPrefix = "_mcp-verify."

// tokenBytes sized so the TXT token carries well over 128 bits of entropy.
const tokenBytes = 32

// RegistrationRequest is the validated-at-the-boundary input for Initiate.
type RegistrationRequest struct {
	Domain       string
	Endpoint     string
	ContactEmail string
	Capabilities []string
	Category     string
	Description  string
	Transport    domain.TransportInfo
}

// ChallengeGrant is returned by Initiate and tells the operator which TXT
// record to publish.
type ChallengeGrant struct {
	ChallengeID    string
	TXTRecordName  string
	TXTRecordValue string
	ExpiresAt      time.Time
}

// ChallengeResult reports the (possibly settled) state of a challenge.
type ChallengeResult struct {
	ChallengeID string
	Domain      string
	Status      domain.ChallengeStatus
	VerifiedAt  *time.Time
}

// Service drives domain verification. NewService should be used to create
// instances of Service.
type Service struct {
	logger        hclog.Logger
	store         store.Store
	resolver      TXTResolver
	lookupTimeout time.Duration
	challengeTTL  time.Duration
	now           func() time.Time
}

// NewService creates a verification service backed by the given store.
func NewService(logger hclog.Logger, s store.Store, opt ...Option) (*Service, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if s == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Service{
		logger:        logger.Named("verify"),
		store:         s,
		resolver:      opts.Resolver,
		lookupTimeout: opts.LookupTimeout,
		challengeTTL:  opts.ChallengeTTL,
		now:           opts.Now,
	}, nil
}

// Initiate validates the registration request and issues a new challenge.
// Any existing pending challenge for the domain is superseded (marked failed).
// Validation failures never create state.
func (s *Service) Initiate(ctx context.Context, req RegistrationRequest) (*ChallengeGrant, error) {
	dom, err := ValidateDomain(req.Domain)
	if err != nil {
		return nil, err
	}
	endpoint, err := ValidateEndpoint(req.Endpoint)
	if err != nil {
		return nil, err
	}
	email, err := ValidateContactEmail(req.ContactEmail)
	if err != nil {
		return nil, err
	}

	// A domain with a verified record must re-verify via a fresh challenge
	// only when its operator explicitly abandons the old registration.
	raw, err := s.store.Get(ctx, store.CollectionServers, dom)
	switch {
	case err == nil:
		var rec domain.ServerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode server record for '%s': %w", dom, err)
		}
		if rec.Verification.DNSVerified {
			return nil, fmt.Errorf("%w: %s", errors.ErrDomainAlreadyRegistered, dom)
		}
	case stdErrors.Is(err, store.ErrKeyNotFound):
		// No record yet; the usual path.
	default:
		return nil, err
	}

	if err := s.supersedePending(ctx, dom); err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	challenge := domain.VerificationChallenge{
		ChallengeID:  uuid.NewString(),
		Domain:       dom,
		Endpoint:     endpoint,
		ContactEmail: email,
		Description:  strings.TrimSpace(req.Description),
		Capabilities: domain.Capabilities{
			Tags:     filter.NormalizeSlice(req.Capabilities),
			Keywords: filter.Tokenize(req.Description),
			Category: filter.NormalizeString(req.Category),
		},
		Transport:      req.Transport,
		TXTRecordName:  TXTRecordPrefix + dom,
		TXTRecordValue: token,
		Status:         domain.ChallengeStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.challengeTTL),
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to encode challenge: %w", err)
	}
	if err := s.store.Set(ctx, store.CollectionChallenges, challenge.ChallengeID, data); err != nil {
		return nil, fmt.Errorf("failed to persist challenge: %w", err)
	}

	s.logger.Info("Issued verification challenge",
		"domain", dom,
		"challenge_id", challenge.ChallengeID,
		"expires_at", challenge.ExpiresAt,
	)

	return &ChallengeGrant{
		ChallengeID:    challenge.ChallengeID,
		TXTRecordName:  challenge.TXTRecordName,
		TXTRecordValue: challenge.TXTRecordValue,
		ExpiresAt:      challenge.ExpiresAt,
	}, nil
}

// CheckChallenge performs one verification attempt. It is safe to call
// repeatedly and concurrently for the same challenge: terminal states are
// returned as-is, and the pending-to-verified transition (with its record
// promotion side effect) happens at most once.
//
// Expiry takes precedence over DNS: past expires_at the challenge settles as
// expired even if the record would now validate. Lookup failures are
// transient and leave the challenge pending.
func (s *Service) CheckChallenge(ctx context.Context, challengeID string) (*ChallengeResult, error) {
	challenge, err := s.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status.Terminal() {
		return resultOf(challenge), nil
	}

	now := s.now().UTC()
	if challenge.ExpiredAt(now) {
		settled, _, err := s.transition(ctx, challengeID, domain.ChallengeStatusExpired, nil)
		if err != nil {
			return nil, err
		}
		return resultOf(settled), nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	records, err := s.resolver.LookupTXT(lookupCtx, challenge.TXTRecordName)
	if err != nil {
		// Timeouts and NXDOMAIN are not failures: propagation can take the
		// full challenge window. Only expiry settles this negatively.
		s.logger.Debug("TXT lookup did not succeed, challenge stays pending",
			"domain", challenge.Domain,
			"record", challenge.TXTRecordName,
			"error", err,
		)
		return resultOf(challenge), nil
	}

	if !containsToken(records, challenge.TXTRecordValue) {
		s.logger.Debug("TXT records present but token not found, challenge stays pending",
			"domain", challenge.Domain,
			"record", challenge.TXTRecordName,
		)
		return resultOf(challenge), nil
	}

	return s.promote(ctx, challenge, now)
}

// Abandon settles a pending challenge as failed. This is the explicit
// operator-signaled negative path; a challenge already settled as verified
// or expired cannot be abandoned.
func (s *Service) Abandon(ctx context.Context, challengeID string) (*ChallengeResult, error) {
	settled, transitioned, err := s.transition(ctx, challengeID, domain.ChallengeStatusFailed, nil)
	if err != nil {
		return nil, err
	}
	if !transitioned && settled.Status != domain.ChallengeStatusFailed {
		return nil, fmt.Errorf("%w: challenge '%s' is %s", errors.ErrChallengeTerminal, challengeID, settled.Status)
	}

	s.logger.Info("Challenge abandoned", "domain", settled.Domain, "challenge_id", challengeID)
	return resultOf(settled), nil
}

// Status reports a challenge's current state without side effects.
// A pending challenge past its expiry reports expired; the persisted
// transition happens on the next CheckChallenge.
func (s *Service) Status(ctx context.Context, challengeID string) (*ChallengeResult, error) {
	challenge, err := s.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status == domain.ChallengeStatusPending && challenge.ExpiredAt(s.now().UTC()) {
		challenge.Status = domain.ChallengeStatusExpired
	}
	return resultOf(challenge), nil
}

// promote settles the challenge as verified and creates or updates the
// domain's server record. Both steps run as atomic store updates; if another
// caller settled the challenge first, the settled result is returned and no
// second promotion occurs.
func (s *Service) promote(
	ctx context.Context,
	challenge domain.VerificationChallenge,
	now time.Time,
) (*ChallengeResult, error) {
	settled, transitioned, err := s.transition(ctx, challenge.ChallengeID, domain.ChallengeStatusVerified, &now)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return resultOf(settled), nil
	}

	err = s.store.Update(ctx, store.CollectionServers, challenge.Domain, func(current []byte) ([]byte, error) {
		var rec domain.ServerRecord
		if current != nil {
			if err := json.Unmarshal(current, &rec); err != nil {
				return nil, fmt.Errorf("failed to decode server record for '%s': %w", challenge.Domain, err)
			}
		} else {
			rec = domain.ServerRecord{
				Domain:    challenge.Domain,
				CreatedAt: now,
			}
		}

		rec.Endpoint = challenge.Endpoint
		rec.ContactEmail = challenge.ContactEmail
		rec.Description = challenge.Description
		rec.Capabilities = challenge.Capabilities
		rec.Transport = challenge.Transport
		rec.Verification = domain.Verification{
			DNSVerified: true,
			Method:      "dns-txt",
			ChallengeID: challenge.ChallengeID,
			VerifiedAt:  &now,
		}
		rec.TrustScore = trust.Score(rec.Verification, rec.HealthSnapshot(), rec.CommunityRating)
		rec.UpdatedAt = now

		return json.Marshal(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to promote server record for '%s': %w", challenge.Domain, err)
	}

	s.logger.Info("Domain verified",
		"domain", challenge.Domain,
		"challenge_id", challenge.ChallengeID,
	)

	return resultOf(settled), nil
}

// transition moves a challenge to target unless it is already terminal.
// Returns the final challenge state and whether this call performed the move.
func (s *Service) transition(
	ctx context.Context,
	challengeID string,
	target domain.ChallengeStatus,
	verifiedAt *time.Time,
) (domain.VerificationChallenge, bool, error) {
	var final domain.VerificationChallenge
	transitioned := false

	err := s.store.Update(ctx, store.CollectionChallenges, challengeID, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrChallengeNotFound, challengeID)
		}

		var c domain.VerificationChallenge
		if err := json.Unmarshal(current, &c); err != nil {
			return nil, fmt.Errorf("failed to decode challenge '%s': %w", challengeID, err)
		}

		if c.Status.Terminal() {
			final = c
			return current, nil
		}

		c.Status = target
		if target == domain.ChallengeStatusVerified {
			c.VerifiedAt = verifiedAt
		}
		final = c
		transitioned = true
		return json.Marshal(c)
	})
	if err != nil {
		return domain.VerificationChallenge{}, false, err
	}

	return final, transitioned, nil
}

// supersedePending marks any pending challenge for the domain as failed,
// preserving the at-most-one-active-challenge invariant.
func (s *Service) supersedePending(ctx context.Context, dom string) error {
	all, err := s.store.GetAll(ctx, store.CollectionChallenges)
	if err != nil {
		return err
	}

	for id, raw := range all {
		var c domain.VerificationChallenge
		if err := json.Unmarshal(raw, &c); err != nil {
			s.logger.Warn("Skipping undecodable challenge", "challenge_id", id, "error", err)
			continue
		}
		if c.Domain != dom || c.Status != domain.ChallengeStatusPending {
			continue
		}

		if _, _, err := s.transition(ctx, id, domain.ChallengeStatusFailed, nil); err != nil {
			return fmt.Errorf("failed to supersede challenge '%s': %w", id, err)
		}
		s.logger.Info("Superseded pending challenge", "domain", dom, "challenge_id", id)
	}
	return nil
}

func (s *Service) loadChallenge(ctx context.Context, challengeID string) (domain.VerificationChallenge, error) {
	raw, err := s.store.Get(ctx, store.CollectionChallenges, challengeID)
	if err != nil {
		if stdErrors.Is(err, store.ErrKeyNotFound) {
			return domain.VerificationChallenge{}, fmt.Errorf("%w: %s", errors.ErrChallengeNotFound, challengeID)
		}
		return domain.VerificationChallenge{}, err
	}

	var c domain.VerificationChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.VerificationChallenge{}, fmt.Errorf("failed to decode challenge '%s': %w", challengeID, err)
	}
	return c, nil
}

func resultOf(c domain.VerificationChallenge) *ChallengeResult {
	return &ChallengeResult{
		ChallengeID: c.ChallengeID,
		Domain:      c.Domain,
		Status:      c.Status,
		VerifiedAt:  c.VerifiedAt,
	}
}

// containsToken reports whether any TXT record's concatenated value contains
// the expected token, allowing operators to embed it in a structured string.
func containsToken(records []string, token string) bool {
	for _, r := range records {
		if strings.Contains(r, token) {
			return true
		}
	}
	return false
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate challenge token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
