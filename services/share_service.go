package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"djagency-backend/utils"
)

var (
	ErrShareNotFound        = errors.New("share link not found")
	ErrShareExpired         = errors.New("share link expired")
	ErrInvalidSharePassword = errors.New("invalid share password")
)

const minSharePasswordLength = 4

var shareTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)

// ShareLink is the JSON blob stored under shares/<token>.json
type ShareLink struct {
	Token        string     `json:"token"`
	DJID         uuid.UUID  `json:"dj_id"`
	PasswordHash string     `json:"password_hash"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// ShareService issues and verifies password-gated DJ share links.
// The password hash never leaves the server.
type ShareService struct {
	storage ObjectStorage
	ttl     time.Duration
	now     func() time.Time
}

func NewShareService(storage ObjectStorage, ttl time.Duration) *ShareService {
	return &ShareService{storage: storage, ttl: ttl, now: time.Now}
}

func shareKey(token string) string {
	return "shares/" + token + ".json"
}

// Create stores a new link for djID protected by password
func (s *ShareService) Create(ctx context.Context, djID uuid.UUID, password string, createdBy *uuid.UUID) (*ShareLink, error) {
	if len(password) < minSharePasswordLength {
		return nil, utils.Validation(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", minSharePasswordLength))
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash share password: %w", err)
	}

	now := s.now()
	link := &ShareLink{
		Token:        utils.GenerateURLToken(),
		DJID:         djID,
		PasswordHash: hash,
		CreatedBy:    createdBy,
		CreatedAt:    now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		link.ExpiresAt = &exp
	}

	body, err := json.Marshal(link)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, shareKey(link.Token), bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("store share link: %w", err)
	}
	return link, nil
}

func (s *ShareService) load(ctx context.Context, token string) (*ShareLink, error) {
	if !shareTokenPattern.MatchString(token) {
		return nil, ErrShareNotFound
	}
	rc, err := s.storage.Get(ctx, shareKey(token))
	if errors.Is(err, ErrObjectNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load share link: %w", err)
	}
	defer rc.Close()

	var link ShareLink
	if err := json.NewDecoder(rc).Decode(&link); err != nil {
		return nil, fmt.Errorf("decode share link: %w", err)
	}
	return &link, nil
}

// Resolve returns the link for token after checking expiry and password
func (s *ShareService) Resolve(ctx context.Context, token, password string) (*ShareLink, error) {
	link, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.ExpiresAt != nil && s.now().After(*link.ExpiresAt) {
		return nil, ErrShareExpired
	}
	if !verifySharePassword(password, link.PasswordHash) {
		return nil, ErrInvalidSharePassword
	}
	return link, nil
}

// Revoke deletes the blob behind token
func (s *ShareService) Revoke(ctx context.Context, token string) error {
	if _, err := s.load(ctx, token); err != nil {
		return err
	}
	return s.storage.Delete(ctx, shareKey(token))
}

// verifySharePassword accepts bcrypt hashes and the hex SHA-256 digests
// written by the browser client before links were issued server-side
func verifySharePassword(password, hash string) bool {
	if strings.HasPrefix(hash, "$2") {
		return utils.CheckPasswordHash(password, hash)
	}
	if len(hash) != sha256.Size*2 {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) == 1
}
