package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/audit"
	"github.com/scanlink/scanlink-server-go/internal/config"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/repository"
	"github.com/scanlink/scanlink-server-go/internal/util"
)

// CreateDraftParams is an owner's draft submission. The id is assigned here,
// never by the caller.
type CreateDraftParams struct {
	Title       string
	Description string
	Kind        model.CodeKind
	Content     json.RawMessage
	ScanLimit   int64
	ExpiresAt   *time.Time
}

// CodeService owns the draft/publish lifecycle and the dashboard CRUD surface.
type CodeService struct {
	codeRepo repository.CodeRepository
}

func NewCodeService(codeRepo repository.CodeRepository) *CodeService {
	return &CodeService{codeRepo: codeRepo}
}

// CreateDraft validates the submission, allocates a short code and persists
// the record as an active, incomplete draft. The code is resolvable
// immediately: publishing only finalizes styling.
//
// Generation never fails; the insert is the uniqueness gate. On a collision
// the id is regenerated and the insert retried, bounded so the loop stays
// visible and testable.
func (s *CodeService) CreateDraft(ctx context.Context, ownerID string, params CreateDraftParams) (*model.ShortCode, error) {
	if ownerID == "" {
		return nil, apperrors.MissingRequired("ownerId")
	}
	if err := validateDraft(params); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxGenerateAttempts; attempt++ {
		code, err := s.codeRepo.Insert(ctx, model.CreateShortCodeParams{
			ID:          GenerateCode(),
			OwnerID:     ownerID,
			Title:       params.Title,
			Description: params.Description,
			Kind:        params.Kind,
			Content:     params.Content,
			ScanLimit:   params.ScanLimit,
			ExpiresAt:   params.ExpiresAt,
		})
		if err == repository.ErrDuplicateCode {
			lastErr = err
			log.Warn().Int("attempt", attempt+1).Msg("short code collision on insert, regenerating")
			continue
		}
		if err != nil {
			return nil, apperrors.Database(err)
		}

		audit.Log(ctx, audit.Event{
			Type:    audit.EventCodeCreate,
			OwnerID: ownerID,
			CodeID:  code.ID,
			Details: map[string]interface{}{"kind": string(code.Kind)},
		})

		return code, nil
	}

	return nil, apperrors.ProvisioningFailed(lastErr)
}

// Publish finalizes a draft: the style configuration is stored and the record
// is marked complete. Publishing is idempotent and optional; a draft that is
// never published keeps resolving.
func (s *CodeService) Publish(ctx context.Context, ownerID, id string, styleConfig json.RawMessage) (*model.ShortCode, error) {
	if _, err := s.ownedCode(ctx, ownerID, id); err != nil {
		return nil, err
	}

	if len(styleConfig) == 0 {
		return nil, apperrors.MissingRequired("styleConfig")
	}
	if !json.Valid(styleConfig) {
		return nil, apperrors.InvalidInput("styleConfig", "must be valid JSON")
	}

	code, err := s.codeRepo.Publish(ctx, id, styleConfig)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if code == nil {
		return nil, apperrors.NotFound("Code")
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventCodePublish,
		OwnerID: ownerID,
		CodeID:  id,
	})

	return code, nil
}

// Update applies an owner edit. Kind and scan count are immutable; the
// repository patch does not expose them.
func (s *CodeService) Update(ctx context.Context, ownerID, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error) {
	existing, err := s.ownedCode(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.ScanLimit != nil && *params.ScanLimit < 0 {
		return nil, apperrors.InvalidInput("scanLimit", "must be zero or positive")
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, apperrors.InvalidInput("status", "must be active, paused or archived")
	}
	if params.Content != nil {
		content, err := model.DecodeContent(existing.Kind, params.Content)
		if err != nil {
			return nil, apperrors.InvalidInput("content", err.Error())
		}
		if err := validateDestinations(content); err != nil {
			return nil, err
		}
	}

	code, err := s.codeRepo.Update(ctx, id, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if code == nil {
		return nil, apperrors.NotFound("Code")
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventCodeUpdate,
		OwnerID: ownerID,
		CodeID:  id,
	})

	return code, nil
}

// Delete removes a record permanently. No tombstone: the id returns to the
// free pool.
func (s *CodeService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.ownedCode(ctx, ownerID, id); err != nil {
		return err
	}

	rows, err := s.codeRepo.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if rows == 0 {
		return apperrors.NotFound("Code")
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventCodeDelete,
		OwnerID: ownerID,
		CodeID:  id,
	})

	return nil
}

func (s *CodeService) Get(ctx context.Context, ownerID, id string) (*model.ShortCode, error) {
	return s.ownedCode(ctx, ownerID, id)
}

// List returns the owner's codes, newest first. completeOnly mirrors the
// dashboard views that hide unpublished drafts.
func (s *CodeService) List(ctx context.Context, ownerID string, completeOnly bool, limit, offset int) ([]model.ShortCode, error) {
	var (
		codes []model.ShortCode
		err   error
	)
	if completeOnly {
		codes, err = s.codeRepo.FindCompleteByOwnerID(ctx, ownerID, limit, offset)
	} else {
		codes, err = s.codeRepo.FindByOwnerID(ctx, ownerID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return codes, nil
}

type CodeStats struct {
	ID        string `json:"id"`
	ScanCount int64  `json:"scanCount"`
	ScanLimit int64  `json:"scanLimit"`
	Remaining *int64 `json:"remaining,omitempty"`
}

func (s *CodeService) Stats(ctx context.Context, ownerID, id string) (*CodeStats, error) {
	code, err := s.ownedCode(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	stats := &CodeStats{
		ID:        code.ID,
		ScanCount: code.ScanCount,
		ScanLimit: code.ScanLimit,
	}
	if code.ScanLimit > 0 {
		remaining := code.ScanLimit - code.ScanCount
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = &remaining
	}
	return stats, nil
}

// ownedCode fetches a record and enforces ownership. Missing and foreign
// records are indistinguishable to the caller.
func (s *CodeService) ownedCode(ctx context.Context, ownerID, id string) (*model.ShortCode, error) {
	code, err := s.codeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if code == nil || code.OwnerID != ownerID {
		return nil, apperrors.NotFound("Code")
	}
	return code, nil
}

func validateDraft(params CreateDraftParams) error {
	if params.Title == "" {
		return apperrors.MissingRequired("title")
	}
	if !params.Kind.Valid() {
		return apperrors.InvalidInput("kind", "unknown kind")
	}
	if params.ScanLimit < 0 {
		return apperrors.InvalidInput("scanLimit", "must be zero or positive")
	}
	if params.ExpiresAt != nil && params.ExpiresAt.Before(time.Now()) {
		return apperrors.InvalidInput("expiresAt", "must be in the future")
	}
	if params.Content != nil && !json.Valid(params.Content) {
		return apperrors.InvalidInput("content", "must be valid JSON")
	}
	content, err := model.DecodeContent(params.Kind, params.Content)
	if err != nil {
		return apperrors.InvalidInput("content", err.Error())
	}
	return validateDestinations(content)
}

// validateDestinations rejects redirect targets that are not absolute http(s)
// URLs. Targets are handed straight to a Location header, so javascript: and
// data: schemes must never reach the store.
func validateDestinations(content model.Content) error {
	checkURL := func(field, value string) error {
		if value != "" && !util.IsValidHTTPURL(value) {
			return apperrors.InvalidInput(field, "must be an absolute http or https URL")
		}
		return nil
	}

	switch c := content.(type) {
	case model.URLContent:
		return checkURL("content.url", c.URL)
	case model.AppContent:
		for field, value := range map[string]string{
			"content.appStoreUrl":  c.AppStoreURL,
			"content.playStoreUrl": c.PlayStoreURL,
			"content.fallbackUrl":  c.FallbackURL,
		} {
			if err := checkURL(field, value); err != nil {
				return err
			}
		}
		return nil
	case model.PaymentContent:
		return checkURL("content.checkoutUrl", c.CheckoutURL)
	}
	return nil
}
