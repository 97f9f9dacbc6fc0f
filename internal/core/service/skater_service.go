package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
	"github.com/skatepark/skater-profiles/internal/pkg/metrics"
)

// photoNameAttempts bounds how many generated names Register tries when the
// photo store already holds a file with the same name.
const photoNameAttempts = 3

// SkaterService implements the account lifecycle: registration, login,
// profile updates, deletion and admin status changes.
type SkaterService struct {
	repo        ports.SkaterRepository
	photos      ports.PhotoStore
	tokens      ports.TokenIssuer
	revocations ports.RevocationStore
	audit       ports.AuditPublisher
	log         zerolog.Logger

	photoPrefix func() string
	now         func() time.Time
}

func NewSkaterService(
	repo ports.SkaterRepository,
	photos ports.PhotoStore,
	tokens ports.TokenIssuer,
	revocations ports.RevocationStore,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *SkaterService {
	return &SkaterService{
		repo:        repo,
		photos:      photos,
		tokens:      tokens,
		revocations: revocations,
		audit:       audit,
		log:         log,
		photoPrefix: func() string { return uuid.NewString()[:4] },
		now:         time.Now,
	}
}

// Register creates the account and stores its photo inside one transaction.
// The row only commits once the photo is on disk; if the commit itself fails
// the photo is removed again.
func (s *SkaterService) Register(ctx context.Context, in ports.RegisterInput) (int64, error) {
	if err := validateRegistration(in); err != nil {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("register skater: hash password: %w", err)
	}

	skater := &domain.Skater{
		Email:           strings.TrimSpace(in.Email),
		Name:            strings.TrimSpace(in.Name),
		PasswordHash:    string(hash),
		YearsExperience: in.YearsExperience,
		Specialty:       strings.TrimSpace(in.Specialty),
		Photo:           s.photoName(in.ImageName),
		Active:          true,
	}

	var id int64
	var written string
	err = s.repo.WithinTx(ctx, func(tx ports.SkaterTx) error {
		newID, err := tx.Insert(ctx, skater)
		if err != nil {
			return err
		}
		id = newID

		for attempt := 1; ; attempt++ {
			err := s.photos.Save(ctx, skater.Photo, in.Image)
			if err == nil {
				written = skater.Photo
				return nil
			}
			if !errors.Is(err, fs.ErrExist) || attempt == photoNameAttempts {
				return fmt.Errorf("%w: %v", domain.ErrStorage, err)
			}
			skater.Photo = s.photoName(in.ImageName)
			if err := tx.SetPhoto(ctx, id, skater.Photo); err != nil {
				return err
			}
		}
	})
	if err != nil {
		if written != "" {
			s.removePhoto(ctx, id, written)
		}
		s.observe("register", err)
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrStorage) {
			return 0, err
		}
		return 0, fmt.Errorf("register skater: %w", err)
	}

	s.observe("register", nil)
	s.publish(domain.AuditRegistered, id, 0, skater.Photo)
	s.log.Info().Int64("skater_id", id).Str("photo", skater.Photo).Msg("skater registered")
	return id, nil
}

// Login checks the password and issues a credential carrying the skater's
// identity and admin flag.
func (s *SkaterService) Login(ctx context.Context, email, password string) (string, *domain.Skater, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	skater, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrSkaterNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(skater.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(domain.ClaimsFor(skater))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, skater, nil
}

func (s *SkaterService) Profile(ctx context.Context, id int64) (*domain.Skater, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SkaterService) List(ctx context.Context) ([]*domain.Skater, error) {
	return s.repo.List(ctx)
}

// UpdateProfile applies the provided fields on top of the stored record.
// Concurrent updates are last-writer-wins.
func (s *SkaterService) UpdateProfile(ctx context.Context, id int64, in ports.UpdateProfileInput) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := applyProfile(current, in); err != nil {
		return err
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("update profile: hash password: %w", err)
		}
		current.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, current); err != nil {
		s.observe("update", err)
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrSkaterNotFound) {
			return err
		}
		return fmt.Errorf("update profile: %w", err)
	}

	s.observe("update", nil)
	s.publish(domain.AuditProfileUpdated, id, id, "")
	return nil
}

// Delete removes the account after re-checking its password. The row delete
// commits before the photo is removed; a failed removal is recorded for
// reconciliation and does not fail the call.
func (s *SkaterService) Delete(ctx context.Context, id int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required to delete the account", domain.ErrValidation)
	}

	var photo string
	err := s.repo.WithinTx(ctx, func(tx ports.SkaterTx) error {
		skater, err := tx.FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSkaterNotFound) {
				return domain.ErrDeleteRejected
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(skater.PasswordHash), []byte(password)) != nil {
			return domain.ErrDeleteRejected
		}
		if err := tx.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrSkaterNotFound) {
				return domain.ErrDeleteRejected
			}
			return err
		}
		photo = skater.Photo
		return nil
	})
	if err != nil {
		s.observe("delete", err)
		if errors.Is(err, domain.ErrDeleteRejected) {
			return err
		}
		return fmt.Errorf("delete skater: %w", err)
	}

	// The row is gone; nothing below may fail the request.
	ctx = context.WithoutCancel(ctx)
	if err := s.revocations.Revoke(ctx, id, s.tokens.TTL()); err != nil {
		s.log.Warn().Err(err).Int64("skater_id", id).Msg("failed to revoke credentials of deleted skater")
	}
	s.removePhoto(ctx, id, photo)

	s.observe("delete", nil)
	s.publish(domain.AuditDeleted, id, id, photo)
	s.log.Info().Int64("skater_id", id).Msg("skater deleted")
	return nil
}

// ToggleStatus flips the active flag of targetID and returns the new value.
func (s *SkaterService) ToggleStatus(ctx context.Context, adminID, targetID int64) (bool, error) {
	if targetID <= 0 {
		return false, fmt.Errorf("%w: id of the skater to update is required", domain.ErrValidation)
	}

	var active bool
	err := s.repo.WithinTx(ctx, func(tx ports.SkaterTx) error {
		skater, err := tx.FindForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		active = !skater.Active
		return tx.SetActive(ctx, targetID, active)
	})
	if err != nil {
		s.observe("toggle_status", err)
		if errors.Is(err, domain.ErrSkaterNotFound) {
			return false, err
		}
		return false, fmt.Errorf("toggle status: %w", err)
	}

	s.observe("toggle_status", nil)
	s.publish(domain.AuditStatusToggled, targetID, adminID, fmt.Sprintf("estado=%t", active))
	s.log.Info().Int64("skater_id", targetID).Int64("admin_id", adminID).Bool("estado", active).Msg("skater status toggled")
	return active, nil
}

func (s *SkaterService) photoName(original string) string {
	return fmt.Sprintf("img-%s-%s", s.photoPrefix(), filepath.Base(filepath.Clean("/"+strings.ReplaceAll(original, `\`, "/"))))
}

func (s *SkaterService) removePhoto(ctx context.Context, skaterID int64, photo string) {
	if photo == "" {
		return
	}
	if err := s.photos.Remove(ctx, photo); err != nil {
		metrics.PhotoCleanupFailuresTotal.Inc()
		s.log.Warn().Err(err).Int64("skater_id", skaterID).Str("photo", photo).Msg("photo cleanup failed")
		s.publish(domain.AuditPhotoCleanupFailed, skaterID, 0, photo)
	}
}

func (s *SkaterService) publish(kind domain.AuditKind, skaterID, actorID int64, detail string) {
	s.audit.Publish(domain.AuditEvent{
		Kind:       kind,
		SkaterID:   skaterID,
		ActorID:    actorID,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	})
}

func (s *SkaterService) observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.LifecycleOperationsTotal.WithLabelValues(operation, result).Inc()
}

func validateRegistration(in ports.RegisterInput) error {
	var missing []string
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "nombre")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.YearsExperience < 0 {
		missing = append(missing, "anos_experiencia")
	}
	if strings.TrimSpace(in.Specialty) == "" {
		missing = append(missing, "especialidad")
	}
	if in.Image == nil || in.ImageName == "" {
		missing = append(missing, "imagen")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func applyProfile(s *domain.Skater, in ports.UpdateProfileInput) error {
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
		}
		s.Email = strings.TrimSpace(*in.Email)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return fmt.Errorf("%w: nombre cannot be empty", domain.ErrValidation)
		}
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.YearsExperience != nil {
		if *in.YearsExperience < 0 {
			return fmt.Errorf("%w: anos_experiencia cannot be negative", domain.ErrValidation)
		}
		s.YearsExperience = *in.YearsExperience
	}
	if in.Specialty != nil {
		if strings.TrimSpace(*in.Specialty) == "" {
			return fmt.Errorf("%w: especialidad cannot be empty", domain.ErrValidation)
		}
		s.Specialty = strings.TrimSpace(*in.Specialty)
	}
	return nil
}
