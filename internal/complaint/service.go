// Package complaint normalizes submissions from every intake channel into a
// single complaint record and applies admin status and routing updates.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"igire/backend/internal/categorize"
	"igire/backend/internal/config"
	"igire/backend/internal/localization"
	"igire/backend/internal/metrics"
	"igire/backend/internal/models"
	"igire/backend/internal/storage"
	"igire/backend/internal/transcribe"

	"go.uber.org/zap"
)

var (
	// ErrInvalid wraps every validation failure; the message after the prefix is safe to show.
	ErrInvalid           = errors.New("invalid complaint")
	ErrNoFields          = errors.New("no valid fields to update")
	ErrInvalidTransition = errors.New("status cannot move backwards")
	ErrNoTranscriber     = errors.New("transcription is not configured")
)

// Store is the persistence the complaint flow depends on.
type Store interface {
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error)
	UpdateComplaintFields(ctx context.Context, id string, fields map[string]interface{}) error
	GetInstitution(ctx context.Context, id string) (*models.Institution, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	AddUserPoints(ctx context.Context, userID string, delta int) error
	PublishEvent(ctx context.Context, event models.DashboardEvent) error
}

type Categorizer interface {
	Categorize(ctx context.Context, description string) categorize.Result
	Route(ctx context.Context, category models.Category) string
}

type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (*transcribe.Transcript, error)
}

// AssignmentNotifier tells an institution a complaint was routed to it.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, inst *models.Institution, c *models.Complaint) error
}

// SMSSender reaches reporters on their phone.
type SMSSender interface {
	Send(ctx context.Context, to, text string) error
}

// Submission is one channel's complaint before normalization.
type Submission struct {
	UserID        *string
	ReporterPhone string
	Description   string
	// Category is the reporter's own choice; empty lets the categorizer decide.
	Category  models.Category
	District  string
	Sector    string
	Cell      string
	Village   string
	Latitude  *float64
	Longitude *float64
	Channel   models.Channel
	MediaURL  string
	Language  string
	Meta      map[string]interface{}
}

// Update is a partial admin change. Nil fields are left alone; an empty
// AssignedAgencyID clears the assignment.
type Update struct {
	Status           *models.Status `json:"status"`
	AssignedAgencyID *string        `json:"assignedAgency"`
}

// Service handles the business logic for complaints.
type Service struct {
	store       Store
	categorizer Categorizer
	uploader    Uploader
	transcriber Transcriber
	notifier    AssignmentNotifier
	sms         SMSSender
	texts       *localization.Localizer
	logger      *zap.Logger
	now         func() time.Time
}

// Option wires an optional integration.
type Option func(*Service)

func WithUploader(u Uploader) Option { return func(s *Service) { s.uploader = u } }

func WithTranscriber(t Transcriber) Option { return func(s *Service) { s.transcriber = t } }

func WithNotifier(n AssignmentNotifier) Option { return func(s *Service) { s.notifier = n } }

func WithSMS(sender SMSSender) Option { return func(s *Service) { s.sms = sender } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a new complaint service.
func NewService(store Store, categorizer Categorizer, texts *localization.Localizer, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		categorizer: categorizer,
		texts:       texts,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores exactly one complaint and credits the reporter. Retried
// submissions are stored again.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Complaint, error) {
	sub.Description = strings.TrimSpace(sub.Description)
	if err := validate(sub); err != nil {
		return nil, err
	}

	c := &models.Complaint{
		UserID:        sub.UserID,
		ReporterPhone: sub.ReporterPhone,
		Description:   sub.Description,
		District:      strings.TrimSpace(sub.District),
		Sector:        strings.TrimSpace(sub.Sector),
		Cell:          strings.TrimSpace(sub.Cell),
		Village:       strings.TrimSpace(sub.Village),
		Latitude:      sub.Latitude,
		Longitude:     sub.Longitude,
		Channel:       sub.Channel,
		MediaURL:      sub.MediaURL,
		Language:      sub.Language,
		Meta:          sub.Meta,
		Status:        models.StatusSubmitted,
		PointsAwarded: config.ComplaintPoints,
	}

	if c.Description != "" {
		res := s.categorizer.Categorize(ctx, c.Description)
		c.AICategory = res.Category
		c.AIConfidence = res.Confidence
		c.SuggestedAgency = res.SuggestedInstitution
		c.Category = res.Category
		c.CategorySource = res.Source
	}
	if sub.Category != "" {
		c.Category = models.ParseCategory(string(sub.Category))
		c.CategorySource = models.SourceUser
	}
	if c.Category == "" {
		// Nothing to classify, typically a silent recording.
		c.Category = models.CategoryOther
		c.AICategory = models.CategoryOther
		c.CategorySource = models.SourceKeyword
	}
	if c.SuggestedAgency == "" {
		c.SuggestedAgency = s.categorizer.Route(ctx, c.Category)
	}

	if c.UserID == nil && c.ReporterPhone != "" {
		if u, err := s.store.GetUserByPhone(ctx, c.ReporterPhone); err == nil {
			c.UserID = &u.ID
		} else if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("reporter lookup failed", zap.String("channel", string(c.Channel)), zap.Error(err))
		}
	}

	if err := s.store.CreateComplaint(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store complaint: %w", err)
	}
	metrics.ComplaintsSubmitted.WithLabelValues(string(c.Channel)).Inc()

	if c.UserID != nil {
		if err := s.store.AddUserPoints(ctx, *c.UserID, config.ComplaintPoints); err != nil {
			return nil, fmt.Errorf("failed to credit points for complaint %s: %w", c.ID, err)
		}
	}

	s.publish(ctx, models.EventComplaintCreated, c)

	s.logger.Info("complaint submitted",
		zap.String("complaint_id", c.ID),
		zap.String("tracking_code", c.TrackingCode),
		zap.String("channel", string(c.Channel)),
		zap.String("category", string(c.Category)),
		zap.String("category_source", string(c.CategorySource)))
	return c, nil
}

func validate(sub Submission) error {
	if !sub.Channel.Valid() {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalid, sub.Channel)
	}
	if sub.Description == "" && sub.Category == "" && sub.MediaURL == "" {
		return fmt.Errorf("%w: description, category or media is required", ErrInvalid)
	}
	if sub.Category != "" && !sub.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, sub.Category)
	}
	switch sub.Channel {
	case models.ChannelWeb, models.ChannelVideo:
		for name, v := range map[string]string{
			"district": sub.District, "sector": sub.Sector, "cell": sub.Cell, "village": sub.Village,
		} {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: %s is required", ErrInvalid, name)
			}
		}
	case models.ChannelSMS, models.ChannelUSSD:
		if strings.TrimSpace(sub.District) == "" {
			return fmt.Errorf("%w: location is required", ErrInvalid)
		}
	}
	return nil
}

// SubmitMedia uploads an audio or video file, transcribes it and submits the result.
func (s *Service) SubmitMedia(ctx context.Context, sub Submission, filename string, file io.Reader) (*models.Complaint, error) {
	if s.uploader == nil {
		return nil, errors.New("media upload is not configured")
	}
	url, err := s.uploader.Upload(ctx, filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	return s.SubmitRecording(ctx, sub, url)
}

// SubmitRecording transcribes media that is already hosted and submits the complaint.
// It blocks until the transcript is ready or the transcription timeout passes.
func (s *Service) SubmitRecording(ctx context.Context, sub Submission, mediaURL string) (*models.Complaint, error) {
	sub.MediaURL = mediaURL
	if s.transcriber == nil {
		if strings.TrimSpace(sub.Description) == "" {
			return nil, ErrNoTranscriber
		}
		return s.Submit(ctx, sub)
	}

	start := s.now()
	transcript, err := s.transcriber.Transcribe(ctx, mediaURL)
	result := "completed"
	if err != nil {
		result = "failed"
		if errors.Is(err, transcribe.ErrTimeout) {
			result = "timeout"
		}
	}
	metrics.TranscriptionDuration.WithLabelValues(result).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe media: %w", err)
	}

	if desc := strings.TrimSpace(sub.Description); desc != "" {
		sub.Description = desc + "\n\n" + transcript.Text
	} else {
		sub.Description = transcript.Text
	}
	if sub.Language == "" {
		sub.Language = transcript.Language
	}
	return s.Submit(ctx, sub)
}

// Update applies a partial status/assignment change. Concurrent updates are last-write-wins.
func (s *Service) Update(ctx context.Context, id string, upd Update) (*models.Complaint, error) {
	if upd.Status == nil && upd.AssignedAgencyID == nil {
		return nil, ErrNoFields
	}

	c, err := s.store.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	statusChanged := false
	if upd.Status != nil {
		next := *upd.Status
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, next)
		}
		if !c.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.Status, next)
		}
		statusChanged = next != c.Status
		fields["status"] = next
		c.Status = next
	}

	var assigned *models.Institution
	if upd.AssignedAgencyID != nil {
		if instID := strings.TrimSpace(*upd.AssignedAgencyID); instID == "" {
			fields["assigned_agency_id"] = nil
			c.AssignedAgencyID = nil
		} else {
			inst, err := s.store.GetInstitution(ctx, instID)
			if err != nil {
				return nil, fmt.Errorf("institution %s: %w", instID, err)
			}
			if c.AssignedAgencyID == nil || *c.AssignedAgencyID != inst.ID {
				assigned = inst
			}
			fields["assigned_agency_id"] = inst.ID
			c.AssignedAgencyID = &inst.ID
		}
	}

	if err := s.store.UpdateComplaintFields(ctx, c.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update complaint: %w", err)
	}
	c.UpdatedAt = s.now()

	if statusChanged {
		metrics.StatusUpdates.WithLabelValues(string(c.Status)).Inc()
		s.notifyReporter(ctx, c)
	}
	if assigned != nil {
		s.notifyInstitution(ctx, assigned, c)
	}
	s.publish(ctx, models.EventComplaintUpdated, c)

	s.logger.Info("complaint updated", zap.String("complaint_id", c.ID), zap.Any("fields", fields))
	return c, nil
}

func (s *Service) notifyReporter(ctx context.Context, c *models.Complaint) {
	if s.sms == nil || c.ReporterPhone == "" {
		return
	}
	status := s.texts.GetString(c.Language, "status."+string(c.Status))
	text := s.texts.Format(c.Language, "sms.status_update", c.TrackingCode, status)
	if err := s.sms.Send(ctx, c.ReporterPhone, text); err != nil {
		s.logger.Warn("failed to notify reporter", zap.String("complaint_id", c.ID), zap.Error(err))
	}
}

func (s *Service) notifyInstitution(ctx context.Context, inst *models.Institution, c *models.Complaint) {
	if s.notifier == nil || inst.TelegramChatID == nil {
		return
	}
	if err := s.notifier.NotifyAssignment(ctx, inst, c); err != nil {
		s.logger.Warn("failed to notify institution",
			zap.String("institution", inst.Name), zap.String("complaint_id", c.ID), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, typ models.EventType, c *models.Complaint) {
	event := models.DashboardEvent{Type: typ, Complaint: c, At: s.now()}
	if err := s.store.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish dashboard event", zap.String("type", string(typ)), zap.Error(err))
	}
}
