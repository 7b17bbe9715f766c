package guestbook

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/document"
	"github.com/guestdesk/backend/internal/forms"
	"github.com/guestdesk/backend/internal/metrics"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
)

// TemplateSource loads form templates by normalized name.
type TemplateSource interface {
	GetByName(ctx context.Context, name string) (*models.Form, error)
}

// Renderer turns a request and template body into a PDF.
type Renderer interface {
	Render(req document.Request, body string) ([]byte, error)
}

// CompanyDirectory records visitor companies.
type CompanyDirectory interface {
	Ensure(ctx context.Context, name string) (*models.Company, error)
}

// Archiver schedules a stored document for off-site copy.
type Archiver interface {
	EnqueueDocumentArchive(ctx context.Context, submissionID int64) error
}

// Service runs the guest registration pipeline.
type Service struct {
	templates TemplateSource
	renderer  Renderer
	ledger    Ledger
	companies CompanyDirectory
	archiver  Archiver
	metrics   *metrics.Metrics
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewService creates a registration service.
func NewService(templates TemplateSource, renderer Renderer, ledger Ledger, companies CompanyDirectory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		templates: templates,
		renderer:  renderer,
		ledger:    ledger,
		companies: companies,
		validate:  newValidator(),
		logger:    logger,
	}
}

// SetArchiver enables archive jobs for new submissions. Nil disables them.
func (s *Service) SetArchiver(a Archiver) { s.archiver = a }

// SetMetrics sets the metrics sink.
func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Register validates req, renders its document and appends it to the guest book.
// Nothing is stored unless the document rendered. Company directory and archive
// failures after the append are logged and do not fail the registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.normalize()
	if err := s.validate.Struct(&req); err != nil {
		s.metrics.IncrementRegistration(metrics.ResultInvalid)
		return nil, validationError(err)
	}
	signature, err := document.DecodeSignatureURI(req.Signature)
	if err != nil {
		s.metrics.IncrementRegistration(metrics.ResultInvalid)
		return nil, err
	}

	name := forms.ResolveVariant(req.Locate, req.GDPR)
	form, err := s.templates.GetByName(ctx, name)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.metrics.IncrementRegistration(metrics.ResultTemplateNotFound)
			return nil, apperr.NotFound(forms.NotFoundMessage(name))
		}
		s.metrics.IncrementRegistration(metrics.ResultStorageError)
		return nil, err
	}

	sig, err := document.NewSignature(signature)
	if err != nil {
		s.metrics.IncrementRegistration(metrics.ResultInvalid)
		return nil, err
	}
	visitor := models.Visitor{
		FirstName: req.Name,
		LastName:  req.Surname,
		Company:   req.Company.Name,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	start := time.Now()
	pdf, err := s.renderer.Render(document.Request{
		Header:       req.Header,
		Locale:       forms.NormalizeName(req.Locate),
		Visitor:      visitor,
		Acknowledged: req.acknowledged(),
		GDPR:         req.GDPR,
		Signature:    sig,
	}, form.Content)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			s.metrics.IncrementRegistration(metrics.ResultInvalid)
		} else {
			s.metrics.IncrementRegistration(metrics.ResultRenderError)
		}
		return nil, err
	}
	s.metrics.ObserveRender(start, len(pdf))

	submission, err := s.ledger.Append(ctx, visitor, pdf)
	if err != nil {
		s.metrics.IncrementRegistration(metrics.ResultStorageError)
		return nil, err
	}
	s.metrics.IncrementRegistration(metrics.ResultOK)

	// The submission exists now; a client hanging up must not lose its follow-up writes.
	after := context.WithoutCancel(ctx)
	if _, err := s.companies.Ensure(after, visitor.Company); err != nil {
		s.metrics.IncrementDirectoryFailure()
		s.logger.Warn("company directory update failed",
			zap.Int64("submission_id", submission.ID),
			zap.String("company", visitor.Company),
			zap.Error(err))
	}
	if s.archiver != nil {
		if err := s.archiver.EnqueueDocumentArchive(after, submission.ID); err != nil {
			s.logger.Warn("enqueue document archive failed",
				zap.Int64("submission_id", submission.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("guest registered",
		zap.Int64("submission_id", submission.ID),
		zap.String("form", name),
		zap.Int("pdf_bytes", len(pdf)))
	return &RegisterResponse{ID: submission.ID, CreatedAt: submission.CreatedAt}, nil
}
