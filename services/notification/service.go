package notification

import (
	"context"

	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/estafette/estafette-kernel-builder/clients/mail"
	"github.com/estafette/estafette-kernel-builder/services/evaluation"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service tells the operator about a finished build
//
//go:generate mockgen -package=notification -destination ./mock.go -source=service.go
type Service interface {
	Notify(ctx context.Context, version string, status contracts.LogStatus) (err error)
}

// NewService returns a new notification.Service; a nil mailClient disables notifications
func NewService(mailClient mail.Client, evaluationService evaluation.Service, when string) (Service, error) {
	return &service{
		mailClient:        mailClient,
		evaluationService: evaluationService,
		when:              when,
	}, nil
}

type service struct {
	mailClient        mail.Client
	evaluationService evaluation.Service
	when              string
}

func (s *service) Notify(ctx context.Context, version string, status contracts.LogStatus) (err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "Notify")
	defer span.Finish()

	if s.mailClient == nil {
		log.Info().Msg("[notify] No mail configuration, skipping notification")
		return nil
	}

	send, err := s.evaluationService.Evaluate("notify", s.when, s.evaluationService.GetParameters(status, version))
	if err != nil {
		return errors.Wrapf(err, "evaluating notification condition %q failed", s.when)
	}
	if !send {
		log.Info().Msgf("[notify] Condition %q is false for status %v, skipping notification", s.when, status)
		return nil
	}

	if err = s.mailClient.SendBuildNotification(ctx, version); err != nil {
		return errors.Wrap(err, "sending build notification failed")
	}

	return nil
}
