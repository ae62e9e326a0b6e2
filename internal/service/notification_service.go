package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/anamaak-service/internal/events"
)

var statusLabels = map[string]string{
	"soumise":       "Soumise",
	"en_traitement": "En traitement",
	"resolu":        "Résolu",
}

// NotificationService reacts to domain events: status changes are mailed to
// the report owner when SMTP is configured, everything is logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	mailer     *Mailer
}

// NewNotificationService creates the service. A nil mailer degrades to
// log-only notifications.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, mailer *Mailer) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		mailer:     mailer,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportCreated, n.handleReportCreated)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventReportVisibilityChanged, n.handleVisibilityChanged)
}

func (n *NotificationService) handleReportCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ReportCreated",
		zap.Int64("report_id", event.ReportID),
		zap.String("code_suivi", event.TrackingCode))
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportStatusChangedPayload)
	if !ok {
		return nil
	}

	n.logger.Info("ReportStatusChanged",
		zap.Int64("report_id", event.ReportID),
		zap.String("code_suivi", event.TrackingCode),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	if n.mailer == nil || payload.OwnerEmail == nil || *payload.OwnerEmail == "" {
		return nil
	}

	name := "Citoyen"
	if payload.OwnerName != nil && *payload.OwnerName != "" {
		name = *payload.OwnerName
	}
	label := statusLabels[string(payload.NewStatus)]
	if label == "" {
		label = string(payload.NewStatus)
	}

	subject := fmt.Sprintf("AnaMaaK — votre signalement %s est maintenant \"%s\"", event.TrackingCode, label)
	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Le statut de votre signalement <b>%s</b> est passé à <b>%s</b>.</p>",
		name, event.TrackingCode, label)
	if payload.Comment != "" {
		body += fmt.Sprintf("<p>Commentaire: %s</p>", payload.Comment)
	}
	body += "<p>Merci de contribuer à l'amélioration de votre ville.</p>"

	if err := n.mailer.Send(*payload.OwnerEmail, subject, body); err != nil {
		n.logger.Warn("status notification mail failed",
			zap.String("code_suivi", event.TrackingCode),
			zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleVisibilityChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ReportVisibilityChanged",
		zap.Int64("report_id", event.ReportID),
		zap.String("code_suivi", event.TrackingCode),
		zap.Any("payload", event.Payload))
	return nil
}
