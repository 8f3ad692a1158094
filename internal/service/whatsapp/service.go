package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/config"
	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
	"github.com/mamadbah2/coldroom/internal/service/reporting"
	client "github.com/mamadbah2/coldroom/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

const helpText = "Cold room assistant\n" +
	"/status - report of every room\n" +
	"/status <room> - status of one room\n" +
	"/rooms - list rooms\n" +
	"/products - list the product catalog\n" +
	"/help - this message"

// MessagingService describes the operations the HTTP layer and the scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	NotifyAlerts(ctx context.Context, statuses []monitoring.RoomStatus) error
}

// Monitor is the read-only view of the facility used to answer commands.
type Monitor interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, ref string) (*models.Room, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	EvaluateRoom(ctx context.Context, room models.Room, manualOverride bool) (*monitoring.RoomStatus, error)
}

// Reporter renders the facility report.
type Reporter interface {
	FacilityReport(ctx context.Context) (string, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg      config.WhatsAppConfig
	client   client.Client
	monitor  Monitor
	reporter Reporter
	logger   *zap.Logger

	mu sync.Mutex
	// notified holds the alert signature last sent per room.
	notified map[string]string
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, monitor Monitor, reporter Reporter, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:      cfg,
		client:   client,
		monitor:  monitor,
		reporter: reporter,
		logger:   logger,
		notified: make(map[string]string),
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.answer(ctx, cmd)
	if err != nil {
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = models.UserMessage(err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := s.client.MarkAsRead(ctxWithTimeout, msg.ID); err != nil {
		s.logger.Debug("failed to mark message read", zap.String("message_id", msg.ID), zap.Error(err))
	}

	_, err = s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   msg.From,
		Body: reply,
	})
	return err
}

func (s *MetaWhatsAppService) answer(ctx context.Context, cmd models.Command) (string, error) {
	switch cmd.Type {
	case models.CommandStatus:
		if len(cmd.Args) == 0 {
			return s.reporter.FacilityReport(ctx)
		}
		return s.roomStatus(ctx, strings.Join(cmd.Args, " "))
	case models.CommandRooms:
		return s.listRooms(ctx)
	case models.CommandProducts:
		return s.listProducts(ctx)
	case models.CommandHelp:
		return helpText, nil
	default:
		return "Unknown command.\n" + helpText, nil
	}
}

func (s *MetaWhatsAppService) roomStatus(ctx context.Context, ref string) (string, error) {
	room, err := s.monitor.GetRoom(ctx, ref)
	if err != nil {
		return "", err
	}
	status, err := s.monitor.EvaluateRoom(ctx, *room, false)
	if err != nil {
		return "", err
	}

	lines := []string{reporting.RoomLine(*status)}
	for _, msg := range rules.Messages(status.Alerts) {
		lines = append(lines, "! "+msg)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *MetaWhatsAppService) listRooms(ctx context.Context) (string, error) {
	rooms, err := s.monitor.ListRooms(ctx)
	if err != nil {
		return "", err
	}
	if len(rooms) == 0 {
		return "No rooms registered.", nil
	}

	lines := make([]string, 0, len(rooms)+1)
	lines = append(lines, "Rooms")
	for _, room := range rooms {
		lines = append(lines, fmt.Sprintf("- %s: %.1f°C (target %.1f°C)", room.Name, room.CurrentTemp, room.TargetTemp))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *MetaWhatsAppService) listProducts(ctx context.Context) (string, error) {
	products, err := s.monitor.ListProducts(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "The catalog is empty.", nil
	}

	lines := make([]string, 0, len(products)+1)
	lines = append(lines, "Products")
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s: %.1f..%.1f°C, %.0f%% humidity, %d days",
			p.Name, p.MinTemp, p.MaxTemp, p.IdealHumidity, p.ShelfLifeDays))
	}
	return strings.Join(lines, "\n"), nil
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   req.To,
		Body: req.Message,
	})
	return err
}

// NotifyAlerts sends the alert recipient one message per room whose alerts
// changed since the last notification. Rooms returning to normal are announced
// once as well.
func (s *MetaWhatsAppService) NotifyAlerts(ctx context.Context, statuses []monitoring.RoomStatus) error {
	if s.cfg.AlertRecipient == "" {
		return nil
	}

	var firstErr error
	for _, st := range statuses {
		signature := alertSignature(st.Alerts)
		if !s.changed(st.Room.ID, signature) {
			continue
		}

		body := fmt.Sprintf("%s is back to normal.\n%s", st.Room.Name, reporting.RoomLine(st))
		if signature != "" {
			body = fmt.Sprintf("Alert in %s\n%s\n%s", st.Room.Name, reporting.RoomLine(st),
				strings.Join(rules.Messages(st.Alerts), "\n"))
		}

		if err := s.SendOutbound(ctx, models.OutboundMessageRequest{To: s.cfg.AlertRecipient, Message: body}); err != nil {
			s.logger.Error("failed to send alert notification", zap.String("room_id", st.Room.ID), zap.Error(err))
			s.forget(st.Room.ID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// changed records signature for the room and reports whether it differs from
// the previous one. A room never seen before counts as changed only when it
// has alerts.
func (s *MetaWhatsAppService) changed(roomID, signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, seen := s.notified[roomID]
	s.notified[roomID] = signature
	if !seen {
		return signature != ""
	}
	return previous != signature
}

func (s *MetaWhatsAppService) forget(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notified, roomID)
}

func alertSignature(alerts []rules.Alert) string {
	kinds := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if a.Kind == rules.AlertManualOverride {
			continue
		}
		kinds = append(kinds, string(a.Kind))
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ",")
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
