package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/biz/usecase"
	"github.com/squarelan/verify-relay/internal/metrics"
)

const (
	cmdStart      = "/start"
	cmdBlock      = "/block"
	cmdUnblock    = "/unblock"
	cmdCheckBlock = "/checkblock"
)

// DispatcherConfig is the explicit configuration of a dispatcher
type DispatcherConfig struct {
	OperatorID  string        // Chat id of the single operator
	Texts       Texts         // User-facing strings
	SendTimeout time.Duration // Bound on each outbound platform call
}

// Dispatcher is the single entry point for inbound events. It consults
// moderation, verification and fraud screening in that order and issues
// the outbound actions.
type Dispatcher struct {
	config    DispatcherConfig
	verifyUC  *usecase.VerificationUsecase
	routeUC   *usecase.RoutingUsecase
	modUC     *usecase.ModerationUsecase
	fraudUC   *usecase.FraudUsecase
	messenger repo.MessengerRepo
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	config DispatcherConfig,
	verifyUC *usecase.VerificationUsecase,
	routeUC *usecase.RoutingUsecase,
	modUC *usecase.ModerationUsecase,
	fraudUC *usecase.FraudUsecase,
	messenger repo.MessengerRepo,
	m *metrics.Metrics,
	log *slog.Logger,
) *Dispatcher {
	config.Texts.FillDefaults()
	if config.SendTimeout <= 0 {
		config.SendTimeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		config:    config,
		verifyUC:  verifyUC,
		routeUC:   routeUC,
		modUC:     modUC,
		fraudUC:   fraudUC,
		messenger: messenger,
		metrics:   m,
		log:       log.With("component", "dispatcher"),
	}
}

// HandleInbound processes one inbound event. Returned errors come from
// the store only; platform failures are logged and dropped.
func (d *Dispatcher) HandleInbound(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case *domain.Message:
		d.metrics.Event("message")
		return d.handleMessage(ctx, e)
	case *domain.CallbackAnswer:
		d.metrics.Event("callback")
		return d.handleCallback(ctx, e)
	default:
		d.log.Debug("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *domain.Message) error {
	if command(msg.Text) == cmdStart {
		d.sendText(ctx, msg.ChatID, d.config.Texts.Greeting, nil)
		return nil
	}

	if msg.SenderIsOperator {
		return d.handleOperatorMessage(ctx, msg)
	}
	return d.handleGuestMessage(ctx, msg)
}

func (d *Dispatcher) handleOperatorMessage(ctx context.Context, msg *domain.Message) error {
	operator := d.config.OperatorID
	texts := d.config.Texts

	if !msg.IsReply() {
		d.sendText(ctx, operator, texts.UsageHint, nil)
		return nil
	}

	guestID, err := d.routeUC.Resolve(ctx, msg.ReplyToMessageID)
	if errors.Is(err, domain.ErrRouteNotFound) {
		d.sendText(ctx, operator, texts.RouteNotFound, nil)
		return nil
	}
	if err != nil {
		return err
	}

	switch command(msg.Text) {
	case cmdBlock:
		err := d.modUC.SetBlocked(ctx, guestID, true)
		if errors.Is(err, domain.ErrSelfModeration) {
			d.sendText(ctx, operator, texts.SelfBlock, nil)
			return nil
		}
		if err != nil {
			return err
		}
		d.log.Info("user blocked", "user_id", guestID)
		d.sendText(ctx, operator, withUID(texts.BlockDone, guestID), nil)

	case cmdUnblock:
		if err := d.modUC.SetBlocked(ctx, guestID, false); err != nil {
			return err
		}
		d.log.Info("user unblocked", "user_id", guestID)
		d.sendText(ctx, operator, withUID(texts.UnblockDone, guestID), nil)

	case cmdCheckBlock:
		blocked, err := d.modUC.IsBlocked(ctx, guestID)
		if err != nil {
			return err
		}
		status := texts.StatusNotBlocked
		if blocked {
			status = texts.StatusBlocked
		}
		d.sendText(ctx, operator, withUID(status, guestID), nil)

	default:
		err := d.call(ctx, "copy", func(ctx context.Context) error {
			return d.messenger.RelayCopy(ctx, guestID, msg.ChatID, msg.MessageID)
		})
		if err == nil {
			d.metrics.Relayed("to_guest")
		}
	}
	return nil
}

func (d *Dispatcher) handleGuestMessage(ctx context.Context, msg *domain.Message) error {
	guestID := msg.ChatID
	texts := d.config.Texts

	blocked, err := d.modUC.IsBlocked(ctx, guestID)
	if err != nil {
		return err
	}
	if blocked {
		d.sendText(ctx, guestID, texts.Blocked, nil)
		return nil
	}

	verified, err := d.verifyUC.IsVerified(ctx, guestID)
	if err != nil {
		return err
	}
	if !verified {
		return d.challenge(ctx, guestID)
	}

	if d.fraudUC.CheckFraud(ctx, guestID) == domain.FraudSuspect {
		d.log.Warn("fraud suspect", "user_id", guestID)
		d.metrics.FraudWarning()
		d.sendText(ctx, d.config.OperatorID, withUID(texts.FraudWarning, guestID), nil)
	}

	var relayedID int
	err = d.call(ctx, "forward", func(ctx context.Context) error {
		var err error
		relayedID, err = d.messenger.Relay(ctx, d.config.OperatorID, guestID, msg.MessageID)
		return err
	})
	if err != nil {
		return nil
	}
	d.metrics.Relayed("to_operator")

	if err := d.routeUC.RecordRoute(ctx, relayedID, guestID); err != nil {
		return err
	}

	if notice, ok := d.fraudUC.MaybeNotify(ctx, guestID); ok {
		d.sendText(ctx, d.config.OperatorID, notice, nil)
	}
	return nil
}

// challenge issues a new challenge, or re-prompts when one is pending
func (d *Dispatcher) challenge(ctx context.Context, guestID string) error {
	_, pending, err := d.verifyUC.PendingAnswer(ctx, guestID)
	if err != nil {
		return err
	}
	if pending {
		d.sendText(ctx, guestID, d.config.Texts.RePrompt, nil)
		return nil
	}

	c, err := d.verifyUC.IssueChallenge(ctx, guestID)
	if errors.Is(err, domain.ErrChallengePending) {
		// Lost a race with a concurrent delivery
		d.sendText(ctx, guestID, d.config.Texts.RePrompt, nil)
		return nil
	}
	if err != nil {
		return err
	}
	d.metrics.ChallengeIssued()

	prompt := withQuestion(d.config.Texts.ChallengePrompt, c.Problem.Question())
	err = d.call(ctx, "send", func(ctx context.Context) error {
		return d.messenger.SendText(ctx, guestID, prompt, &domain.SendOptions{Keyboard: keyboardFor(c)})
	})
	if err != nil {
		// The guest never saw the buttons
		return d.verifyUC.WithdrawChallenge(ctx, guestID)
	}
	return nil
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *domain.CallbackAnswer) error {
	payload, err := domain.ParseAnswerPayload(cb.Payload)
	if err != nil {
		d.log.Debug("ignoring callback", "user_id", cb.FromUserID, "err", err)
		return nil
	}

	result, err := d.verifyUC.SubmitAnswer(ctx, cb.FromUserID, payload.Picked, payload.Claimed)
	if errors.Is(err, domain.ErrNoPendingChallenge) {
		d.ack(ctx, cb.CallbackID, d.config.Texts.ChallengeExpired, true)
		return nil
	}
	if err != nil {
		return err
	}
	d.metrics.Answer(result.String())

	if result != domain.AnswerCorrect {
		d.ack(ctx, cb.CallbackID, d.config.Texts.WrongAnswer, true)
		return nil
	}

	d.log.Info("user verified", "user_id", cb.FromUserID)
	_ = d.call(ctx, "edit", func(ctx context.Context) error {
		return d.messenger.EditText(ctx, cb.FromUserID, cb.OriginMessageID, d.config.Texts.VerifySuccess)
	})
	d.ack(ctx, cb.CallbackID, "", false)
	return nil
}

func (d *Dispatcher) sendText(ctx context.Context, chatID, text string, opts *domain.SendOptions) {
	_ = d.call(ctx, "send", func(ctx context.Context) error {
		return d.messenger.SendText(ctx, chatID, text, opts)
	})
}

func (d *Dispatcher) ack(ctx context.Context, callbackID, text string, alert bool) {
	_ = d.call(ctx, "ack", func(ctx context.Context) error {
		return d.messenger.AckCallback(ctx, callbackID, text, alert)
	})
}

// call runs one outbound platform action under the send timeout. A
// failure is logged and counted, never retried.
func (d *Dispatcher) call(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		d.metrics.TransportError(action)
		d.log.Error("platform call failed", "action", action, "err", err)
		return err
	}
	return nil
}

// keyboardFor lays the options out two per row
func keyboardFor(c *domain.Challenge) [][]domain.Button {
	var rows [][]domain.Button
	var row []domain.Button
	for _, p := range c.Payloads() {
		row = append(row, domain.Button{Text: fmt.Sprint(p.Picked), Data: p.Encode()})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// command returns the bot command in text, without any @botname suffix
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}
