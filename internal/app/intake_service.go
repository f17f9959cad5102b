package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/clock"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/session"
	"github.com/rs/zerolog"
)

type OrderWriter interface {
	Upsert(ctx context.Context, order domain.Order) error
}

// PaymentAccounts is the provider-side collaborator that issues collection
// accounts for buyers.
type PaymentAccounts interface {
	CreateCustomer(ctx context.Context, email, firstName, lastName string) (string, error)
	CreateDedicatedAccount(ctx context.Context, customerID string) (domain.CollectionAccount, error)
}

// Reply is what the intake flow wants said back to the buyer. Options, when
// set, are rendered as a one-time reply keyboard.
type Reply struct {
	Text    string
	Options []string
}

const restartCommand = "/start"

// IntakeService drives the multi-turn intake dialogue: first name, last name,
// email, plan, then hands off to the payments provider and persists the order.
type IntakeService struct {
	sessions *session.Store
	orders   OrderWriter
	accounts PaymentAccounts
	plans    map[string]int
	clock    clock.Clock
	log      zerolog.Logger
}

func NewIntakeService(sessions *session.Store, orders OrderWriter, accounts PaymentAccounts, plans map[string]int, clk clock.Clock, log zerolog.Logger) *IntakeService {
	return &IntakeService{
		sessions: sessions,
		orders:   orders,
		accounts: accounts,
		plans:    plans,
		clock:    clk,
		log:      log,
	}
}

// HandleMessage advances the conversation for one inbound chat message and
// returns the reply to send. It never returns an error to the transport;
// failures surface to the buyer as a retry-later reply.
func (s *IntakeService) HandleMessage(ctx context.Context, sessionID int64, text string) Reply {
	text = strings.TrimSpace(text)

	if text == restartCommand {
		s.sessions.Put(session.Session{ID: sessionID, Stage: session.StageAwaitingFirstName})
		return Reply{Text: "Welcome! Let's get you set up. What is your first name?"}
	}

	sess := s.sessions.Get(sessionID)
	switch sess.Stage {
	case session.StageAwaitingFirstName:
		if text == "" {
			return Reply{Text: "Please send your first name."}
		}
		sess.FirstName = text
		sess.Stage = session.StageAwaitingLastName
		s.sessions.Put(sess)
		return Reply{Text: "Thanks! And your last name?"}

	case session.StageAwaitingLastName:
		if text == "" {
			return Reply{Text: "Please send your last name."}
		}
		sess.LastName = text
		sess.Stage = session.StageAwaitingEmail
		s.sessions.Put(sess)
		return Reply{Text: "Got it. What email address should we use?"}

	case session.StageAwaitingEmail:
		if !strings.Contains(text, "@") {
			return Reply{Text: "That doesn't look like a valid email. Please send a valid email address."}
		}
		sess.Email = text
		sess.Stage = session.StageAwaitingPlan
		s.sessions.Put(sess)
		return Reply{Text: "Choose a plan:", Options: s.planNames()}

	case session.StageAwaitingPlan:
		amount, ok := s.plans[text]
		if !ok {
			return Reply{Text: "Please choose a plan from the keyboard.", Options: s.planNames()}
		}
		return s.issueAccount(ctx, sess, text, amount)

	default:
		return Reply{Text: "Send /start to begin the purchase flow."}
	}
}

// issueAccount creates the provider customer and dedicated account, then
// persists the order. If any step fails no order is written and the session
// stays at plan selection, so a valid collection reference always backs a
// persisted awaiting_payment order.
func (s *IntakeService) issueAccount(ctx context.Context, sess session.Session, plan string, amount int) Reply {
	retryLater := Reply{Text: "We couldn't set up your payment account right now. Please try again in a few minutes.", Options: s.planNames()}

	customerID, err := s.accounts.CreateCustomer(ctx, sess.Email, sess.FirstName, sess.LastName)
	if err != nil {
		s.log.Error().Err(err).Int64("session_id", sess.ID).Msg("create customer failed")
		return retryLater
	}

	account, err := s.accounts.CreateDedicatedAccount(ctx, customerID)
	if err != nil {
		s.log.Error().Err(err).Int64("session_id", sess.ID).Msg("create dedicated account failed")
		return retryLater
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:                  newID(),
		SessionID:           sess.ID,
		FirstName:           sess.FirstName,
		LastName:            sess.LastName,
		Email:               sess.Email,
		Plan:                plan,
		CustomerID:          customerID,
		CollectionReference: account.Reference,
		AccountBank:         account.BankName,
		AccountName:         account.AccountName,
		AccountNumber:       account.AccountNumber,
		Status:              domain.OrderStatusAwaitingPayment,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.orders.Upsert(ctx, order); err != nil {
		s.log.Error().Err(err).Int64("session_id", sess.ID).Msg("persist order failed")
		return retryLater
	}

	s.sessions.Clear(sess.ID)
	return Reply{Text: fmt.Sprintf(
		"Please pay %d for the %s plan to your dedicated account:\nBank: %s\nAccount name: %s\nAccount number: %s\nYour voucher will be sent automatically once payment clears.",
		amount, plan, account.BankName, account.AccountName, account.AccountNumber,
	)}
}

func (s *IntakeService) planNames() []string {
	names := make([]string, 0, len(s.plans))
	for name := range s.plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
