package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	gwcommand "github.com/goliatone/go-telegram-gateway/command"
	"github.com/goliatone/go-telegram-gateway/core"
	gwquery "github.com/goliatone/go-telegram-gateway/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
// Dispatch and Query run it before a message reaches the dispatcher.
func ValidateMessageContract(msg any) error {
	if err := messageType(msg); err != nil {
		return err
	}
	return command.ValidateMessage(msg)
}

func messageType(msg any) error {
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	if err := ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// Handlers groups the gateway handlers that RegisterGateway subscribes.
// Nil entries are skipped.
type Handlers struct {
	SendVerificationMessage   *gwcommand.SendVerificationMessageCommand
	RevokeVerificationMessage *gwcommand.RevokeVerificationMessageCommand
	CheckSendAbility          *gwquery.CheckSendAbilityQuery
	CheckVerificationStatus   *gwquery.CheckVerificationStatusQuery
}

// RegisterGateway registers and subscribes every handler in h. On failure the
// subscriptions made so far are released.
func RegisterGateway(
	adapter *RegistryAdapter,
	h Handlers,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if err := checkMessageTypes(
		gwcommand.SendVerificationMessageMessage{},
		gwcommand.RevokeVerificationMessageMessage{},
		gwquery.CheckSendAbilityMessage{},
		gwquery.CheckVerificationStatusMessage{},
	); err != nil {
		return nil, err
	}

	subscriptions := make([]commanddispatcher.Subscription, 0, 4)
	keep := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subscriptions = append(subscriptions, sub)
		return nil
	}

	var err error
	if h.SendVerificationMessage != nil {
		err = keep(RegisterAndSubscribe[gwcommand.SendVerificationMessageMessage](adapter, h.SendVerificationMessage, runnerOpts...))
	}
	if err == nil && h.RevokeVerificationMessage != nil {
		err = keep(RegisterAndSubscribe[gwcommand.RevokeVerificationMessageMessage](adapter, h.RevokeVerificationMessage, runnerOpts...))
	}
	if err == nil && h.CheckSendAbility != nil {
		err = keep(RegisterAndSubscribeQuery[gwquery.CheckSendAbilityMessage, core.RequestStatus](adapter, h.CheckSendAbility, runnerOpts...))
	}
	if err == nil && h.CheckVerificationStatus != nil {
		err = keep(RegisterAndSubscribeQuery[gwquery.CheckVerificationStatusMessage, core.RequestStatus](adapter, h.CheckVerificationStatus, runnerOpts...))
	}
	if err != nil {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
		return nil, err
	}
	return subscriptions, nil
}

// checkMessageTypes requires every message to carry a distinct, non-empty
// Type(), since the registry and the dispatcher both key on it.
func checkMessageTypes(msgs ...command.Message) error {
	seen := make(map[string]struct{}, len(msgs))
	for _, msg := range msgs {
		if err := messageType(msg); err != nil {
			return err
		}
		key := msg.Type()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("gocommand: message type %q registered twice", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
