package gateway

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-telegram-gateway/adapters/gocommand"
	gwcommand "github.com/goliatone/go-telegram-gateway/command"
	gwquery "github.com/goliatone/go-telegram-gateway/query"
)

type CommandQueryClient interface {
	gwcommand.MutatingClient
	gwquery.StatusReader
}

type Commands struct {
	SendVerificationMessage   *gwcommand.SendVerificationMessageCommand
	RevokeVerificationMessage *gwcommand.RevokeVerificationMessageCommand
}

type Queries struct {
	CheckSendAbility        *gwquery.CheckSendAbilityQuery
	CheckVerificationStatus *gwquery.CheckVerificationStatusQuery
}

type Facade struct {
	client   CommandQueryClient
	commands Commands
	queries  Queries
}

func NewFacade(client CommandQueryClient) (*Facade, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway: command/query client is required")
	}
	return &Facade{
		client: client,
		commands: Commands{
			SendVerificationMessage:   gwcommand.NewSendVerificationMessageCommand(client),
			RevokeVerificationMessage: gwcommand.NewRevokeVerificationMessageCommand(client),
		},
		queries: Queries{
			CheckSendAbility:        gwquery.NewCheckSendAbilityQuery(client),
			CheckVerificationStatus: gwquery.NewCheckVerificationStatusQuery(client),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Client() CommandQueryClient {
	if f == nil {
		return nil
	}
	return f.client
}

// Register subscribes every handler with the go-command dispatcher and adds
// them to the adapter's registry. The caller owns the returned subscriptions.
func (f *Facade) Register(
	adapter *gocommand.RegistryAdapter,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("gateway: facade is not configured")
	}
	return gocommand.RegisterGateway(adapter, gocommand.Handlers{
		SendVerificationMessage:   f.commands.SendVerificationMessage,
		RevokeVerificationMessage: f.commands.RevokeVerificationMessage,
		CheckSendAbility:          f.queries.CheckSendAbility,
		CheckVerificationStatus:   f.queries.CheckVerificationStatus,
	}, runnerOpts...)
}
