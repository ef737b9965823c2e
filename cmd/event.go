package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-administration/internal/core/events"
	"github.com/frahmantamala/hr-administration/pkg/logger"
)

var accountEventTypes = []string{
	events.EventTypeAccountCreated,
	events.EventTypeAccountUpdated,
	events.EventTypeAccountDeleted,
}

// registerAccountSubscribers attaches the handlers that react to committed account mutations.
func registerAccountSubscribers(bus *events.EventBus, lg *slog.Logger) {
	for _, eventType := range accountEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			ae, ok := event.(*events.AccountEvent)
			if !ok {
				return fmt.Errorf("unexpected event payload %T", event)
			}
			lg.Info("account event",
				"event_id", ae.EventID(),
				"event_type", ae.EventType(),
				"account_id", ae.AccountID,
				"username", ae.Username,
				"action", ae.Action)
			return nil
		})
	}
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the in-process event bus used for account notifications`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test account event",
	Long:      `Publish a synthetic account event through the subscribers the server registers`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: accountEventTypes,
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logger.LoggerWrapper()
		bus := events.NewEventBus(lg)
		registerAccountSubscribers(bus, lg)

		event := events.NewAccountEvent(args[0], eventAccountID, eventUsername, "test")
		lg.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())
		return bus.PublishSync(cmd.Context(), event)
	},
}

var (
	eventAccountID int64
	eventUsername  string
)

func init() {
	publishEventCmd.Flags().Int64Var(&eventAccountID, "account-id", 0, "account id carried by the event")
	publishEventCmd.Flags().StringVar(&eventUsername, "username", "cli", "username carried by the event")

	eventCmd.AddCommand(publishEventCmd)
}
