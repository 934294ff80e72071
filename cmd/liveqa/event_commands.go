package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aura-webinar/liveqa/internal/events"
)

func newCreateEventCommand(ctx *commandContext) *cobra.Command {
	var in events.CreateInput
	var maxParticipants int

	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Open a new event and print its join code",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if in.Code == "" {
				code, err := api.NewEventCode(cmd.Context())
				if err != nil {
					return fmt.Errorf("generate join code: %w", err)
				}
				in.Code = code
			}
			if cmd.Flags().Changed("max") {
				in.MaxParticipants = &maxParticipants
			}
			e, err := api.CreateEvent(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q\nJoin code: %s\nEvent ID:  %s\n", e.Title, e.Code, e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Code, "code", "", "Join code (generated when omitted)")
	cmd.Flags().StringVar(&in.Title, "title", "", "Event title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Event description")
	cmd.Flags().StringVar(&in.OrganizerName, "organizer", "", "Organizer name")
	cmd.Flags().StringVar(&in.OrganizerEmail, "email", "", "Organizer email")
	cmd.Flags().StringVar(&in.Language, "language", "en", "Event language")
	cmd.Flags().IntVar(&maxParticipants, "max", 100, "Maximum participants")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("organizer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
