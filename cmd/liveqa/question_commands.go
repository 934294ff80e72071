package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aura-webinar/liveqa/internal/questions"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var in questions.SubmitInput
	var email string

	cmd := &cobra.Command{
		Use:   "ask <event-code> <question>",
		Short: "Submit a question to an event",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.apiClient()
			if err != nil {
				return err
			}
			e, err := api.EventByCode(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("join %s: %w", args[0], err)
			}
			in.EventID = e.ID.String()
			in.QuestionText = strings.Join(args[1:], " ")
			if email != "" {
				in.ParticipantEmail = &email
			}
			q, err := api.SubmitQuestion(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question #%d submitted to %s (%s)\n", q.QueuePosition, e.Title, q.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.ParticipantName, "name", "n", "", "Your name")
	cmd.Flags().StringVar(&email, "email", "", "Your email (optional)")
	cmd.Flags().StringVar(&in.Language, "language", "en", "Question language")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newModerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "moderate <question-id> <approve|decline|answer|requeue|delete>",
		Short:     "Change a question's status or remove it",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"approve", "decline", "answer", "requeue", "delete"},
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.apiClient()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			verb := strings.ToLower(args[1])
			if verb == "delete" {
				if err := api.DeleteQuestion(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s deleted\n", id)
				return nil
			}
			q, err := api.Moderate(cmd.Context(), id, verb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question #%d is now %s\n", q.QueuePosition, q.Status)
			return nil
		},
	}
	return cmd
}
