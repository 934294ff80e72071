package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/poller"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var once bool
	var approvedOnly bool
	var language string

	cmd := &cobra.Command{
		Use:   "listen <event-code>",
		Short: "Follow an event's question queue and live transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.apiClient()
			if err != nil {
				return err
			}
			pc := ctx.pollerConfig()
			p := poller.New(api, poller.Intervals{
				Questions: pc.QuestionInterval,
				Session:   pc.SessionInterval,
				Event:     pc.EventInterval,
			}, ctx.logger())
			if approvedOnly {
				p.WithStatuses(models.QuestionApproved)
			}
			e, err := p.Join(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("join %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()

			if once {
				var filter []models.QuestionStatus
				if approvedOnly {
					filter = []models.QuestionStatus{models.QuestionApproved}
				}
				list, err := api.ListQuestions(cmd.Context(), e.ID, filter...)
				if err != nil {
					return err
				}
				latest, err := api.LatestSession(cmd.Context(), e.ID)
				if err != nil {
					return err
				}
				printView(out, poller.View{Event: e, Questions: list, Latest: latest}, language, time.Now())
				return nil
			}

			fmt.Fprintf(out, "Listening to %s (%s). Ctrl-C to stop.\n", e.Title, e.Code)
			err = p.Run(cmd.Context(), func(u poller.Update) {
				printView(out, u.View, language, time.Now())
			})
			if errors.Is(err, poller.ErrEventGone) {
				fmt.Fprintln(out, "The event has ended and was removed.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Print the current state and exit")
	cmd.Flags().BoolVar(&approvedOnly, "approved", false, "Show approved questions only")
	cmd.Flags().StringVarP(&language, "language", "l", "en", "Transcript language: original, en or pl")
	return cmd
}

func printView(w io.Writer, v poller.View, language string, now time.Time) {
	if v.Event != nil {
		fmt.Fprintf(w, "\n%s [%s] %s\n", v.Event.Title, v.Event.Code, v.Event.Status)
	}
	fmt.Fprintln(w, renderSession(v.Latest, language, now))
	fmt.Fprintln(w, renderQueue(v.Questions, now))
}
