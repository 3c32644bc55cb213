package app

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daylight-community/daylight-go/internal/models"
	"github.com/daylight-community/daylight-go/internal/prayerwall"
)

func newWallCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wall",
		Short: "Browse and act on the community prayer wall",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newWallListCommand(configPath))
	cmd.AddCommand(newWallPrayCommand(configPath))
	cmd.AddCommand(newWallEncourageCommand(configPath))
	cmd.AddCommand(newWallAnsweredCommand(configPath))
	cmd.AddCommand(newWallSupportersCommand(configPath))
	cmd.AddCommand(newWallStatsCommand(configPath))
	return cmd
}

func newWallListCommand(configPath *string) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prayer requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if _, err := deps.wall.Load(cmd.Context()); err != nil {
				return err
			}

			requests := deps.wall.SortedBy(prayerwall.SortOption(sortBy))
			if len(requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The prayer wall is empty.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAUTHOR\tSTATUS\tPRAYERS\tREQUEST")
			for _, req := range requests {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					req.ID,
					prayerwall.DisplayName(req),
					requestStatus(req),
					req.PrayerCount,
					req.ShortDescription,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(prayerwall.SortNewest), "Sort order: newest, most_prayed, or answered")
	return cmd
}

func newWallPrayCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pray <request-id>",
		Short: "Toggle your participation on a prayer request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if _, err := deps.wall.Load(cmd.Context()); err != nil {
				return err
			}

			count, err := deps.wall.TogglePrayer(cmd.Context(), args[0])
			if err != nil {
				return wallFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d people are praying for this request.\n", count)
			return nil
		},
	}
}

func newWallEncourageCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "encourage <request-id> <message...>",
		Short: "Send a short encouragement to a prayer request",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if _, err := deps.wall.Load(cmd.Context()); err != nil {
				return err
			}

			message := strings.Join(args[1:], " ")
			created, err := deps.wall.SubmitEncouragement(cmd.Context(), args[0], message)
			if err != nil {
				return wallFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Encouragement sent: %q\n", created.Message)
			return nil
		},
	}
}

func newWallAnsweredCommand(configPath *string) *cobra.Command {
	var (
		note      string
		scripture string
	)

	cmd := &cobra.Command{
		Use:   "answered <request-id>",
		Short: "Mark one of your prayer requests as answered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if _, err := deps.wall.Load(cmd.Context()); err != nil {
				return err
			}

			updated, err := deps.wall.MarkAnswered(cmd.Context(), args[0], note, scripture)
			if err != nil {
				return wallFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Praise God! Request %s is marked answered.\n", updated.ID)
			if updated.AnsweredNote != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: %s\n", updated.AnsweredNote)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "How this prayer was answered")
	cmd.Flags().StringVar(&scripture, "scripture", "", "A scripture reference to attach")
	return cmd
}

func newWallSupportersCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "supporters <request-id>",
		Short: "List the people praying for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}

			supporters, err := deps.client.PrayedUsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(supporters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No one has prayed for this request yet.")
				return nil
			}
			for _, profile := range supporters {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (@%s)\n", profile.Name(), profile.Username)
			}
			return nil
		},
	}
}

func newWallStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show prayer wall and community statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if _, err := deps.wall.Load(cmd.Context()); err != nil {
				return err
			}

			stats := deps.wall.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Wall: %d requests (%d active, %d answered)\n",
				stats.Total, stats.Active, stats.Answered)

			community, err := deps.client.CommunityStats(cmd.Context())
			if err != nil {
				deps.logger.Warn("community stats unavailable", "error", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Community: %d members, %d prayer requests, %d answered, %d encouragements\n",
				community.Members, community.PrayerRequests, community.AnsweredPrayers, community.Encouragements)
			return nil
		},
	}
}

func requestStatus(req models.PrayerRequest) string {
	if req.Answered() {
		return "answered"
	}
	return "active"
}

// wallFailure rewrites the wall's sentinel conditions into the notices a user
// should see; everything else passes through untouched.
func wallFailure(err error) error {
	switch {
	case errors.Is(err, prayerwall.ErrSignInRequired):
		return errors.New("please sign in first with `daylight login`")
	case errors.Is(err, prayerwall.ErrNotFound):
		return errors.New("that prayer request was not found on the wall")
	case errors.Is(err, prayerwall.ErrTogglePending):
		return errors.New("that action is already in progress, give it a moment")
	default:
		return err
	}
}
