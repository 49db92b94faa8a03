package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xfollowers/pkg/auth"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/twitter"
	"xfollowers/pkg/ui"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <username>",
	Short: "Look up a single account's public metrics",
	Long: `Look up a Twitter/X account and print its public metrics.

Unlike 'fetch', this read-only lookup works with an app-only bearer
token (TWITTER_BEARER_TOKEN); no OAuth authorization round trip is
needed. An OAuth client pair also works.`,
	Example: `  xfollowers lookup jack`,
	Args:    cobra.ExactArgs(1),
	Run:     runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	username := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")

	cfg := loadConfig()
	creds := resolveCredentials(cfg)
	if err := creds.Validate(auth.OpRead); err != nil {
		logger.WithError(err).Error("credential validation failed")
		ui.PrintError("Missing credentials", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	// Prefer the static bearer token; fall back to an OAuth round trip
	var session *auth.Session
	if creds.BearerToken != "" {
		session = auth.NewBearerSession(creds.BearerToken)
	} else {
		flow := auth.NewPKCEFlow(cfg.Twitter.ClientID, cfg.Twitter.ClientSecret,
			cfg.Twitter.RedirectURL, consolePrompt(bufio.NewReader(os.Stdin)), logger.GetLogger())
		var err error
		session, err = flow.Authorize(ctx)
		if err != nil {
			ui.PrintError("Authorization failed", err.Error())
			os.Exit(1)
		}
	}

	client := twitter.NewClient(session.AuthorizationHeader(), cfg.Twitter.RequestTimeout, logger.GetLogger())

	user, err := client.LookupUser(ctx, username)
	if err != nil {
		logger.WithError(err).WithField("username", username).Error("lookup failed")
		ui.PrintError("Lookup failed", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Username", "@"+user.Username)
	ui.PrintInfo("User ID", user.ID)
	if user.Name != "" {
		ui.PrintInfo("Name", user.Name)
	}
	if user.PublicMetrics != nil {
		ui.PrintInfo("Followers", humanize.Comma(int64(user.PublicMetrics.FollowersCount)))
		ui.PrintInfo("Following", humanize.Comma(int64(user.PublicMetrics.FollowingCount)))
		ui.PrintInfo("Tweets", humanize.Comma(int64(user.PublicMetrics.TweetCount)))
	}
}
