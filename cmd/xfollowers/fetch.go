package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"xfollowers/pkg/auth"
	"xfollowers/pkg/config"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ranker"
	"xfollowers/pkg/ratelimit"
	"xfollowers/pkg/report"
	"xfollowers/pkg/retry"
	"xfollowers/pkg/twitter"
	"xfollowers/pkg/ui"
)

var (
	// Fetch command flags
	maxFollowers int
	outputFormat string
	outputDir    string
	pageSize     int
	maxAttempts  int
	accountLabel string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [username]",
	Short: "Fetch and rank the followers of an account",
	Long: `Fetch the followers of a Twitter/X account, rank them by their own
follower counts, and write timestamped reports.

This command requires an OAuth 2.0 client (user context):
  - Stored credentials (use 'xfollowers auth login' to store)
  - Environment variables TWITTER_CLIENT_ID and TWITTER_CLIENT_SECRET

On each run you will be asked to open an authorization URL, approve the
app, and paste the URL your browser is redirected to.

When the username is omitted, you will be prompted for the username,
the follower cap, and the report format.`,
	Example: `  # Fetch all followers, write both report formats
  xfollowers fetch jack

  # Fetch at most 500 followers, JSON only, into ./reports
  xfollowers fetch jack --max 500 --format json --output ./reports

  # Fully interactive
  xfollowers fetch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&maxFollowers, "max", "m", 0, "maximum followers to fetch (0 = all)")
	fetchCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "report format: txt, json or both")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for reports (default: current directory)")
	fetchCmd.Flags().IntVar(&pageSize, "page-size", 0, "followers per API page (max 1000)")
	fetchCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "maximum retry attempts per request")
	fetchCmd.Flags().StringVarP(&accountLabel, "account", "a", "", "use a specific stored credential set")
}

func runFetch(cmd *cobra.Command, args []string) {
	reader := bufio.NewReader(os.Stdin)

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	// Interactive prompts for anything not given on the command line
	if username == "" {
		username = promptLine(reader, "Twitter username (without @): ")
		if username == "" {
			ui.PrintError("Username is required", "")
			os.Exit(1)
		}

		if maxFollowers == 0 {
			input := promptLine(reader, "Max followers to fetch (Enter for all): ")
			if input != "" {
				n, err := strconv.Atoi(input)
				if err != nil || n < 0 {
					ui.PrintError("Invalid number", input)
					os.Exit(1)
				}
				maxFollowers = n
			}
		}

		if outputFormat == "" {
			input := promptLine(reader, "Report format txt/json/both (Enter for both): ")
			if input != "" {
				outputFormat = input
			}
		}
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	cfg := loadConfig()
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		ui.PrintError("Invalid report format", err.Error())
		os.Exit(1)
	}

	creds := resolveCredentials(cfg)
	if err := creds.Validate(auth.OpFollowers); err != nil {
		logger.WithError(err).Error("credential validation failed")
		ui.PrintError("Missing credentials", err.Error())
		fmt.Println("\nTo store credentials securely, run:")
		fmt.Println("  xfollowers auth login")
		fmt.Println("\nOr set environment variables:")
		fmt.Println("  export TWITTER_CLIENT_ID=your_client_id")
		fmt.Println("  export TWITTER_CLIENT_SECRET=your_client_secret")
		os.Exit(1)
	}

	ui.PrintInfo("Target account", "@"+username)

	ctx := context.Background()

	// Authorize: the followers endpoint needs a user-context token
	flow := auth.NewPKCEFlow(cfg.Twitter.ClientID, cfg.Twitter.ClientSecret,
		cfg.Twitter.RedirectURL, consolePrompt(reader), logger.GetLogger())
	session, err := flow.Authorize(ctx)
	if err != nil {
		logger.WithError(err).Error("authorization failed")
		ui.PrintError("Authorization failed", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Authorized")

	client := twitter.NewClient(session.AuthorizationHeader(), cfg.Twitter.RequestTimeout, logger.GetLogger())

	tracker := ui.NewFetchTracker(maxFollowers)
	fetcher := twitter.NewFetcher(client, twitter.FetcherConfig{
		PageSize:    cfg.Twitter.PageSize,
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.Retry.BaseDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Multiplier:   cfg.Retry.Multiplier,
			JitterFactor: cfg.Retry.JitterFactor,
		},
		Limiter: ratelimit.NewSlidingWindow(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window),
		Progress: func(fetched, pages int) {
			tracker.Update(fetched, pages)
			tracker.PrintProgress()
		},
	}, logger.GetLogger())

	records, err := fetcher.Fetch(ctx, username, maxFollowers)
	tracker.Finish()
	if err != nil {
		logger.WithError(err).WithField("username", username).Error("fetch failed")
		ui.PrintError("Fetch failed", err.Error())
		os.Exit(1)
	}

	ranked, err := ranker.Rank(records)
	if err != nil {
		ui.PrintError("Ranking failed", err.Error())
		os.Exit(1)
	}

	result := &report.Result{
		ScreenName:  username,
		GeneratedAt: time.Now(),
		Followers:   ranked,
	}

	if len(ranked) > 0 {
		fmt.Println()
		fmt.Print(report.TopTable(result, cfg.Output.TopDisplay))
	}

	writer := report.NewWriter(cfg.Output.Directory, logger.GetLogger())
	paths, err := writer.Write(result, format)
	if err != nil {
		logger.WithError(err).Error("report write failed")
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}

	fmt.Println()
	for _, p := range paths {
		ui.PrintInfo("Report written", p)
	}
	ui.PrintSuccess(fmt.Sprintf("Fetched and ranked %d followers of @%s", len(ranked), username))
}

// loadConfig builds the effective configuration from file, env and flags
func loadConfig() *config.Config {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if outputFormat != "" {
		flags["format"] = outputFormat
	}
	if pageSize > 0 {
		flags["page-size"] = pageSize
	}
	if maxAttempts > 0 {
		flags["max-attempts"] = maxAttempts
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}

	return cfg
}

// resolveCredentials merges stored credential sets into the configuration
// and returns the effective credentials
func resolveCredentials(cfg *config.Config) *auth.Credentials {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var stored *auth.Credentials
	if accountLabel != "" {
		stored, err = manager.Retrieve(accountLabel)
		if err != nil {
			ui.PrintError("Credential set not found", accountLabel)
			ui.PrintInfo("Stored sets", "Use 'xfollowers auth list' to see stored credentials")
			os.Exit(1)
		}
		logger.WithField("account", stored.Label).Info("using stored credentials")
	} else if cfg.Twitter.ClientID == "" || cfg.Twitter.ClientSecret == "" {
		// Nothing in env/config, fall back to the credential store
		if stored, err = manager.RetrieveDefault(); err != nil {
			stored = nil
		}
	}

	if stored != nil {
		if cfg.Twitter.BearerToken == "" {
			cfg.Twitter.BearerToken = stored.BearerToken
		}
		if cfg.Twitter.ClientID == "" {
			cfg.Twitter.ClientID = stored.ClientID
		}
		if cfg.Twitter.ClientSecret == "" {
			cfg.Twitter.ClientSecret = stored.ClientSecret
		}
	}

	return &auth.Credentials{
		BearerToken:  cfg.Twitter.BearerToken,
		ClientID:     cfg.Twitter.ClientID,
		ClientSecret: cfg.Twitter.ClientSecret,
	}
}

// consolePrompt shows the authorization URL and reads the pasted redirect
func consolePrompt(reader *bufio.Reader) auth.PromptFunc {
	return func(authURL string) (string, error) {
		fmt.Println("\nOpen this URL in your browser and authorize the app:")
		fmt.Println()
		ui.PrintHighlight("  " + authURL)
		fmt.Println()
		fmt.Print("Paste the full URL you were redirected to: ")

		input, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(input), nil
	}
}

// promptLine asks a question and returns the trimmed answer
func promptLine(reader *bufio.Reader, question string) string {
	fmt.Print(question)
	input, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(input)
}
