package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xfollowers/pkg/auth"
	"xfollowers/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter API credentials",
	Long: `Manage stored Twitter API credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store Twitter API credentials securely",
	Long: `Store Twitter API credentials securely in the system keychain or an
encrypted file.

You will be prompted for:
  - A label for this credential set (if not provided)
  - OAuth 2.0 Client ID
  - OAuth 2.0 Client Secret
  - App-only bearer token (optional, press Enter to skip)

To get these values:
1. Open https://developer.twitter.com/en/portal/dashboard
2. Select your project and app
3. Go to "Keys and tokens"
4. Copy the OAuth 2.0 Client ID and Client Secret`,
	Example: `  # Interactive login
  xfollowers auth login

  # Login with a label
  xfollowers auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [label]",
	Short: "Remove stored credentials",
	Long: `Remove stored Twitter API credentials.

If no label is provided, you will be shown a list of stored credential
sets to choose from.`,
	Example: `  # Interactive logout
  xfollowers auth logout

  # Remove a specific set
  xfollowers auth logout work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored credential sets",
	Long:  `List all stored credential sets with secrets masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var label string
	if len(args) > 0 {
		label = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if label == "" {
		label = promptLine(reader, "Label for this credential set (e.g. default): ")
		if label == "" {
			label = "default"
		}
	}

	// Check if the label already exists
	if existing, _ := manager.Retrieve(label); existing != nil {
		fmt.Printf("\nCredential set '%s' already exists. Update it? (y/N): ", label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your API secrets (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("OAuth 2.0 Client ID: ")
	clientID, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read client ID", err.Error())
		os.Exit(1)
	}

	fmt.Print("OAuth 2.0 Client Secret: ")
	clientSecret, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read client secret", err.Error())
		os.Exit(1)
	}

	fmt.Print("Bearer token (optional, Enter to skip): ")
	bearerToken, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read bearer token", err.Error())
		os.Exit(1)
	}

	if bearerToken == "" && (clientID == "" || clientSecret == "") {
		ui.PrintError("Incomplete credentials",
			"provide a bearer token, or both a client ID and a client secret")
		os.Exit(1)
	}

	creds := &auth.Credentials{
		Label:        label,
		BearerToken:  bearerToken,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		LastModified: time.Now(),
	}

	// Show what we're about to store, with secrets masked
	sanitized := auth.Sanitize(creds)
	fmt.Println("\nSummary:")
	fmt.Printf("   Label: %s\n", sanitized.Label)
	if sanitized.ClientID != "" {
		fmt.Printf("   Client ID: %s\n", sanitized.ClientID)
	}
	if sanitized.ClientSecret != "" {
		fmt.Printf("   Client Secret: %s\n", sanitized.ClientSecret)
	}
	if sanitized.BearerToken != "" {
		fmt.Printf("   Bearer Token: %s\n", sanitized.BearerToken)
	}

	fmt.Println("\nStoring credentials securely...")
	if err := manager.Store(creds); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Credentials stored: " + label)

	fmt.Println("\nYour credentials are stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("   - System keychain (primary)")
	}
	fmt.Println("   - Encrypted file (backup)")

	fmt.Println("\nNext steps:")
	fmt.Println("   Fetch and rank followers of any account:")
	fmt.Println("   $ xfollowers fetch <username>")
	fmt.Println("\n   Use this credential set explicitly:")
	fmt.Printf("   $ xfollowers fetch <username> --account %s\n", label)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		label := args[0]
		if err := manager.Delete(label); err != nil {
			ui.PrintError("Failed to remove credentials", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Credentials removed: " + label)
		return
	}

	sets, err := manager.List()
	if err != nil || len(sets) == 0 {
		ui.PrintError("No stored credential sets found", "")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(sets) == 1 {
		set := sets[0]
		fmt.Printf("Remove credential set '%s'? (y/N): ", set.Label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(set.Label); err != nil {
			ui.PrintError("Failed to remove credentials", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Credentials removed: " + set.Label)
		return
	}

	fmt.Println("Select credential set to remove:")
	for i, set := range sets {
		fmt.Printf("  %d. %s\n", i+1, set.Label)
	}
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	if choice < 1 || choice > len(sets) {
		return
	}

	set := sets[choice-1]
	if err := manager.Delete(set.Label); err != nil {
		ui.PrintError("Failed to remove credentials", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Credentials removed: " + set.Label)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	sets, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list credentials", err.Error())
		os.Exit(1)
	}

	if len(sets) == 0 {
		ui.PrintInfo("No stored credential sets", "Use 'xfollowers auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Credential Sets")
	fmt.Println()

	for i, set := range sets {
		sanitized := auth.Sanitize(set)
		fmt.Printf("%d. Label: %s\n", i+1, sanitized.Label)
		if sanitized.ClientID != "" {
			fmt.Printf("   Client ID: %s\n", sanitized.ClientID)
		}
		if sanitized.ClientSecret != "" {
			fmt.Printf("   Client Secret: %s\n", sanitized.ClientSecret)
		}
		if sanitized.BearerToken != "" {
			fmt.Printf("   Bearer Token: %s\n", sanitized.BearerToken)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readSecret reads a secret from stdin without echoing
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
