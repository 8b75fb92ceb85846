package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookkeeper-cli",
		Short: "Bookkeeper CLI tool",
		Long:  `A command line interface for interacting with the Bookkeeper API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Bookkeeper API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(postCmd())
	rootCmd.AddCommand(voidCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var (
		code     string
		name     string
		accType  string
		currency string
		desc     string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodPost, "/api/v1/accounts", map[string]any{
				"code":        code,
				"name":        name,
				"type":        accType,
				"currency":    currency,
				"description": desc,
			})
		},
	}
	createCmd.Flags().StringVar(&code, "code", "", "Account code (required)")
	createCmd.Flags().StringVar(&name, "name", "", "Account name (required)")
	createCmd.Flags().StringVar(&accType, "type", "", "Account type: asset, liability, equity, revenue, expense (required)")
	createCmd.Flags().StringVar(&currency, "currency", "", "Account currency")
	createCmd.Flags().StringVar(&desc, "description", "", "Account description")
	createCmd.MarkFlagRequired("code")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("type")

	var byCode bool
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get an account by ID or code",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/accounts/" + url.PathEscape(args[0])
			if byCode {
				path += "?by=code"
			}
			doJSON(http.MethodGet, path, nil)
		},
	}
	getCmd.Flags().BoolVar(&byCode, "by-code", false, "Look up by account code instead of ID")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/accounts", nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd)

	return cmd
}

func postCmd() *cobra.Command {
	var (
		description string
		reference   string
		debits      []string
		credits     []string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced transaction",
		Long: `Post a transaction with one or more debit and credit lines.
Each line has the form account_id:amount[:currency], e.g.
  bookkeeper-cli post --debit cash:100:USD --credit revenue:100:USD`,
		Run: func(cmd *cobra.Command, args []string) {
			debitLines, err := parseLines(debits)
			if err != nil {
				fmt.Printf("invalid debit line: %v\n", err)
				os.Exit(1)
			}
			creditLines, err := parseLines(credits)
			if err != nil {
				fmt.Printf("invalid credit line: %v\n", err)
				os.Exit(1)
			}

			doJSON(http.MethodPost, "/api/v1/transactions", map[string]any{
				"description": description,
				"reference":   reference,
				"debits":      debitLines,
				"credits":     creditLines,
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")
	cmd.Flags().StringVar(&reference, "reference", "", "External reference")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "Debit line: account_id:amount[:currency]")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "Credit line: account_id:amount[:currency]")

	return cmd
}

func voidCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "void <transaction-id>",
		Short: "Void a posted transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodPost, "/api/v1/transactions/"+url.PathEscape(args[0])+"/void", map[string]any{
				"reason": reason,
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for voiding")

	return cmd
}

func balanceCmd() *cobra.Command {
	var currency, asOf string

	cmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Get an account balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if currency != "" {
				query.Set("currency", currency)
			}
			if asOf != "" {
				query.Set("as_of", asOf)
			}

			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}
			doJSON(http.MethodGet, path, nil)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Historical balance at an RFC 3339 timestamp")

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	cmd.AddCommand(consistencyCmd)

	return cmd
}

// parseLines parses account_id:amount[:currency] entry lines.
func parseLines(lines []string) ([]map[string]any, error) {
	result := make([]map[string]any, 0, len(lines))

	for _, line := range lines {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("%q: want account_id:amount[:currency]", line)
		}

		entry := map[string]any{
			"account_id": parts[0],
			"amount":     parts[1],
		}
		if len(parts) == 3 {
			entry["currency"] = parts[2]
		}

		result = append(result, entry)
	}

	return result, nil
}

// doJSON performs a request and pretty-prints the JSON response.
func doJSON(method, path string, payload map[string]any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}

	fmt.Println(pretty.String())
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && !consistent {
		fmt.Printf("Consistency check FAILED\nResponse: %s\n", string(body))
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	fmt.Printf("Accounts checked: %v\n", result["accounts_checked"])
}
