package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	redisRepo "github.com/iho/orderledger/internal/adapter/repository/redis"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/auth"
	"github.com/iho/orderledger/internal/infrastructure/config"
	"github.com/iho/orderledger/internal/infrastructure/logger"
	"github.com/iho/orderledger/internal/infrastructure/postgres"
	"github.com/iho/orderledger/internal/infrastructure/redis"
)

var (
	baseURL string
	timeout time.Duration
	token   string
	asUser  string
	asRole  string
)

// errCheckFailed marks a command that ran but reported a failed check.
var errCheckFailed = errors.New("check failed")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orderledger-cli",
		Short:         "OrderLedger CLI tool",
		Long:          `A command line interface for operating the order and wallet ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the OrderLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ORDERLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&asUser, "as-user", "", "Caller user ID when the server runs without token auth")
	rootCmd.PersistentFlags().StringVar(&asRole, "as-role", "admin", "Caller role when the server runs without token auth")

	rootCmd.AddCommand(ledgerCmd(), ordersCmd(), dbCmd(), tokenCmd(), pricesCmd())
	return rootCmd
}

// Ledger commands

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that every reservation is backed by open orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.Context(), cmd.OutOrStdout())
		},
	})
	return cmd
}

func checkConsistency(ctx context.Context, out io.Writer) error {
	status, body, err := apiRequest(ctx, http.MethodGet, "/api/v1/ledger/consistency", nil)
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusConflict {
		return fmt.Errorf("consistency check failed (status %d): %s", status, truncate(string(body), 200))
	}

	var result struct {
		Consistent   bool              `json:"consistent"`
		WalletDrift  []json.RawMessage `json:"wallet_drift"`
		HoldingDrift []json.RawMessage `json:"holding_drift"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Consistent {
		fmt.Fprintln(out, "Consistency check PASSED")
		return nil
	}

	fmt.Fprintf(out, "Consistency check FAILED: %d wallet and %d holding reservations drifted\n",
		len(result.WalletDrift), len(result.HoldingDrift))
	printJSON(out, json.RawMessage(body))
	return errCheckFailed
}

// Order commands

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order operations",
	}
	cmd.AddCommand(ordersListCmd(), ordersPlaceCmd(), ordersCancelCmd())
	return cmd
}

func ordersListCmd() *cobra.Command {
	var status, userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			if userID != "" {
				q.Set("user_id", userID)
			}
			q.Set("limit", fmt.Sprint(limit))

			code, body, err := apiRequest(cmd.Context(), http.MethodGet, "/api/v1/orders?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			if code != http.StatusOK {
				return apiError(code, body)
			}

			var resp struct {
				Orders []struct {
					ID          string `json:"id"`
					UserID      string `json:"user_id"`
					AssetID     string `json:"asset_id"`
					Side        string `json:"side"`
					Type        string `json:"type"`
					Status      string `json:"status"`
					Quantity    string `json:"quantity"`
					FilledQty   string `json:"filled_quantity"`
					AvgPrice    string `json:"average_execution_price"`
					RejectCause string `json:"reject_reason"`
				} `json:"orders"`
				Total int64 `json:"total"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tASSET\tSIDE\tTYPE\tSTATUS\tQTY\tFILLED\tAVG PRICE\tREASON")
			for _, o := range resp.Orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					o.ID, o.UserID, o.AssetID, o.Side, o.Type, o.Status,
					o.Quantity, o.FilledQty, o.AvgPrice, truncate(o.RejectCause, 24))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d orders\n", len(resp.Orders), resp.Total)
			return err
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&userID, "user", "", "Filter by user (operators only)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum orders to list")
	return cmd
}

func ordersPlaceCmd() *cobra.Command {
	var req struct {
		AssetID     string  `json:"asset_id"`
		Side        string  `json:"side"`
		Type        string  `json:"type"`
		Quantity    string  `json:"quantity"`
		LimitPrice  *string `json:"limit_price,omitempty"`
		StopPrice   *string `json:"stop_price,omitempty"`
		TimeInForce string  `json:"time_in_force,omitempty"`
	}
	var limitPrice, stopPrice string

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limitPrice != "" {
				req.LimitPrice = &limitPrice
			}
			if stopPrice != "" {
				req.StopPrice = &stopPrice
			}

			code, body, err := apiRequest(cmd.Context(), http.MethodPost, "/api/v1/orders", req)
			if err != nil {
				return err
			}
			if code != http.StatusCreated {
				return apiError(code, body)
			}
			printJSON(cmd.OutOrStdout(), json.RawMessage(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.AssetID, "asset", "", "Asset symbol")
	cmd.Flags().StringVar(&req.Side, "side", "buy", "buy or sell")
	cmd.Flags().StringVar(&req.Type, "type", "market", "market, limit, stop or stop_limit")
	cmd.Flags().StringVar(&req.Quantity, "qty", "", "Quantity")
	cmd.Flags().StringVar(&limitPrice, "limit-price", "", "Limit price")
	cmd.Flags().StringVar(&stopPrice, "stop-price", "", "Stop price")
	cmd.Flags().StringVar(&req.TimeInForce, "tif", "", "day or gtc")
	_ = cmd.MarkFlagRequired("asset")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func ordersCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel a live order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, body, err := apiRequest(cmd.Context(), http.MethodPost, "/api/v1/orders/"+url.PathEscape(args[0])+"/cancel", nil)
			if err != nil {
				return err
			}
			if code != http.StatusOK {
				return apiError(code, body)
			}
			printJSON(cmd.OutOrStdout(), json.RawMessage(body))
			return nil
		},
	}
}

// Database commands

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database operations",
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
	)
	cmd.AddCommand(migrateCmd)
	return cmd
}

// Token commands

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token operations",
	}

	var userID, role string
	var restricted bool
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			signed, err := auth.NewJWTManager(secret, ttl).Generate(domain.Principal{
				UserID:     userID,
				Role:       domain.Role(role),
				Restricted: restricted,
			})
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "Subject user ID")
	issue.Flags().StringVar(&role, "role", string(domain.RoleClient), "admin, client or venue")
	issue.Flags().BoolVar(&restricted, "restricted", false, "Mark the account restricted")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = issue.MarkFlagRequired("user")

	cmd.AddCommand(issue)
	return cmd
}

// Price commands

func pricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Reference price operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set ASSET PRICE",
		Short: "Publish a reference price with the configured PRICE_TTL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(args[1])
			if err != nil || !price.IsPositive() {
				return fmt.Errorf("invalid price %q", args[1])
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := redis.NewClient(cmd.Context(), cfg.RedisURL, cfg.RedisConnectTimeout)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := redisRepo.NewPriceStore(client, nil).SetPrice(cmd.Context(), args[0], price, cfg.PriceTTL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (ttl %s)\n", args[0], price, cfg.PriceTTL)
			return nil
		},
	})
	return cmd
}

// Helpers

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}
	return cfg, logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"}), nil
}

func apiRequest(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if asUser != "" {
		req.Header.Set("X-User-ID", asUser)
		req.Header.Set("X-User-Role", asRole)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func apiError(status int, body []byte) error {
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		if resp.Message != "" {
			return fmt.Errorf("%s (status %d): %s", resp.Error, status, resp.Message)
		}
		return fmt.Errorf("%s (status %d)", resp.Error, status)
	}
	return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
