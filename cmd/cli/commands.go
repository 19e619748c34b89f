package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/auth"
)

func auctionsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auctions",
		Short: "Auction operations",
	}

	var status string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List auctions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if status != "" {
				q.Set("status", status)
			}
			q.Set("limit", fmt.Sprint(limit))
			q.Set("offset", fmt.Sprint(offset))
			return get(cmd, v, "/api/v1/auctions?"+q.Encode())
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "filter by status (open, closed, settled, cancelled)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	getCmd := &cobra.Command{
		Use:   "get AUCTION_ID",
		Short: "Show one auction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(cmd, v, "/api/v1/auctions/"+url.PathEscape(args[0]))
		},
	}

	cmd.AddCommand(listCmd, getCmd, createAuctionCmd(v),
		postCmd(v, "cancel AUCTION_ID", "Cancel an auction that has no bids", "/api/v1/admin/auctions/%s/cancel"),
		postCmd(v, "settle AUCTION_ID", "Settle an auction", "/api/v1/auctions/%s/settle"),
	)
	return cmd
}

type createAuctionBody struct {
	AssetName        string     `json:"asset_name"`
	AssetDescription string     `json:"asset_description,omitempty"`
	AssetType        string     `json:"asset_type"`
	TokenType        string     `json:"token_type,omitempty"`
	ReservePrice     string     `json:"reserve_price"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          time.Time  `json:"end_time"`
}

func createAuctionCmd(v *viper.Viper) *cobra.Command {
	var body createAuctionBody
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Seed a new open auction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if body.EndTime.IsZero() {
				if duration <= 0 {
					return fmt.Errorf("one of --end or --duration is required")
				}
				body.EndTime = time.Now().UTC().Add(duration)
			}
			return post(cmd, v, "/api/v1/admin/auctions", body)
		},
	}

	f := cmd.Flags()
	f.StringVar(&body.AssetName, "name", "", "asset name")
	f.StringVar(&body.AssetDescription, "description", "", "asset description")
	f.StringVar(&body.AssetType, "type", "rwa", "asset type (rwa, service, land, equity)")
	f.StringVar(&body.TokenType, "token", "", "settlement token (default COMM)")
	f.StringVar(&body.ReservePrice, "reserve", "0", "reserve price in whole units")
	f.TextVar(&body.EndTime, "end", time.Time{}, "bidding deadline (RFC 3339)")
	f.DurationVar(&duration, "duration", 0, "bidding window from now, used when --end is not set")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func balancesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances [ACCOUNT_ID]",
		Short: "Show balances of an account, or of the caller when no account is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return get(cmd, v, "/api/v1/me/balances")
			}
			return get(cmd, v, "/api/v1/accounts/"+url.PathEscape(args[0])+"/balances")
		},
	}

	adjustCmd := &cobra.Command{
		Use:   "adjust ACCOUNT_ID TOKEN DELTA",
		Short: "Mint (positive) or burn (negative) tokens on an account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := domain.ParseTokenType(args[1])
			if err != nil {
				return err
			}
			return post(cmd, v, "/api/v1/admin/balances/adjust", map[string]string{
				"account_id": args[0],
				"token_type": string(token),
				"delta":      args[2],
			})
		},
	}

	// Burns are negative deltas; stop flag parsing at the first positional
	// so "-40" is not read as a shorthand flag.
	adjustCmd.Flags().SetInterspersed(false)

	cmd.AddCommand(adjustCmd)
	return cmd
}

func reconcileCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconciliation operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Complete settlement credits that were left pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return post(cmd, v, "/api/v1/admin/reconcile", nil)
		},
	})
	return cmd
}

func tokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token operations",
	}

	var role, wallet, issuer string
	var ttl time.Duration
	issueCmd := &cobra.Command{
		Use:   "issue ACCOUNT_ID",
		Short: "Sign a bearer token with the shared secret (VAMCTL_JWT_SECRET)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := v.GetString("jwt_secret")
			if secret == "" {
				return fmt.Errorf("jwt secret is not set; export VAMCTL_JWT_SECRET or set jwt_secret in the config file")
			}

			token, err := auth.NewJWTManager(secret, issuer, ttl).Generate(domain.Identity{
				AccountID:     args[0],
				Role:          domain.Role(strings.ToLower(role)),
				WalletAddress: wallet,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	issueCmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "member or operator")
	issueCmd.Flags().StringVar(&wallet, "wallet", "", "wallet address claim")
	issueCmd.Flags().StringVar(&issuer, "issuer", "vamledger", "token issuer; must match the server's JWT_ISSUER")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	cmd.AddCommand(issueCmd)
	return cmd
}

// postCmd builds a single-argument command that POSTs to pathFmt.
func postCmd(v *viper.Viper, use, short, pathFmt string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return post(cmd, v, fmt.Sprintf(pathFmt, url.PathEscape(args[0])), nil)
		},
	}
}

func get(cmd *cobra.Command, v *viper.Viper, path string) error {
	data, err := clientFrom(v).do(cmd.Context(), http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), data)
}

func post(cmd *cobra.Command, v *viper.Viper, path string, body any) error {
	data, err := clientFrom(v).do(cmd.Context(), http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), data)
}
