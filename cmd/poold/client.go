package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"stakePool/internal/client"
	"stakePool/internal/config"
	"stakePool/internal/ledger"
	"stakePool/internal/model"
)

func clientCommands() []*cobra.Command {
	queries := []*cobra.Command{
		{
			Use:   "member <address>",
			Short: "Show a member account",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(func(ctx context.Context, c *client.Client, _ *cobra.Command, args []string) (interface{}, error) {
				return c.GetMember(ctx, args[0])
			}),
		},
		{
			Use:   "members",
			Short: "List members with a non-zero account",
			RunE: withClient(func(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) (interface{}, error) {
				return c.GetMembers(ctx)
			}),
		},
		{
			Use:   "params",
			Short: "Show pool parameters",
			RunE: withClient(func(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) (interface{}, error) {
				return c.GetParams(ctx)
			}),
		},
		{
			Use:   "status",
			Short: "Show pool totals",
			RunE: withClient(func(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) (interface{}, error) {
				return c.GetStatus(ctx)
			}),
		},
	}

	mutations := []struct {
		use, short string
		amount     bool
		members    bool
		overhead   bool
		call       submitFunc
	}{
		{"deposit", "Deposit TON into the pool", false, false, false, (*client.Client).Deposit},
		{"withdraw", "Withdraw TON from the pool (amount 0 withdraws everything)", true, false, true, (*client.Client).Withdraw},
		{"accept-deposit", "Commit pending deposits of members", false, true, false, (*client.Client).AcceptDeposit},
		{"accept-withdraw", "Release pending withdrawals of members", false, true, false, (*client.Client).AcceptWithdraw},
		{"record-sent", "Record stake forwarded to the validator", true, false, false, (*client.Client).RecordSent},
		{"record-returned", "Record stake returned from the validator", true, false, false, (*client.Client).RecordReturned},
	}

	cmds := queries
	for _, m := range mutations {
		m := m
		cmd := &cobra.Command{
			Use:   m.use,
			Short: m.short,
			RunE: withClient(func(ctx context.Context, c *client.Client, cmd *cobra.Command, _ []string) (interface{}, error) {
				req, err := requestFromFlags(cmd.Flags())
				if err != nil {
					return nil, err
				}
				if m.overhead && !cmd.Flags().Changed("value") {
					params, err := c.GetParams(ctx)
					if err != nil {
						return nil, err
					}
					if err := attachWithdrawOverhead(&req, params); err != nil {
						return nil, err
					}
				}
				return m.call(c, ctx, req)
			}),
		}
		valueUsage := "attached value in TON"
		if m.overhead {
			valueUsage = "attached value in TON (default: the pool's withdraw fee plus receipt price)"
		}
		cmd.Flags().String("from", "", "sender address (<workchain>:<hex>)")
		cmd.Flags().String("value", "0", valueUsage)
		if m.amount {
			cmd.Flags().String("amount", "0", "amount in TON")
		}
		if m.members {
			cmd.Flags().StringSlice("members", nil, "member addresses (comma-separated)")
		}
		cmds = append(cmds, cmd)
	}

	updateCmd := &cobra.Command{
		Use:   "update-params",
		Short: "Change pool parameters (owner only); unset flags keep their current value",
		RunE: withClient(func(ctx context.Context, c *client.Client, cmd *cobra.Command, _ []string) (interface{}, error) {
			req, err := requestFromFlags(cmd.Flags())
			if err != nil {
				return nil, err
			}
			params, err := c.GetParams(ctx)
			if err != nil {
				return nil, err
			}
			if err := applyParamFlags(cmd.Flags(), &params); err != nil {
				return nil, err
			}
			req.Params = &params
			return c.UpdateParams(ctx, req)
		}),
	}
	updateCmd.Flags().String("from", "", "owner address (<workchain>:<hex>)")
	updateCmd.Flags().String("value", "0", "attached value in TON")
	addParamFlags(updateCmd.Flags())
	cmds = append(cmds, updateCmd)

	for _, cmd := range cmds {
		cmd.Flags().String("url", "http://127.0.0.1:8645", "pool RPC endpoint")
		cmd.Flags().Duration("timeout", 0, "request timeout, 0 uses the configured default")
	}
	return cmds
}

type submitFunc func(*client.Client, context.Context, model.Request) (*model.Receipt, error)

type clientFunc func(ctx context.Context, c *client.Client, cmd *cobra.Command, args []string) (interface{}, error)

func withClient(fn clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadClient(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		c, err := client.Dial(ctx, cfg.URL)
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.URL, err)
		}
		defer c.Close()

		out, err := fn(ctx, c, cmd, args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func requestFromFlags(fs *pflag.FlagSet) (model.Request, error) {
	from, _ := fs.GetString("from")
	if from == "" {
		return model.Request{}, fmt.Errorf("--from is required")
	}
	req := model.Request{From: from}

	var err error
	if req.Value, err = nanoFlag(fs, "value"); err != nil {
		return model.Request{}, err
	}
	if fs.Lookup("amount") != nil {
		if req.Amount, err = nanoFlag(fs, "amount"); err != nil {
			return model.Request{}, err
		}
	}
	if fs.Lookup("members") != nil {
		req.Members, _ = fs.GetStringSlice("members")
		if len(req.Members) == 0 {
			return model.Request{}, fmt.Errorf("--members is required")
		}
	}
	return req, nil
}

// attachWithdrawOverhead sets the attached value to what the pool charges for a withdraw.
func attachWithdrawOverhead(req *model.Request, params model.ParamsView) error {
	p, err := params.ToLedger()
	if err != nil {
		return fmt.Errorf("pool params: %w", err)
	}
	req.Value = ledger.FormatNano(p.WithdrawOverhead())
	return nil
}

// applyParamFlags overrides params with every pool flag set on the command line.
func applyParamFlags(fs *pflag.FlagSet, params *model.ParamsView) error {
	var err error
	if fs.Changed("enabled") {
		params.Enabled, _ = fs.GetBool("enabled")
	}
	if fs.Changed("updates-enabled") {
		params.UpdatesEnabled, _ = fs.GetBool("updates-enabled")
	}
	if fs.Changed("pool-fee-bps") {
		params.PoolFeeBps, _ = fs.GetUint64("pool-fee-bps")
	}
	coins := map[string]*string{
		"min-stake":     &params.MinStake,
		"deposit-fee":   &params.DepositFee,
		"withdraw-fee":  &params.WithdrawFee,
		"receipt-price": &params.ReceiptPrice,
	}
	for name, field := range coins {
		if !fs.Changed(name) {
			continue
		}
		if *field, err = nanoFlag(fs, name); err != nil {
			return err
		}
	}
	return nil
}

// nanoFlag reads a TON flag and returns it as a nano-unit string.
func nanoFlag(fs *pflag.FlagSet, name string) (string, error) {
	raw, _ := fs.GetString(name)
	v, err := model.ParseCoins(raw)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", name, err)
	}
	return ledger.FormatNano(v), nil
}
