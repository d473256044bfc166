package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/finance"
)

func (cli *CLI) newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Show totals, savings rate and available balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.withSession(cmd, func(ctx context.Context, s *Session, user string) error {
				snap, err := s.Finance.Snapshot(ctx, user)
				if err != nil {
					return err
				}
				return cli.reporter.Snapshot(user, snap)
			})
		},
	}
}

func (cli *CLI) newTipsCmd() *cobra.Command {
	var (
		category   string
		actionable bool
	)
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "List financial tips, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := finance.TipQuery{
				Category:       finance.Category(strings.ToLower(category)),
				ActionableOnly: actionable,
			}
			return cli.withSession(cmd, func(ctx context.Context, s *Session, user string) error {
				tips, err := s.Finance.Tips(ctx, user, q)
				if err != nil {
					return err
				}
				return cli.reporter.Tips(tips)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show tips of this category (budgeting, saving, investing, taxes, emergency, goals, all)")
	cmd.Flags().BoolVar(&actionable, "actionable", false, "Only show actionable tips")
	return cmd
}

func (cli *CLI) newGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "List savings goals and their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.withSession(cmd, func(ctx context.Context, s *Session, user string) error {
				goals, err := s.Savings.ListGoals(ctx, user)
				if err != nil {
					return err
				}
				return cli.reporter.Goals(goals)
			})
		},
	}
}

func (cli *CLI) newValidateCmd() *cobra.Command {
	var amount string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether an amount can be moved into savings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseFlagAmount(amount)
			if err != nil {
				return err
			}
			return cli.withSession(cmd, func(ctx context.Context, s *Session, user string) error {
				res, err := s.Savings.Validate(ctx, user, d)
				if err != nil {
					return err
				}
				return cli.reporter.Validation(d, res)
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to check")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (cli *CLI) newContributeCmd() *cobra.Command {
	var goalID, amount string
	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Move money from the available balance into a savings goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseFlagAmount(amount)
			if err != nil {
				return err
			}
			return cli.withSession(cmd, func(ctx context.Context, s *Session, user string) error {
				res, err := s.Savings.Contribute(ctx, user, goalID, d)
				var rejection *finance.RejectionError
				if errors.As(err, &rejection) {
					return fmt.Errorf("contribution rejected: %s", rejection.Reason)
				}
				if err != nil {
					return err
				}
				return cli.reporter.Contribution(res)
			})
		},
	}
	cmd.Flags().StringVar(&goalID, "goal", "", "ID of the savings goal")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to contribute")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (cli *CLI) newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cli.profile()
			if err != nil {
				return err
			}
			if p.JWTSecret == "" {
				return errors.New("jwt_secret is not set in the profile")
			}
			token, err := auth.NewTokens(p.JWTSecret, p.JWTIssuer, p.JWTTTL).Issue(p.User)
			if err != nil {
				return err
			}
			return cli.reporter.Token(token)
		},
	}
	return cmd
}

// parseFlagAmount accepts "1234.56" and "1.234,56". Zero and negative values
// pass through so the validator can report them.
func parseFlagAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
