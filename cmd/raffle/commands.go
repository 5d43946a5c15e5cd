package main

import (
	"fmt"
	"io"
	"time"

	"raffle/internal/amount"
	"raffle/internal/beacon"
	"raffle/internal/blockchain"
	"raffle/internal/config"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/raffle"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withProgram runs fn against a program over the configured storage and closes the storage afterwards.
func withProgram(cmd *cobra.Command, fn func(cfg *config.Config, p *program.Program) error) error {
	cfg := mustConfig(cmd)
	p, s, err := openProgram(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("closing storage failed", zap.Error(err))
		}
	}()
	return fn(cfg, p)
}

func identityArg(name, value string) (raffle.Identity, error) {
	id, err := blockchain.ParseIdentity(value)
	if err != nil {
		return raffle.Identity{}, fmt.Errorf("%s: %w", name, err)
	}
	return id, nil
}

func depositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Credit a wallet (development faucet)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := identityArg("account", args[0])
			if err != nil {
				return err
			}
			nanos, err := amount.Parse(args[1])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				balance, err := p.Deposit(cmd.Context(), account, nanos)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s balance %s\n", account.ToRaw(), amount.Format(balance))
				return nil
			})
		},
	}
}

func provisionCommand() *cobra.Command {
	var capacity uint32
	cmd := &cobra.Command{
		Use:   "provision <payer>",
		Short: "Allocate an entrants ledger for a future raffle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, err := identityArg("payer", args[0])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				ledger, err := p.ProvisionEntrants(cmd.Context(), payer, capacity)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ledger.ToRaw())
				return nil
			})
		},
	}
	cmd.Flags().Uint32Var(&capacity, "capacity", raffle.MaxCapacity, "maximum number of tickets")
	return cmd
}

func createCommand() *cobra.Command {
	var (
		duration   time.Duration
		endTime    int64
		price      string
		capacity   uint32
		feePercent uint8
	)
	cmd := &cobra.Command{
		Use:   "create <operator> <ledger>",
		Short: "Create a raffle over a provisioned ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			operator, err := identityArg("operator", args[0])
			if err != nil {
				return err
			}
			ledger, err := identityArg("ledger", args[1])
			if err != nil {
				return err
			}
			ticketPrice, err := amount.Parse(price)
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				end := endTime
				if end == 0 {
					end = p.Now().Add(duration).Unix()
				}
				r, err := p.CreateRaffle(cmd.Context(), operator, ledger, raffle.Params{
					EndTimestamp: end,
					TicketPrice:  ticketPrice,
					Capacity:     capacity,
					FeePercent:   feePercent,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), r.Address.ToRaw())
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 24*time.Hour, "time until ticket sales end")
	cmd.Flags().Int64Var(&endTime, "end", 0, "unix timestamp when ticket sales end, overrides --duration")
	cmd.Flags().StringVar(&price, "price", "", "ticket price in whole units, e.g. 0.1")
	cmd.Flags().Uint32Var(&capacity, "capacity", raffle.MaxCapacity, "maximum number of tickets")
	cmd.Flags().Uint8Var(&feePercent, "fee", 0, "operator fee percent")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func buyCommand() *cobra.Command {
	var quantity uint32
	cmd := &cobra.Command{
		Use:   "buy <raffle> <buyer>",
		Short: "Buy tickets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identityArg("raffle", args[0])
			if err != nil {
				return err
			}
			buyer, err := identityArg("buyer", args[1])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				purchase, err := p.BuyTickets(cmd.Context(), address, buyer, quantity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tickets %d..%d paid %s (fee %s)\n",
					purchase.FirstIndex, purchase.FirstIndex+purchase.Quantity-1,
					amount.Format(purchase.Net), amount.Format(purchase.Fee))
				return nil
			})
		},
	}
	cmd.Flags().Uint32VarP(&quantity, "quantity", "q", 1, "number of tickets")
	return cmd
}

func revealCommand() *cobra.Command {
	var randomness uint64
	cmd := &cobra.Command{
		Use:   "reveal <raffle> <operator>",
		Short: "Draw the winner of an ended raffle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identityArg("raffle", args[0])
			if err != nil {
				return err
			}
			caller, err := identityArg("operator", args[1])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(cfg *config.Config, p *program.Program) error {
				if !cmd.Flags().Changed("randomness") {
					source, err := beacon.Open(cfg.BeaconSource, cfg.TonapiToken, cfg.BeaconSeed)
					if err != nil {
						return err
					}
					var seed beacon.Seed
					if randomness, seed, err = beacon.Randomness(cmd.Context(), source, address); err != nil {
						return err
					}
					logger.Info("beacon seed", zap.String("source", source.Name()), zap.String("seed", seed.String()))
				}
				draw, err := p.RevealWinners(cmd.Context(), address, caller, randomness)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "winner %s (ticket %d of %d)\n", draw.Winner.ToRaw(), draw.Index, draw.Total)
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&randomness, "randomness", 0, "randomness value, fetched from the configured beacon when omitted")
	return cmd
}

func claimCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <raffle> <winner> <operator>",
		Short: "Pay the prize to the winner and the fee to the operator",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identityArg("raffle", args[0])
			if err != nil {
				return err
			}
			caller, err := identityArg("winner", args[1])
			if err != nil {
				return err
			}
			authority, err := identityArg("operator", args[2])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				settlement, err := p.ClaimPrize(cmd.Context(), address, caller, authority)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "prize %s fee %s\n", amount.Format(settlement.Prize), amount.Format(settlement.Fee))
				return nil
			})
		},
	}
}

func closeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close <raffle> <operator>",
		Short: "Destroy a settled raffle's ledger and reclaim its rent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identityArg("raffle", args[0])
			if err != nil {
				return err
			}
			caller, err := identityArg("operator", args[1])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				reclaimed, err := p.CloseEntrants(cmd.Context(), address, caller)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reclaimed %s\n", amount.Format(reclaimed))
				return nil
			})
		},
	}
}

func printSummary(w io.Writer, summary *program.Summary) {
	r := summary.Raffle
	fmt.Fprintf(w, "raffle    %s\n", r.Address.ToRaw())
	fmt.Fprintf(w, "operator  %s\n", r.Operator.ToRaw())
	fmt.Fprintf(w, "entrants  %s\n", r.Entrants.ToRaw())
	fmt.Fprintf(w, "ends      %s\n", time.Unix(r.EndTimestamp, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "price     %s\n", amount.Format(r.TicketPrice))
	fmt.Fprintf(w, "fee       %d%% (accrued %s)\n", r.FeePercent, amount.Format(r.AccumulatedFee))
	fmt.Fprintf(w, "balance   %s\n", amount.Format(summary.Balance))
	if summary.Closed {
		fmt.Fprintln(w, "tickets   closed")
	} else {
		fmt.Fprintf(w, "tickets   %d/%d\n", summary.Total, summary.Capacity)
	}
	fmt.Fprintf(w, "winner    %s\n", r.Winner)
	fmt.Fprintf(w, "claimed   %t\n", r.PrizeClaimed)
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <raffle>",
		Short: "Show a raffle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identityArg("raffle", args[0])
			if err != nil {
				return err
			}
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				summary, err := p.Summary(cmd.Context(), address)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all raffles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProgram(cmd, func(_ *config.Config, p *program.Program) error {
				summaries, err := p.Raffles(cmd.Context())
				if err != nil {
					return err
				}
				for i, summary := range summaries {
					if i > 0 {
						fmt.Fprintln(cmd.OutOrStdout())
					}
					printSummary(cmd.OutOrStdout(), summary)
				}
				return nil
			})
		},
	}
}
