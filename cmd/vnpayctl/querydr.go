package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func querydrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "querydr [request-code]",
		Short: "Ask the gateway for the status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cfg, err := newService(cmd)
			if err != nil {
				return err
			}

			orderCode, _ := cmd.Flags().GetString("order-code")
			date, _ := cmd.Flags().GetString("date")
			ip, _ := cmd.Flags().GetString("ip")

			if ip == "" {
				ip = cfg.VNPay.QueryIP
			}

			transactionDate, err := service.ParseTimestamp(date)
			if err != nil {
				return fmt.Errorf("invalid --date %q, expected yyyyMMddHHmmss: %w", date, err)
			}

			result, err := service.QueryDR(cmd.Context(), args[0], orderCode, transactionDate, ip)
			if err != nil {
				return err
			}

			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringP("order-code", "o", "", "Merchant order reference sent with the payment")
	cmd.Flags().StringP("date", "d", "", "Transaction date as yyyyMMddHHmmss in the gateway time zone")
	cmd.Flags().String("ip", "", "Caller IP address (default vnpay.query-ip)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
