package main

import (
	"fmt"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [amount]",
		Short: "Print a signed payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			service, cfg, err := newService(cmd)
			if err != nil {
				return err
			}

			requestCode, _ := cmd.Flags().GetString("request-code")
			orderCode, _ := cmd.Flags().GetString("order-code")
			txType, _ := cmd.Flags().GetString("type")
			ip, _ := cmd.Flags().GetString("ip")
			baseURL, _ := cmd.Flags().GetString("base-url")
			vnpData, _ := cmd.Flags().GetStringToString("vnp")
			data, _ := cmd.Flags().GetStringToString("data")

			if baseURL == "" {
				baseURL = cfg.Server.PublicURL
			}

			link, err := service.CreatePaymentLink(cmd.Context(), txType, &models.PaymentRequest{
				RequestCode: requestCode,
				OrderCode:   orderCode,
				Amount:      amount,
				VNPData:     vnpData,
				Data:        data,
			}, "", models.ClientInfo{IP: ip, BaseURL: baseURL})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}

	cmd.Flags().StringP("request-code", "r", "", "Request code, generated when empty")
	cmd.Flags().StringP("order-code", "o", "", "Merchant order reference")
	cmd.Flags().StringP("type", "t", "", "Transaction type routed to processors")
	cmd.Flags().String("ip", "127.0.0.1", "Buyer IP address")
	cmd.Flags().String("base-url", "", "Scheme and host of the return URL (default server.public-url)")
	cmd.Flags().StringToString("vnp", nil, "Extra gateway fields without the vnp_ prefix, e.g. BankCode=NCB")
	cmd.Flags().StringToString("data", nil, "Merchant fields kept for the callbacks")

	return cmd
}
