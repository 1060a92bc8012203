package main

import (
	"net/url"
	"strings"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type verifyOutput struct {
	Outcome     string            `json:"outcome"`
	RequestCode string            `json:"requestCode"`
	OrderCode   string            `json:"orderCode"`
	Amount      decimal.Decimal   `json:"amount"`
	VNPData     map[string]string `json:"vnpData"`
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [callback-url-or-query]",
		Short: "Check the signature of a ReturnURL or IPN callback",
		Long: `Verify a callback exactly as the server does and print its outcome:
success, failed (valid signature, gateway reported a failure) or pending
(signature did not verify).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseCallbackQuery(args[0])
			if err != nil {
				return err
			}

			service, _, err := newService(cmd)
			if err != nil {
				return err
			}

			result, err := service.ProcessCallback(cmd.Context(), query)
			if err != nil {
				return err
			}

			response := result.Response
			return printJSON(cmd, verifyOutput{
				Outcome:     models.Outcome(response.Result),
				RequestCode: response.RequestCode,
				OrderCode:   response.OrderCode,
				Amount:      response.Amount,
				VNPData:     response.VNPData,
			})
		},
	}
}

// parseCallbackQuery accepts a full callback URL or just its query string.
func parseCallbackQuery(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)

	if _, query, ok := strings.Cut(raw, "?"); ok {
		raw = query
	}

	return url.ParseQuery(raw)
}
