package main

import (
	"fmt"
	"log/slog"
	"os"
	_ "time/tzdata"

	"francoggm/vnpay-go-redis/internal/app/storage"
	"francoggm/vnpay-go-redis/internal/config"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vnpayctl",
		Short:         "Build, verify and query VNPay payments from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", ".", "Directory holding config.yaml and .env")

	cmd.AddCommand(linkCmd())
	cmd.AddCommand(verifyCmd())
	cmd.AddCommand(querydrCmd())

	return cmd
}

// newService builds an offline service. Correlation entries live in memory
// and die with the process.
func newService(cmd *cobra.Command) (*vnpay.Service, *config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	service := vnpay.NewService(cfg.VNPay.Options(), storage.NewMemoryCorrelationStore(), nil, logger)

	return service, cfg, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
