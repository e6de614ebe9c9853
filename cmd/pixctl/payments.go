package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cassiomorais/pixgateway/internal/bootstrap"
	"github.com/cassiomorais/pixgateway/internal/controller"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// loadApp builds the gateway from the environment. Logs go to stderr so
// stdout carries only the command result.
func loadApp(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if sandbox, _ := cmd.Flags().GetBool("sandbox"); sandbox {
		cfg.Provider.Mode = config.ProviderModeSandbox
	}
	return bootstrap.NewFromConfig(cfg, "pixctl", "pixctl", cmd.ErrOrStderr())
}

func createCmd() *cobra.Command {
	var (
		req      pix.PaymentRequest
		amount   string
		document pix.Document
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a PIX charge through the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			req.Amount = value
			req.Customer.Document = document

			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			result, err := app.Service.CreatePayment(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), controller.FromPaymentResult(result))
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Customer.Name, "name", "", "Customer name")
	f.StringVar(&req.Customer.Email, "email", "", "Customer email")
	f.StringVar(&req.Customer.Phone, "phone", "", "Customer phone")
	f.StringVar(&document.Number, "document", "", "CPF or CNPJ number")
	f.StringVar(&document.Type, "document-type", pix.DefaultDocumentType, "Document type")
	f.StringVar(&amount, "amount", "", "Amount in reais, e.g. 30.00")
	f.IntVar(&req.ExpiresInDays, "expires-in-days", pix.DefaultExpiresInDays, "Days until the charge expires")
	f.StringVar(&req.ProductName, "product-name", "", "Item title (generated when empty)")
	f.StringVar(&req.ExternalRef, "external-ref", "", "Merchant reference (generated when empty)")
	f.Bool("sandbox", false, "Use the in-process sandbox provider")
	for _, name := range []string{"name", "email", "phone", "document", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [transaction-id]",
		Short: "Fetch the provider status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			result, err := app.Service.GetPaymentStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), controller.FromStatusResult(result))
		},
	}

	cmd.Flags().Bool("sandbox", false, "Use the in-process sandbox provider")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readBody(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
