package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/cassiomorais/pixgateway/internal/controller"
	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/cassiomorais/pixgateway/internal/normalizer"
	"github.com/cassiomorais/pixgateway/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func amountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "amount [value]",
		Short: "Show what each amount policy sends to the provider",
		Long: `Converts a reais amount with every outbound amount policy.
Use it to compare a recorded provider charge against the candidates
before changing provider.amount_policy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POLICY\tAMOUNT\tUNIT PRICE")
			for _, policy := range normalizer.AmountPolicies() {
				converted, err := policy.Convert(value)
				if err != nil {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", policy.Name, "out of range", "-")
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\n", policy.Name, converted, converted)
			}
			return tw.Flush()
		},
	}
}

func parseCmd() *cobra.Command {
	var (
		status    int
		kind      string
		decoder   string
		requested string
		id        string
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Normalize a recorded provider response",
		Long: `Runs the inbound normalizer over a provider body read from a file
or stdin and prints the canonical result, or the error the gateway would
return for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, args)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			dec, err := normalizer.LookupAmountDecoder(decoder)
			if err != nil {
				return err
			}
			resp := pix.RawResponse{StatusCode: status, Body: body}
			in := normalizer.NewInbound(dec)

			var (
				result any
				format normalizer.Format
			)
			switch kind {
			case "payment":
				amount, err := decimal.NewFromString(requested)
				if err != nil {
					return fmt.Errorf("invalid --requested %q: %w", requested, err)
				}
				var r *pix.PaymentResult
				r, format, err = in.ParsePayment(resp, amount)
				if err == nil {
					result = controller.FromPaymentResult(r)
				} else {
					result = describeError(err)
				}
			case "status":
				var r *pix.StatusResult
				r, format, err = in.ParseStatus(resp, id)
				if err == nil {
					result = controller.FromStatusResult(r)
				} else {
					result = describeError(err)
				}
			default:
				return fmt.Errorf("--kind must be payment or status, got %q", kind)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "format: %s\n", format)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&status, "status", 200, "HTTP status the provider answered with")
	f.StringVar(&kind, "kind", "payment", "Response kind: payment or status")
	f.StringVar(&decoder, "decoder", "minor_units", "Amount decoder for payment replies")
	f.StringVar(&requested, "requested", "0", "Requested amount, used when the reply has none")
	f.StringVar(&id, "id", "", "Requested transaction id, used when the reply has none")

	return cmd
}

type parsedError struct {
	Outcome    string `json:"outcome"`
	HTTPStatus int    `json:"httpStatus"`
	Error      string `json:"error"`
	Hint       string `json:"hint,omitempty"`
	Details    string `json:"details,omitempty"`
}

func describeError(err error) parsedError {
	out := parsedError{Outcome: service.Outcome(err), HTTPStatus: 500, Error: err.Error()}
	var pe *domainErrors.ProviderError
	if errors.As(err, &pe) {
		out.HTTPStatus = pe.HTTPStatus()
		out.Error = pe.Message
		out.Hint = pe.Hint
		out.Details = pe.Detail
	}
	return out
}
