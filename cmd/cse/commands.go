package main

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbaliyan/cse"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errInvalidCard = errors.New("card data is invalid")

// cardFlags holds the card fields shared by validate and encrypt.
type cardFlags struct {
	number string
	year   string
	month  string
	cvc    string
	name   string
	brand  string
}

func (f *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.number, "number", "", "Card number; spaces and dashes are ignored")
	cmd.Flags().StringVar(&f.year, "year", "", "Expiry year (YY or YYYY)")
	cmd.Flags().StringVar(&f.month, "month", "", "Expiry month (1-12)")
	cmd.Flags().StringVar(&f.cvc, "cvc", "", "Card verification code")
	cmd.Flags().StringVar(&f.name, "name", "", "Cardholder name")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand (visa, mastercard, amex, maestro, bancontact); predicted when empty")
}

func (f *cardFlags) card() (cse.Card, error) {
	c := cse.Card{
		Number:     cse.NormalizeCardNumber(f.number),
		Year:       f.year,
		Month:      f.month,
		Cvc:        f.cvc,
		Cardholder: f.name,
	}
	if f.brand != "" {
		b, err := cse.ParseBrand(f.brand)
		if err != nil {
			return cse.Card{}, err
		}
		c.Brand = b
	}
	return c, nil
}

func predictCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "predict PREFIX...",
		Short: "Guess the brand of partially entered card numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type prediction struct {
				Prefix string    `json:"prefix"`
				Brand  cse.Brand `json:"brand"`
			}
			results := make([]prediction, 0, len(args))
			for _, arg := range args {
				prefix := cse.NormalizeCardNumber(arg)
				results = append(results, prediction{Prefix: prefix, Brand: cse.PredictBrand(prefix)})
			}

			if cfg.output == "json" {
				return printJSON(cmd.OutOrStdout(), results)
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Prefix, r.Brand)
			}
			return nil
		},
	}
}

func validateCmd(cfg *config) *cobra.Command {
	var flags cardFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check card fields against brand, Luhn and expiry rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := flags.card()
			if err != nil {
				return err
			}
			brand := card.ResolvedBrand()
			invalid := cse.InvalidFields(card.Validate(time.Now()))

			log.WithFields(log.Fields{
				"number": cse.MaskCardNumber(card.Number),
				"brand":  brand.String(),
			}).Info("validated card")

			if cfg.output == "json" {
				if err := printJSON(cmd.OutOrStdout(), struct {
					Brand   cse.Brand `json:"brand"`
					Valid   bool      `json:"valid"`
					Invalid []string  `json:"invalid,omitempty"`
				}{brand, len(invalid) == 0, invalid}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "brand: %s\n", brand)
				if len(invalid) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "valid")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", strings.Join(invalid, ", "))
				}
			}

			if len(invalid) > 0 {
				return errInvalidCard
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func encryptCmd(cfg *config) *cobra.Command {
	var (
		flags    cardFlags
		cvcOnly  bool
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt card data into a gateway token",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := flags.card()
			if err != nil {
				return err
			}
			if validate && !cvcOnly {
				if err := card.Validate(time.Now()); err != nil {
					return fmt.Errorf("%w: %s", errInvalidCard, strings.Join(cse.InvalidFields(err), ", "))
				}
			}

			provider, err := loadProvider(cfg)
			if err != nil {
				return err
			}
			enc, err := cse.NewEncryptor(provider)
			if err != nil {
				return err
			}

			var token string
			if cvcOnly {
				token, err = enc.Encrypt(cmd.Context(), card.Cvc)
			} else {
				log.WithField("number", cse.MaskCardNumber(card.Number)).Info("encrypting card")
				token, err = enc.EncryptCard(cmd.Context(), card)
			}
			if err != nil {
				return err
			}

			if cfg.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&cvcOnly, "cvc-only", false, "Encrypt only the CVC")
	cmd.Flags().BoolVar(&validate, "validate", false, "Reject invalid card data before encrypting")
	return cmd
}

func keyCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Print the DER key structure used for encryption",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := loadProvider(cfg)
			if err != nil {
				return err
			}
			key, err := provider.CurrentKey()
			if err != nil {
				return err
			}

			if cfg.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"id":   key.ID,
					"bits": key.Structure.Bits,
					"der":  base64.StdEncoding.EncodeToString(key.Structure.DER),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id:   %s\n", key.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "bits: %d\n", key.Structure.Bits)
			fmt.Fprintf(cmd.OutOrStdout(), "der:  %s\n", hex.EncodeToString(key.Structure.DER))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cse version %s\n", version)
		},
	}
}
