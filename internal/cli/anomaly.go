package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/costwatch/costwatch/pkg/client"
)

func newAnomalyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomaly",
		Short: "Browse stored anomalies",
	}

	cmd.AddCommand(newAnomalyListCmd())

	return cmd
}

func newAnomalyListCmd() *cobra.Command {
	var (
		subscriptionID string
		resourceID     string
		severity       string
		page           int
		pageSize       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			anomalies, total, err := apiClient.ListAnomalies(ctx, client.AnomalyListOptions{
				SubscriptionID: subscriptionID,
				ResourceID:     resourceID,
				Severity:       severity,
				Page:           page,
				PageSize:       pageSize,
			})
			if err != nil {
				return fmt.Errorf("failed to list anomalies: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(anomalies)
			}

			if len(anomalies) == 0 {
				fmt.Println("No anomalies found.")
				return nil
			}

			table := NewTable("RESOURCE", "DATE", "TYPE", "SEVERITY", "ACTUAL", "EXPECTED", "Z-SCORE", "CONFIDENCE")
			for _, a := range anomalies {
				table.AddRow(
					truncate(a.ResourceID, 50),
					a.Date.Format("2006-01-02"),
					a.AnomalyType,
					formatSeverity(a.Severity),
					fmt.Sprintf("$%.2f", a.ActualCost),
					fmt.Sprintf("$%.2f", a.ExpectedCost),
					fmt.Sprintf("%.2f", a.ZScore),
					fmt.Sprintf("%.2f", a.Confidence),
				)
			}
			table.Render()

			fmt.Printf("\nShowing %d of %d anomalies\n", len(anomalies), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subscriptionID, "subscription", "s", "", "filter by subscription ID")
	cmd.Flags().StringVarP(&resourceID, "resource", "r", "", "filter by resource ID")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity: High, Medium, Low")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")

	return cmd
}
