package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/costwatch/costwatch/pkg/client"
)

func newDetectCmd() *cobra.Command {
	var (
		subscriptionID string
		daysBack       int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run anomaly detection for a subscription",
		Long: `Run cost anomaly detection for an Azure subscription. The server
fetches daily cost data, scores each resource against its historical
baseline and reports the detected anomalies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			fmt.Printf("Running detection for subscription %s (%d days)...\n", subscriptionID, daysBack)

			summary, err := apiClient.RunDetection(ctx, client.DetectionRequest{
				SubscriptionID: subscriptionID,
				DaysBack:       daysBack,
			})
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			printRunSummary(summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subscriptionID, "subscription", "s", "", "Azure subscription ID (required)")
	cmd.Flags().IntVarP(&daysBack, "days", "d", 30, "number of days of cost history to analyze")
	_ = cmd.MarkFlagRequired("subscription")

	return cmd
}

func printRunSummary(summary *client.RunSummary) {
	fmt.Println()
	fmt.Printf("Subscription:       %s\n", summary.SubscriptionID)
	fmt.Printf("Analysis period:    %d days\n", summary.AnalysisPeriodDays)
	fmt.Printf("Resources analyzed: %d\n", summary.ResourcesAnalyzed)
	fmt.Printf("Anomalies detected: %d\n", summary.AnomaliesDetected)
	fmt.Printf("Alerts:             high=%d medium=%d low=%d\n",
		summary.AlertCounts["High"], summary.AlertCounts["Medium"], summary.AlertCounts["Low"])
	if summary.ResultsLocation != "" {
		fmt.Printf("Results:            %s\n", summary.ResultsLocation)
	}

	if len(summary.HighSeverityAnomalies) == 0 {
		return
	}

	fmt.Println()
	table := NewTable("RESOURCE", "DATE", "ACTUAL", "EXPECTED", "VARIANCE", "Z-SCORE")
	for _, a := range summary.HighSeverityAnomalies {
		table.AddRow(
			truncate(a.ResourceID, 60),
			a.Date.Format("2006-01-02"),
			fmt.Sprintf("$%.2f", a.ActualCost),
			fmt.Sprintf("$%.2f", a.ExpectedCost),
			fmt.Sprintf("%.1f%%", a.VariancePercentage),
			fmt.Sprintf("%.2f", a.ZScore),
		)
	}
	table.Render()
}
