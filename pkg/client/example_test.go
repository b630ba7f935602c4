package client_test

import (
	"context"
	"fmt"
	"log"

	"github.com/costwatch/costwatch/pkg/client"
)

// Example demonstrates basic usage of the CostWatch client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	ctx := context.Background()

	// Run anomaly detection for a subscription
	summary, err := c.RunDetection(ctx, client.DetectionRequest{
		SubscriptionID: "00000000-0000-0000-0000-000000000000",
		DaysBack:       30,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Detected %d anomalies across %d resources\n",
		summary.AnomaliesDetected, summary.ResourcesAnalyzed)
}

// ExampleClient_ListAnomalies demonstrates querying stored anomalies
func ExampleClient_ListAnomalies() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	anomalies, total, err := c.ListAnomalies(context.Background(), client.AnomalyListOptions{
		SubscriptionID: "00000000-0000-0000-0000-000000000000",
		Severity:       "High",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Showing %d of %d high severity anomalies\n", len(anomalies), total)
}
