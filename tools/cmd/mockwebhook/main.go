// asaas-gateway/tools/cmd/mockwebhook/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

type nestedPayment struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// buildPayload renders an Asaas-style event. With nested set the id and status
// are placed under payment.object instead of the top level.
func buildPayload(event, paymentID, status string, value float64, nested bool) ([]byte, error) {
	p := map[string]any{"value": value}
	if nested {
		p["object"] = nestedPayment{ID: paymentID, Status: status}
	} else {
		p["object"] = "payment"
		p["id"] = paymentID
		if status != "" {
			p["status"] = status
		}
	}
	return json.Marshal(map[string]any{
		"id":          "evt_" + uuid.NewString(),
		"event":       event,
		"dateCreated": time.Now().UTC().Format("2006-01-02 15:04:05"),
		"payment":     p,
	})
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/asaas", "webhook URL")
	token := flag.String("token", os.Getenv("ASAAS_WEBHOOK_ACCESS_TOKEN"), "asaas-access-token header value")
	event := flag.String("event", "PAYMENT_CONFIRMED", "event type")
	paymentID := flag.String("payment-id", "", "gateway payment id (required)")
	status := flag.String("status", "CONFIRMED", "payment status, empty to omit")
	value := flag.Float64("value", 100, "payment value")
	nested := flag.Bool("nested", false, "put id/status under payment.object")
	n := flag.Int("n", 1, "number of deliveries (simulates gateway redelivery)")
	dryRun := flag.Bool("dry-run", false, "print the body without sending")
	flag.Parse()

	if *paymentID == "" {
		fmt.Fprintln(os.Stderr, "-payment-id is required")
		os.Exit(2)
	}

	body, err := buildPayload(*event, *paymentID, *status, *value, *nested)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Body: %s\n", body)
	if *dryRun {
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	failed := false
	for i := 0; i < *n; i++ {
		req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
		if err != nil {
			log.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("asaas-access-token", *token)
		}
		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("send: %v", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("[%d] %d %s\n", i+1, resp.StatusCode, bytes.TrimSpace(respBody))
		if resp.StatusCode != http.StatusOK {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
