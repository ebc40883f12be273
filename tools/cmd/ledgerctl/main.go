// asaas-gateway/tools/cmd/ledgerctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc/status"

	"github.com/example/asaas-gateway/internal/grpcserver"
	"github.com/example/asaas-gateway/services/api-gateway/queue"
)

const usage = `usage:
  ledgerctl get   [-addr host:port] <payment-id>
  ledgerctl watch [-brokers b1,b2] [-topic payments.status]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "get":
		err = runGet(os.Args[2:], os.Stdout)
	case "watch":
		err = runWatch(os.Args[2:], os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("ledgerctl %s: %v", os.Args[1], err)
	}
}

func runGet(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	addr := fs.String("addr", getenv("LEDGER_ADDR", "localhost:9091"), "ledger-grpc address")
	timeout := fs.Duration("timeout", 5*time.Second, "call timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("exactly one payment id expected")
	}

	client, conn, err := grpcserver.DialLedger(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	rec, err := client.GetPayment(ctx, fs.Arg(0))
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return fmt.Errorf("%s: %s", st.Code(), st.Message())
		}
		return err
	}
	return printJSON(out, rec.AsMap())
}

func runWatch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	brokers := fs.String("brokers", getenv("KAFKA_BROKERS", "localhost:9092"), "comma separated kafka brokers")
	topic := fs.String("topic", getenv("KAFKA_STATUS_TOPIC", "payments.status"), "status topic")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return queue.Tail(ctx, strings.Split(*brokers, ","), *topic, func(key, value []byte) error {
		var v map[string]any
		if err := json.Unmarshal(value, &v); err != nil {
			_, err := fmt.Fprintf(out, "%s\t%s\n", key, value)
			return err
		}
		return printJSON(out, v)
	})
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
