package grpcserver

import (
	"fmt"

	gp "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialLedger opens a plaintext connection to a ledger-grpc instance. Callers close
// the returned conn.
func DialLedger(addr string) (*LedgerClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(gp.UnaryClientInterceptor),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial ledger %s: %w", addr, err)
	}
	return NewLedgerClient(conn), conn, nil
}
