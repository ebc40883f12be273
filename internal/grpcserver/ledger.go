package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/asaas-gateway/internal/ledger"
)

const (
	LedgerServiceName = "asaas.ledger.v1.Ledger"
	getPaymentMethod  = "/" + LedgerServiceName + "/GetPayment"
)

// LedgerService is the read side of the payment ledger exposed to internal callers.
// Messages are protobuf well-known types so no generated stubs are needed.
type LedgerService interface {
	GetPayment(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: LedgerServiceName,
	HandlerType: (*LedgerService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPayment", Handler: getPaymentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "asaas/ledger/v1/ledger.proto",
}

func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerService) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

func getPaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerService).GetPayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getPaymentMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerService).GetPayment(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type LedgerServer struct {
	Store  ledger.PaymentStore
	Logger *zap.Logger
}

func (s *LedgerServer) GetPayment(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(in.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "payment id is required")
	}
	rec, err := s.Store.FindPayment(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "payment %s not found", id)
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("ledger lookup failed", zap.String("payment_id", id), zap.Error(err))
		}
		return nil, status.Error(codes.Internal, "ledger lookup failed")
	}
	return recordStruct(rec)
}

func recordStruct(rec *ledger.PaymentRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"asaas_payment_id":  rec.GatewayPaymentID,
		"user_id":           rec.UserID,
		"asaas_customer_id": rec.CustomerID,
		"status":            rec.Status,
		"reference_type":    string(rec.ReferenceType),
		"reference_id":      rec.ReferenceID,
		"billing_type":      rec.BillingType,
		"value":             rec.Value.StringFixed(2),
		"due_date":          rec.DueDate,
		"invoice_url":       rec.InvoiceURL,
		"bank_slip_url":     rec.BankSlipURL,
		"created_at":        formatTime(rec.CreatedAt),
		"updated_at":        formatTime(rec.UpdatedAt),
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// LedgerClient calls LedgerService over an existing connection.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) GetPayment(ctx context.Context, paymentID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getPaymentMethod, wrapperspb.String(paymentID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
