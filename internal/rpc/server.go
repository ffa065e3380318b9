package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/clickforge/clicker-core/internal/game"
	"github.com/clickforge/clicker-core/internal/upgrade"
)

// Server serves one session.
type Server struct {
	sess *game.Session
	log  *slog.Logger
}

func NewServer(sess *game.Session, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{sess: sess, log: log}
}

var _ ClickerServer = (*Server)(nil)

func (s *Server) GetState(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.sess.State())
}

func (s *Server) Click(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.sess.Click())
}

// Purchase expects {"id": string, "quantity": number}. quantity defaults to
// 1; a negative quantity buys as many as the score allows.
func (s *Server) Purchase(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	id := fields["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	qty := 1
	if v, ok := fields["quantity"]; ok {
		n, err := quantity(v)
		if err != nil {
			return nil, err
		}
		qty = n
	}

	res, err := s.sess.Purchase(id, qty)
	if errors.Is(err, upgrade.ErrUnknownUpgrade) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(game.NewPurchaseView(res))
}

// quantity accepts whole numbers within the int range.
func quantity(v *structpb.Value) (int, error) {
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, status.Error(codes.InvalidArgument, "quantity must be a number")
	}
	f := v.GetNumberValue()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, status.Error(codes.InvalidArgument, "quantity must be a whole number")
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, status.Error(codes.InvalidArgument, "quantity out of range")
	}
	return int(f), nil
}

func (s *Server) Tick(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.sess.Tick())
}

func (s *Server) Reset(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	s.sess.Reset()
	return toStruct(s.sess.State())
}

// SetCapacityLimit expects {"enabled": bool}.
func (s *Server) SetCapacityLimit(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["enabled"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "enabled is required")
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return nil, status.Error(codes.InvalidArgument, "enabled must be a bool")
	}
	s.sess.SetCapacityLimit(v.GetBoolValue())
	return toStruct(s.sess.State())
}

// UnaryLogger logs every call with its duration and status code.
func UnaryLogger(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc", "method", info.FullMethod, "code", status.Code(err).String(), "took", time.Since(start))
		return resp, err
	}
}

// toStruct round-trips v through JSON so the struct carries the same field
// names as the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, out any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
