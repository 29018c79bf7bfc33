package grpcserver

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "concierge.v1.ConciergeStream"

const converseMethod = "/" + ServiceName + "/Converse"

// ConciergeStreamServer is the server API for the concierge stream.
type ConciergeStreamServer interface {
	Converse(ConverseServerStream) error
}

// ConverseServerStream carries ProcessMessageInput structs in and
// ConciergeResponse structs out.
type ConverseServerStream interface {
	Send(*structpb.Struct) error
	Recv() (*structpb.Struct, error)
	grpc.ServerStream
}

type converseServerStream struct {
	grpc.ServerStream
}

func (x *converseServerStream) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func (x *converseServerStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func converseHandler(srv any, stream grpc.ServerStream) error {
	return srv.(ConciergeStreamServer).Converse(&converseServerStream{stream})
}

// ServiceDesc describes the concierge stream for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConciergeStreamServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Converse",
			Handler:       converseHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "concierge/v1/concierge.proto",
}

func RegisterConciergeStreamServer(s grpc.ServiceRegistrar, srv ConciergeStreamServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client opens concierge streams on an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Converse(ctx context.Context, opts ...grpc.CallOption) (*ConverseClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], converseMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &ConverseClientStream{ClientStream: stream}, nil
}

// ConverseClientStream sends guest messages and receives concierge replies.
type ConverseClientStream struct {
	grpc.ClientStream
}

func (x *ConverseClientStream) Send(in core.ProcessMessageInput) error {
	msg, err := toStruct(in)
	if err != nil {
		return err
	}
	return x.ClientStream.SendMsg(msg)
}

func (x *ConverseClientStream) Recv() (*core.ConciergeResponse, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	var resp core.ConciergeResponse
	if err := fromStruct(m, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, out any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, out)
}
