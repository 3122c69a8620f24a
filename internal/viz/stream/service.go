package stream

import (
	"context"
	"log"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pointviz.v1.SceneService"

// StreamSceneMethod is the full method path of the scene stream.
const StreamSceneMethod = "/" + ServiceName + "/StreamScene"

// sceneServer is the handler contract of the scene service.
type sceneServer interface {
	StreamScene(req *structpb.Struct, stream grpc.ServerStream) error
}

var sceneServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*sceneServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamScene",
			Handler:       streamSceneHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pointviz/v1/scene.proto",
}

func streamSceneHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(sceneServer).StreamScene(req, stream)
}

// StreamScene sends a hello, the current scene as add events, and then
// every change until the client goes away or the server stops. The request
// may carry a "viewport" number to receive only one pane.
func (r *Renderer) StreamScene(req *structpb.Struct, stream grpc.ServerStream) error {
	viewport := 0
	if v, ok := req.GetFields()["viewport"]; ok {
		viewport = int(v.GetNumberValue())
	}
	if viewport < 0 || viewport > r.Viewports() {
		return status.Errorf(codes.InvalidArgument, "no viewport %d", viewport)
	}

	clientID := uuid.New().String()
	c, err := r.addClient(clientID, viewport)
	if err != nil {
		return status.Error(codes.ResourceExhausted, err.Error())
	}
	defer r.removeClient(clientID)

	log.Printf("[gRPC] StreamScene started: client=%s viewport=%d", clientID, viewport)

	hello, err := encodeHello(clientID, r.Viewports())
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := stream.SendMsg(hello); err != nil {
		return err
	}

	// Clients may see an actor twice when it is added while the snapshot is
	// being sent; add events are idempotent.
	if err := r.sendSnapshot(stream, viewport); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopCh:
			return nil
		case ev := <-c.eventCh:
			if err := stream.SendMsg(ev.msg); err != nil {
				log.Printf("[gRPC] Send error: %v", err)
				return err
			}
		}
	}
}

func (r *Renderer) sendSnapshot(stream grpc.ServerStream, viewport int) error {
	var (
		evs    []*event
		encErr error
	)
	r.view(func() {
		for pane := 1; pane <= r.Viewports(); pane++ {
			if viewport != 0 && pane != viewport {
				continue
			}
			for _, a := range r.mem.Actors(pane) {
				ev, err := r.encode(EventAdd, a, pane, true)
				if err != nil {
					encErr = err
					return
				}
				evs = append(evs, ev)
			}
		}
	})
	if encErr != nil {
		return status.Error(codes.Internal, encErr.Error())
	}
	for _, ev := range evs {
		if err := stream.SendMsg(ev.msg); err != nil {
			return err
		}
	}
	return nil
}

// SceneClient reads scene events from a stream.
type SceneClient struct {
	stream grpc.ClientStream
}

// Subscribe opens a scene stream on cc. viewport 0 subscribes to every pane.
func Subscribe(ctx context.Context, cc grpc.ClientConnInterface, viewport int) (*SceneClient, error) {
	stream, err := cc.NewStream(ctx, &sceneServiceDesc.Streams[0], StreamSceneMethod)
	if err != nil {
		return nil, err
	}
	req, err := structpb.NewStruct(map[string]interface{}{"viewport": viewport})
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &SceneClient{stream: stream}, nil
}

// Recv returns the next event.
func (c *SceneClient) Recv() (*structpb.Struct, error) {
	msg := new(structpb.Struct)
	if err := c.stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
