// Package netrpc exposes a reflection-based gRPC call primitive on the
// well-known Ether object. No protoc-generated stubs are required:
// server reflection resolves the method's request and response message
// descriptors at call time, and a dynamic message is built directly from
// an Ether object's fields.
package netrpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	rpb "google.golang.org/grpc/reflection/grpc_reflection_v1alpha"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// Register installs the `grpcConnect ` primitive on the Ether object; the
// handle it answers carries the `call with `, `services` and `close`
// primitives.
// Connections are kept alive in a private registry keyed by a synthetic
// id stored on the returned Dynamic's own field, since Ether's Value
// interface has no room for embedding opaque Go state directly.
func Register(vm *interp.Interpreter, eth *object.Dynamic) {
	registry := map[string]*Client{}
	var nextID int

	eth.AddPrimitive("grpcConnect ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		if len(args) != 1 {
			return v.Env.Nil
		}
		target, ok := args[0].(*object.String)
		if !ok {
			return v.Env.Nil
		}
		client, err := Connect(target.Val)
		if err != nil {
			v.Sink.Report(fmt.Sprintf("Runtime error: %s", err))
			return v.Env.Nil
		}
		nextID++
		id := fmt.Sprintf("grpc-%d", nextID)
		registry[id] = client

		handle := object.NewDynamic(v.Env.Object, "GrpcClient")
		handle.Scope.Define("__id", object.NewString(id, v.Env.String))
		handle.AddPrimitive("call with ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
			v := vmi.(*interp.Interpreter)
			if len(args) != 2 {
				return v.Env.Nil
			}
			method, ok := args[0].(*object.String)
			if !ok {
				return v.Env.Nil
			}
			resp, err := client.Call(v, method.Val, args[1])
			if err != nil {
				v.Sink.Report(fmt.Sprintf("Runtime error: %s", err))
				return v.Env.Nil
			}
			return resp
		})
		handle.AddPrimitive("services", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
			v := vmi.(*interp.Interpreter)
			names, err := client.ListServices()
			if err != nil {
				v.Sink.Report(fmt.Sprintf("Runtime error: %s", err))
				return v.Env.Nil
			}
			elems := make([]object.Value, len(names))
			for i, n := range names {
				elems[i] = object.NewString(n, v.Env.String)
			}
			return object.NewArray(elems, v.Env.Array)
		})
		handle.AddPrimitive("close", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
			v := vmi.(*interp.Interpreter)
			client.Close()
			delete(registry, id)
			return v.Env.Nil
		})
		return handle
	})
}

// Client wraps a gRPC connection plus its reflection client, letting
// method descriptors be resolved without generated stubs.
type Client struct {
	conn   *grpc.ClientConn
	reflec *grpcreflect.Client
	target string
}

// Connect dials target (host:port) and opens a reflection client against
// it.
func Connect(target string) (*Client, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("netrpc: dial %s: %w", target, err)
	}
	reflec := grpcreflect.NewClientV1Alpha(context.Background(), rpb.NewServerReflectionClient(conn))
	return &Client{conn: conn, reflec: reflec, target: target}, nil
}

// Close releases the connection and reflection client.
func (c *Client) Close() error {
	c.reflec.Reset()
	return c.conn.Close()
}

// ListServices returns every service name the endpoint's reflection
// service reports, excluding the reflection service itself.
func (c *Client) ListServices() ([]string, error) {
	names, err := c.reflec.ListServices()
	if err != nil {
		return nil, fmt.Errorf("netrpc: list services: %w", err)
	}
	out := names[:0]
	for _, n := range names {
		if !strings.HasPrefix(n, "grpc.reflection") {
			out = append(out, n)
		}
	}
	return out, nil
}

func (c *Client) resolveMethod(fullMethod string) (*desc.MethodDescriptor, error) {
	parts := strings.SplitN(fullMethod, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("netrpc: method must be \"service/method\", got %q", fullMethod)
	}
	svcDesc, err := c.reflec.ResolveService(parts[0])
	if err != nil {
		return nil, fmt.Errorf("netrpc: resolve service %s: %w", parts[0], err)
	}
	methodDesc := svcDesc.FindMethodByName(parts[1])
	if methodDesc == nil {
		return nil, fmt.Errorf("netrpc: method %s not found on %s", parts[1], parts[0])
	}
	return methodDesc, nil
}

// Call performs a unary RPC: fullMethod names "package.Service/Method",
// req's fields (an Ether Dynamic's own object-scope) become the request
// message's fields by name, and the response comes back as a fresh
// Dynamic whose fields mirror the response message.
func (c *Client) Call(vm *interp.Interpreter, fullMethod string, req object.Value) (object.Value, error) {
	methodDesc, err := c.resolveMethod(fullMethod)
	if err != nil {
		return nil, err
	}

	reqMsg, err := toProto(vm, req, methodDesc.GetInputType())
	if err != nil {
		return nil, fmt.Errorf("netrpc: request: %w", err)
	}

	respMsg := dynamic.NewMessage(methodDesc.GetOutputType())
	if err := c.conn.Invoke(context.Background(), "/"+fullMethod, reqMsg, respMsg); err != nil {
		return nil, fmt.Errorf("netrpc: call %s: %w", fullMethod, err)
	}

	return fromProto(vm, respMsg)
}

// toProto converts an Ether object's fields into a dynamic protobuf
// message matching desc. Only Dynamic receivers are supported: their
// object-scope IS the field bag.
func toProto(vm *interp.Interpreter, v object.Value, desc *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(desc)
	dyn, ok := v.(*object.Dynamic)
	if !ok {
		return msg, nil
	}
	for _, name := range dyn.Scope.Names() {
		field := desc.FindFieldByName(name)
		if field == nil {
			continue
		}
		fv, _ := dyn.Scope.Lookup(name)
		protoVal, err := fieldToProto(vm, fv, field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if err := msg.TrySetField(field, protoVal); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
	}
	return msg, nil
}

func fieldToProto(vm *interp.Interpreter, v object.Value, field *desc.FieldDescriptor) (interface{}, error) {
	switch field.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		n, ok := v.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("expected a Number")
		}
		return int32(n.Val), nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		n, ok := v.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("expected a Number")
		}
		return int64(n.Val), nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		n, ok := v.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("expected a Number")
		}
		return float32(n.Val), nil
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		n, ok := v.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("expected a Number")
		}
		return n.Val, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return v == vm.Env.True, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		s, ok := v.(*object.String)
		if !ok {
			return nil, fmt.Errorf("expected a String")
		}
		return s.Val, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return toProto(vm, v, field.GetMessageType())
	default:
		return nil, fmt.Errorf("unsupported proto field type %v", field.GetType())
	}
}

// fromProto converts a dynamic protobuf message into a fresh Ether
// Dynamic prototyped on Object, one field per set message field.
func fromProto(vm *interp.Interpreter, msg *dynamic.Message) (object.Value, error) {
	obj := object.NewDynamic(vm.Env.Object, "")
	for _, field := range msg.GetKnownFields() {
		if !msg.HasField(field) {
			continue
		}
		v, err := protoToField(vm, msg.GetField(field), field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.GetName(), err)
		}
		obj.Scope.Define(field.GetName(), v)
	}
	return obj, nil
}

func protoToField(vm *interp.Interpreter, raw interface{}, field *desc.FieldDescriptor) (object.Value, error) {
	switch field.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return object.NewNumber(float64(raw.(int32)), vm.Env.Number), nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return object.NewNumber(float64(raw.(int64)), vm.Env.Number), nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return object.NewNumber(float64(raw.(float32)), vm.Env.Number), nil
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return object.NewNumber(raw.(float64), vm.Env.Number), nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if raw.(bool) {
			return vm.Env.True, nil
		}
		return vm.Env.False, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return object.NewString(raw.(string), vm.Env.String), nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return fromProto(vm, raw.(*dynamic.Message))
	default:
		return vm.Env.Nil, nil
	}
}
