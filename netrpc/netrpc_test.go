package netrpc

import (
	"testing"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/builder"

	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

func testVM() *interp.Interpreter {
	env := object.NewEnvironment()
	env.Number = object.NewDynamic(nil, "Number")
	env.String = object.NewDynamic(nil, "String")
	env.Object = object.NewDynamic(nil, "Object")
	env.True = object.NewDynamic(nil, "true")
	env.False = object.NewDynamic(nil, "false")
	return interp.New(env, diag.NewWriter(discard{}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// buildPersonDescriptor mirrors a small protobuf message with a scalar
// field of each kind fieldToProto/protoToField understand, plus a nested
// message field, without needing a running gRPC server to obtain one via
// reflection.
func buildPersonDescriptor(t *testing.T) *desc.MessageDescriptor {
	t.Helper()
	addrMsg := builder.NewMessage("Address")
	addrMsg.AddField(builder.NewField("city", builder.FieldTypeString()))

	person := builder.NewMessage("Person")
	person.AddField(builder.NewField("name", builder.FieldTypeString()))
	person.AddField(builder.NewField("age", builder.FieldTypeInt32()))
	person.AddField(builder.NewField("active", builder.FieldTypeBool()))
	person.AddField(builder.NewField("address", builder.FieldTypeMessage(addrMsg)))

	fd, err := builder.NewFile("person.proto").AddMessage(person).Build()
	if err != nil {
		t.Fatalf("build descriptor: %v", err)
	}
	msgDesc := fd.FindMessage("Person")
	if msgDesc == nil {
		t.Fatalf("Person descriptor missing after build")
	}
	return msgDesc
}

func TestToProtoThenFromProtoRoundTripsFields(t *testing.T) {
	vm := testVM()
	msgDesc := buildPersonDescriptor(t)

	addr := object.NewDynamic(vm.Env.Object, "")
	addr.Scope.Define("city", object.NewString("Metropolis", vm.Env.String))

	person := object.NewDynamic(vm.Env.Object, "")
	person.Scope.Define("name", object.NewString("Ada", vm.Env.String))
	person.Scope.Define("age", object.NewNumber(37, vm.Env.Number))
	person.Scope.Define("active", vm.Env.True)
	person.Scope.Define("address", addr)

	msg, err := toProto(vm, person, msgDesc)
	if err != nil {
		t.Fatalf("toProto: %v", err)
	}

	back, err := fromProto(vm, msg)
	if err != nil {
		t.Fatalf("fromProto: %v", err)
	}
	dyn, ok := back.(*object.Dynamic)
	if !ok {
		t.Fatalf("got %#v, want *object.Dynamic", back)
	}

	name, _ := dyn.Scope.Lookup("name")
	if name.(*object.String).Val != "Ada" {
		t.Errorf("got name %#v, want \"Ada\"", name)
	}
	age, _ := dyn.Scope.Lookup("age")
	if age.(*object.Number).Val != 37 {
		t.Errorf("got age %#v, want 37", age)
	}
	active, _ := dyn.Scope.Lookup("active")
	if active != vm.Env.True {
		t.Errorf("got active %#v, want true", active)
	}
	addrBack, _ := dyn.Scope.Lookup("address")
	addrDyn, ok := addrBack.(*object.Dynamic)
	if !ok {
		t.Fatalf("got %#v, want a nested *object.Dynamic for address", addrBack)
	}
	city, _ := addrDyn.Scope.Lookup("city")
	if city.(*object.String).Val != "Metropolis" {
		t.Errorf("got city %#v, want \"Metropolis\"", city)
	}
}

func TestToProtoIgnoresUnknownFields(t *testing.T) {
	vm := testVM()
	msgDesc := buildPersonDescriptor(t)

	person := object.NewDynamic(vm.Env.Object, "")
	person.Scope.Define("name", object.NewString("Ada", vm.Env.String))
	person.Scope.Define("nonexistent", object.NewNumber(1, vm.Env.Number))

	if _, err := toProto(vm, person, msgDesc); err != nil {
		t.Fatalf("toProto should ignore fields absent from the descriptor, got error: %v", err)
	}
}

func TestToProtoOnNonDynamicReturnsEmptyMessage(t *testing.T) {
	vm := testVM()
	msgDesc := buildPersonDescriptor(t)

	msg, err := toProto(vm, object.NewNumber(1, vm.Env.Number), msgDesc)
	if err != nil {
		t.Fatalf("toProto: %v", err)
	}
	if len(msg.GetKnownFields()) == 0 {
		t.Fatalf("expected descriptor fields to exist even if unset")
	}
	for _, f := range msg.GetKnownFields() {
		if msg.HasField(f) {
			t.Errorf("expected no fields set on a message built from a non-Dynamic receiver")
		}
	}
}

func TestResolveMethodRejectsMalformedFullMethod(t *testing.T) {
	c := &Client{}
	if _, err := c.resolveMethod("nodotslash"); err == nil {
		t.Fatalf("expected an error for a full method missing \"service/method\" separator")
	}
}
