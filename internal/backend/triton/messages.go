package triton

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/ekisa-team/lingua/internal/backend"
)

// modelInferMethod is the full gRPC method name of KServe v2 ModelInfer.
const modelInferMethod = "/inference.GRPCInferenceService/ModelInfer"

// The subset of the KServe v2 grpc_service.proto messages used for raw
// tensor inference. Field numbers match the upstream definition; fields
// not declared here are preserved as unknown fields.
var (
	inferRequestDesc  protoreflect.MessageDescriptor
	inferResponseDesc protoreflect.MessageDescriptor
	inputTensorDesc   protoreflect.MessageDescriptor
	requestedDesc     protoreflect.MessageDescriptor
	outputTensorDesc  protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(inferenceFile(), nil)
	if err != nil {
		panic(fmt.Sprintf("triton: invalid inference descriptor: %v", err))
	}

	inferRequestDesc = fd.Messages().ByName("ModelInferRequest")
	inferResponseDesc = fd.Messages().ByName("ModelInferResponse")
	inputTensorDesc = inferRequestDesc.Messages().ByName("InferInputTensor")
	requestedDesc = inferRequestDesc.Messages().ByName("InferRequestedOutputTensor")
	outputTensorDesc = inferResponseDesc.Messages().ByName("InferOutputTensor")
}

func inferenceFile() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

		tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
		tBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)

	field := func(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
		f := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(number),
			Label:  label.Enum(),
			Type:   typ.Enum(),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}
		return f
	}

	tensor := func(name string) *descriptorpb.DescriptorProto {
		return &descriptorpb.DescriptorProto{
			Name: proto.String(name),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("name", 1, optional, tString, ""),
				field("datatype", 2, optional, tString, ""),
				field("shape", 3, repeated, tInt64, ""),
			},
		}
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("lingua/inference/grpc_service.proto"),
		Package: proto.String("inference"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ModelInferRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("model_name", 1, optional, tString, ""),
					field("model_version", 2, optional, tString, ""),
					field("id", 3, optional, tString, ""),
					field("inputs", 5, repeated, tMessage, ".inference.ModelInferRequest.InferInputTensor"),
					field("outputs", 6, repeated, tMessage, ".inference.ModelInferRequest.InferRequestedOutputTensor"),
					field("raw_input_contents", 7, repeated, tBytes, ""),
				},
				NestedType: []*descriptorpb.DescriptorProto{
					tensor("InferInputTensor"),
					{
						Name: proto.String("InferRequestedOutputTensor"),
						Field: []*descriptorpb.FieldDescriptorProto{
							field("name", 1, optional, tString, ""),
						},
					},
				},
			},
			{
				Name: proto.String("ModelInferResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("model_name", 1, optional, tString, ""),
					field("model_version", 2, optional, tString, ""),
					field("id", 3, optional, tString, ""),
					field("outputs", 5, repeated, tMessage, ".inference.ModelInferResponse.InferOutputTensor"),
					field("raw_output_contents", 6, repeated, tBytes, ""),
				},
				NestedType: []*descriptorpb.DescriptorProto{
					tensor("InferOutputTensor"),
				},
			},
		},
	}
}

func fieldOf(md protoreflect.MessageDescriptor, name protoreflect.Name) protoreflect.FieldDescriptor {
	return md.Fields().ByName(name)
}

// newInferRequest encodes req as a ModelInferRequest with raw input contents.
func newInferRequest(req *backend.Request) *dynamicpb.Message {
	msg := dynamicpb.NewMessage(inferRequestDesc)
	msg.Set(fieldOf(inferRequestDesc, "model_name"), protoreflect.ValueOfString(req.Model))
	msg.Set(fieldOf(inferRequestDesc, "model_version"), protoreflect.ValueOfString(req.Version))
	msg.Set(fieldOf(inferRequestDesc, "id"), protoreflect.ValueOfString(req.ID))

	inputs := msg.Mutable(fieldOf(inferRequestDesc, "inputs")).List()
	raw := msg.Mutable(fieldOf(inferRequestDesc, "raw_input_contents")).List()
	for _, t := range req.Inputs {
		inputs.Append(protoreflect.ValueOfMessage(tensorMessage(inputTensorDesc, t)))
		raw.Append(protoreflect.ValueOfBytes(t.Raw))
	}

	outputs := msg.Mutable(fieldOf(inferRequestDesc, "outputs")).List()
	for _, name := range req.Outputs {
		out := dynamicpb.NewMessage(requestedDesc)
		out.Set(fieldOf(requestedDesc, "name"), protoreflect.ValueOfString(name))
		outputs.Append(protoreflect.ValueOfMessage(out))
	}

	return msg
}

// parseInferResponse decodes a ModelInferResponse. Output tensors are
// paired with raw_output_contents by position.
func parseInferResponse(msg protoreflect.Message) (*backend.Response, error) {
	resp := &backend.Response{
		Model:   msg.Get(fieldOf(inferResponseDesc, "model_name")).String(),
		Version: msg.Get(fieldOf(inferResponseDesc, "model_version")).String(),
		ID:      msg.Get(fieldOf(inferResponseDesc, "id")).String(),
	}

	outputs := msg.Get(fieldOf(inferResponseDesc, "outputs")).List()
	raw := msg.Get(fieldOf(inferResponseDesc, "raw_output_contents")).List()

	if raw.Len() > 0 && raw.Len() != outputs.Len() {
		return nil, fmt.Errorf("%w: %d outputs but %d raw contents", backend.ErrMalformedTensor, outputs.Len(), raw.Len())
	}

	resp.Outputs = make([]backend.Tensor, 0, outputs.Len())
	for i := 0; i < outputs.Len(); i++ {
		t := tensorFromMessage(outputs.Get(i).Message())
		if i < raw.Len() {
			t.Raw = raw.Get(i).Bytes()
		}
		resp.Outputs = append(resp.Outputs, t)
	}

	return resp, nil
}

func tensorMessage(md protoreflect.MessageDescriptor, t backend.Tensor) *dynamicpb.Message {
	m := dynamicpb.NewMessage(md)
	m.Set(fieldOf(md, "name"), protoreflect.ValueOfString(t.Name))
	m.Set(fieldOf(md, "datatype"), protoreflect.ValueOfString(string(t.Datatype)))

	shape := m.Mutable(fieldOf(md, "shape")).List()
	for _, d := range t.Shape {
		shape.Append(protoreflect.ValueOfInt64(d))
	}

	return m
}

func tensorFromMessage(m protoreflect.Message) backend.Tensor {
	md := m.Descriptor()
	t := backend.Tensor{
		Name:     m.Get(fieldOf(md, "name")).String(),
		Datatype: backend.Datatype(m.Get(fieldOf(md, "datatype")).String()),
	}

	shape := m.Get(fieldOf(md, "shape")).List()
	t.Shape = make([]int64, shape.Len())
	for i := range t.Shape {
		t.Shape[i] = shape.Get(i).Int()
	}

	return t
}
