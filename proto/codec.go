/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package proto

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // keep default proto codec registered
	pb "google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype both sides of the device-management
// socket speak. Messages that happen to be real protobufs still marshal as
// protobuf; everything else goes through encoding/json.
const CodecName = "json"

type jsonCodec struct{}

// Marshal encodes the message to a byte array.
func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	if msg, ok := v.(pb.Message); ok {
		return pb.Marshal(msg)
	}

	return json.Marshal(v)
}

// Unmarshal decodes the byte array into the provided value.
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if msg, ok := v.(pb.Message); ok {
		return pb.Unmarshal(data, msg)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %w", v, err)
	}

	return nil
}

// Name returns the name of the codec.
func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOption forces client calls onto the JSON codec.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
