package builtin

import (
	"fmt"
	"slices"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/schema"
)

// MessageType classifies a message block.
type MessageType string

const (
	MessageInfo    MessageType = "info"
	MessageWarning MessageType = "warning"
	MessageError   MessageType = "error"
	MessageSuccess MessageType = "success"
	MessageStatus  MessageType = "status"
)

var messageTypes = []MessageType{MessageInfo, MessageWarning, MessageError, MessageSuccess, MessageStatus}

// MessageMetadata is the header of a message block.
type MessageMetadata struct {
	Base        `yaml:",inline"`
	MessageType MessageType `yaml:"message_type"`
	Title       string      `yaml:"title,omitempty"`
}

func (m MessageMetadata) Validate() error {
	if !slices.Contains(messageTypes, m.MessageType) {
		return streamblocks.NewSchemaError("message_type", fmt.Sprintf("must be one of %v, got %q", messageTypes, m.MessageType))
	}
	return nil
}

func messageEntry() streamblocks.RegistryEntry {
	return streamblocks.RegistryEntry{
		BlockType: TypeMessage,
		Metadata:  schema.Struct[MessageMetadata](),
		Content:   schema.NonEmptyText(),
	}
}
