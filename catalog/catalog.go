// Package catalog declares descriptors for the Threema protocol messages the
// codec is exercised with: the forward security envelope, the device-to-mediator
// handshake and a reduced device-to-device envelope.
package catalog

import (
	"github.com/anirudhraja/tagwire/registry"
	"github.com/anirudhraja/tagwire/schema"
)

// common

var GroupIdentity = &schema.Message{
	Name: "common.GroupIdentity",
	Fields: []*schema.Field{
		{Name: "group_id", Number: 1, Type: schema.TypeFixed64},
		{Name: "creator_identity", Number: 2, Type: schema.TypeString},
	},
}

var Identities = &schema.Message{
	Name: "common.Identities",
	Fields: []*schema.Field{
		{Name: "identities", Number: 1, Label: schema.LabelRepeated, Type: schema.TypeString},
	},
}

// csp_e2e_fs

var VersionRange = &schema.Message{
	Name: "csp_e2e_fs.VersionRange",
	Fields: []*schema.Field{
		{Name: "min", Number: 1, Type: schema.TypeUint32},
		{Name: "max", Number: 2, Type: schema.TypeUint32},
	},
}

var (
	RejectCause = &schema.Enum{
		Name: "csp_e2e_fs.ForwardSecurityEnvelope.Reject.Cause",
		Values: []*schema.EnumValue{
			{Name: "STATE_MISMATCH", Number: 0},
			{Name: "UNKNOWN_SESSION", Number: 1},
			{Name: "DISABLED_BY_LOCAL", Number: 2},
			{Name: "DISABLED_BY_REMOTE", Number: 3},
		},
	}
	TerminateCause = &schema.Enum{
		Name: "csp_e2e_fs.ForwardSecurityEnvelope.Terminate.Cause",
		Values: []*schema.EnumValue{
			{Name: "UNKNOWN_SESSION", Number: 0},
			{Name: "RESET", Number: 1},
			{Name: "DISABLED_BY_LOCAL", Number: 2},
			{Name: "DISABLED_BY_REMOTE", Number: 3},
		},
	}
	DHType = &schema.Enum{
		Name: "csp_e2e_fs.ForwardSecurityEnvelope.Encapsulated.DHType",
		Values: []*schema.EnumValue{
			{Name: "TWODH", Number: 0},
			{Name: "FOURDH", Number: 1},
		},
	}
)

var FSInit = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope.Init",
	Fields: []*schema.Field{
		{Name: "fssk", Number: 1, Type: schema.TypeBytes},
		{Name: "supported_version", Number: 2, Type: schema.TypeMessage, Message: VersionRange},
	},
}

var FSAccept = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope.Accept",
	Fields: []*schema.Field{
		{Name: "fssk", Number: 1, Type: schema.TypeBytes},
		{Name: "supported_version", Number: 2, Type: schema.TypeMessage, Message: VersionRange},
	},
}

var FSReject = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope.Reject",
	Fields: []*schema.Field{
		{Name: "message_id", Number: 1, Type: schema.TypeFixed64},
		{Name: "group_identity", Number: 2, Type: schema.TypeMessage, Message: GroupIdentity},
		{Name: "cause", Number: 3, Type: schema.TypeEnum, Enum: RejectCause},
	},
}

var FSTerminate = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope.Terminate",
	Fields: []*schema.Field{
		{Name: "cause", Number: 1, Type: schema.TypeEnum, Enum: TerminateCause},
	},
}

var FSEncapsulated = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope.Encapsulated",
	Fields: []*schema.Field{
		{Name: "dh_type", Number: 1, Type: schema.TypeEnum, Enum: DHType},
		{Name: "counter", Number: 2, Type: schema.TypeUint64},
		{Name: "encrypted_inner", Number: 3, Type: schema.TypeBytes},
		{Name: "offered_version", Number: 4, Type: schema.TypeUint32},
		{Name: "applied_version", Number: 5, Type: schema.TypeUint32},
		{Name: "group_identity", Number: 6, Type: schema.TypeMessage, Message: GroupIdentity},
	},
}

var ForwardSecurityEnvelope = &schema.Message{
	Name: "csp_e2e_fs.ForwardSecurityEnvelope",
	Fields: []*schema.Field{
		{Name: "session_id", Number: 1, Type: schema.TypeBytes},
		{Name: "init", Number: 2, Type: schema.TypeMessage, Message: FSInit, Oneof: "content"},
		{Name: "accept", Number: 3, Type: schema.TypeMessage, Message: FSAccept, Oneof: "content"},
		{Name: "reject", Number: 4, Type: schema.TypeMessage, Message: FSReject, Oneof: "content"},
		{Name: "terminate", Number: 5, Type: schema.TypeMessage, Message: FSTerminate, Oneof: "content"},
		{Name: "encapsulated", Number: 6, Type: schema.TypeMessage, Message: FSEncapsulated, Oneof: "content"},
	},
	Oneofs: []*schema.Oneof{{Name: "content"}},
}

// d2m

var (
	DeviceSlotExpirationPolicy = &schema.Enum{
		Name: "d2m.DeviceSlotExpirationPolicy",
		Values: []*schema.EnumValue{
			{Name: "VOLATILE", Number: 0},
			{Name: "PERSISTENT", Number: 1},
		},
	}
	DeviceSlotState = &schema.Enum{
		Name: "d2m.DeviceSlotState",
		Values: []*schema.EnumValue{
			{Name: "NEW", Number: 0},
			{Name: "EXISTING", Number: 1},
		},
	}
	DeviceSlotsExhaustedPolicy = &schema.Enum{
		Name: "d2m.ClientHello.DeviceSlotsExhaustedPolicy",
		Values: []*schema.EnumValue{
			{Name: "REJECT", Number: 0},
			{Name: "DROP_LEAST_RECENT", Number: 1},
		},
	}
)

var ClientHello = &schema.Message{
	Name: "d2m.ClientHello",
	Fields: []*schema.Field{
		{Name: "version", Number: 1, Type: schema.TypeUint32},
		{Name: "response", Number: 2, Type: schema.TypeBytes},
		{Name: "device_id", Number: 3, Type: schema.TypeFixed64},
		{Name: "device_slots_exhausted_policy", Number: 4, Type: schema.TypeEnum, Enum: DeviceSlotsExhaustedPolicy},
		{Name: "device_slot_expiration_policy", Number: 5, Type: schema.TypeEnum, Enum: DeviceSlotExpirationPolicy},
		{Name: "expected_device_slot_state", Number: 7, Type: schema.TypeEnum, Enum: DeviceSlotState, Optional: true},
		{Name: "encrypted_device_info", Number: 6, Type: schema.TypeBytes},
	},
}

var AugmentedDeviceInfo = &schema.Message{
	Name: "d2m.DevicesInfo.AugmentedDeviceInfo",
	Fields: []*schema.Field{
		{Name: "encrypted_device_info", Number: 1, Type: schema.TypeBytes},
		{Name: "last_login_at", Number: 2, Type: schema.TypeUint64},
		{Name: "device_slot_expiration_policy", Number: 3, Type: schema.TypeEnum, Enum: DeviceSlotExpirationPolicy},
	},
}

var DevicesInfo = &schema.Message{
	Name: "d2m.DevicesInfo",
	Fields: []*schema.Field{
		{
			Name:    "augmented_device_info",
			Number:  1,
			Label:   schema.LabelMap,
			MapKey:  schema.TypeFixed64,
			Type:    schema.TypeMessage,
			Message: AugmentedDeviceInfo,
		},
	},
}

// d2d

var MessageType = &schema.Enum{
	Name: "d2d.MessageType",
	Values: []*schema.EnumValue{
		{Name: "INVALID", Number: 0},
		{Name: "TEXT", Number: 1},
		{Name: "LOCATION", Number: 16},
		{Name: "FILE", Number: 23},
		{Name: "GROUP_TEXT", Number: 65},
		{Name: "DELIVERY_RECEIPT", Number: 128},
		{Name: "TYPING_INDICATOR", Number: 144},
	},
}

var ConversationID = &schema.Message{
	Name: "d2d.ConversationId",
	Fields: []*schema.Field{
		{Name: "contact", Number: 1, Type: schema.TypeString, Oneof: "id"},
		{Name: "distribution_list", Number: 2, Type: schema.TypeFixed64, Oneof: "id"},
		{Name: "group", Number: 3, Type: schema.TypeMessage, Message: GroupIdentity, Oneof: "id"},
	},
	Oneofs: []*schema.Oneof{{Name: "id"}},
}

var OutgoingMessage = &schema.Message{
	Name: "d2d.OutgoingMessage",
	Fields: []*schema.Field{
		{Name: "conversation", Number: 1, Type: schema.TypeMessage, Message: ConversationID},
		{Name: "message_id", Number: 2, Type: schema.TypeFixed64},
		{Name: "thread_message_id", Number: 6, Type: schema.TypeFixed64, Optional: true},
		{Name: "created_at", Number: 3, Type: schema.TypeUint64},
		{Name: "type", Number: 4, Type: schema.TypeEnum, Enum: MessageType},
		{Name: "body", Number: 5, Type: schema.TypeBytes},
	},
}

var IncomingMessage = &schema.Message{
	Name: "d2d.IncomingMessage",
	Fields: []*schema.Field{
		{Name: "sender_identity", Number: 1, Type: schema.TypeString},
		{Name: "message_id", Number: 2, Type: schema.TypeFixed64},
		{Name: "created_at", Number: 3, Type: schema.TypeUint64},
		{Name: "type", Number: 5, Type: schema.TypeEnum, Enum: MessageType},
		{Name: "body", Number: 6, Type: schema.TypeBytes},
	},
}

var Envelope = &schema.Message{
	Name: "d2d.Envelope",
	Fields: []*schema.Field{
		{Name: "padding", Number: 1, Type: schema.TypeBytes},
		{Name: "outgoing_message", Number: 2, Type: schema.TypeMessage, Message: OutgoingMessage, Oneof: "content"},
		{Name: "incoming_message", Number: 3, Type: schema.TypeMessage, Message: IncomingMessage, Oneof: "content"},
	},
	Oneofs: []*schema.Oneof{{Name: "content"}},
}

// All returns the top-level messages of the catalog. Every other descriptor
// is reachable from one of them.
func All() []*schema.Message {
	return []*schema.Message{
		Identities,
		ForwardSecurityEnvelope,
		ClientHello,
		DevicesInfo,
		Envelope,
	}
}

// Register adds every catalog message and enum to r.
func Register(r *registry.Registry) error {
	return r.Register(All()...)
}

// New returns a registry holding the catalog.
func New(opts ...registry.Option) (*registry.Registry, error) {
	r := registry.NewRegistry(opts...)
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
