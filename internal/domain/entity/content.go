package entity

// Role identifies the producer of a Content.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// PartKind tags the variant held by a Part.
type PartKind string

const (
	PartText             PartKind = "text"
	PartBinary           PartKind = "binary"
	PartFunctionCall     PartKind = "function_call"
	PartFunctionResponse PartKind = "function_response"
)

// NoContentPlaceholder replaces an otherwise empty user message.
const NoContentPlaceholder = "(no content)"

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Part is one atomic unit of a multi-modal message.
// Exactly one of the payload fields is set, as indicated by Kind.
type Part struct {
	Kind PartKind `json:"kind"`

	Text string `json:"text,omitempty"`

	Data     []byte `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`

	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

// TextPart creates a text part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// BinaryPart creates a binary part carrying raw bytes and their MIME type.
func BinaryPart(data []byte, mimeType string) Part {
	return Part{Kind: PartBinary, Data: data, MimeType: mimeType}
}

// FunctionCallPart creates a part requesting a tool invocation.
func FunctionCallPart(call FunctionCall) Part {
	return Part{Kind: PartFunctionCall, FunctionCall: &call}
}

// FunctionResponsePart creates a part holding a tool result.
func FunctionResponsePart(resp FunctionResponse) Part {
	return Part{Kind: PartFunctionResponse, FunctionResponse: &resp}
}

// Content is an ordered sequence of parts produced by one role.
type Content struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewUserContent creates a user message. An empty part list is replaced by
// the NoContentPlaceholder text so that a message is never empty.
func NewUserContent(parts ...Part) *Content {
	if len(parts) == 0 {
		parts = []Part{TextPart(NoContentPlaceholder)}
	}
	return &Content{Role: RoleUser, Parts: parts}
}

// FirstText returns the text of the first text part, or "" if there is none.
func (c *Content) FirstText() string {
	if c == nil {
		return ""
	}
	for _, p := range c.Parts {
		if p.Kind == PartText {
			return p.Text
		}
	}
	return ""
}

// FunctionCalls returns all tool invocations in part order.
func (c *Content) FunctionCalls() []FunctionCall {
	if c == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range c.Parts {
		if p.Kind == PartFunctionCall && p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}
