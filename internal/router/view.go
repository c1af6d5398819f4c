package router

// Button is one labeled action the transport lays out as a selectable
// control.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// View is a render payload: body text, button rows, and an optional image.
// The transport decides whether to mutate an existing message or create a
// new one.
type View struct {
	Text     string     `json:"text"`
	Buttons  [][]Button `json:"buttons,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
}

func row(buttons ...Button) []Button {
	return buttons
}
