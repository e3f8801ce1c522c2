package domain

// Inbound command payloads, validated by the chat service before any
// registry is touched. Names and group identifiers are compared by exact
// string equality, no normalization.

type LoginCommand struct {
	Username string `validate:"required,max=64"`
}

type CreateGroupCommand struct {
	Creator string `validate:"required,max=64"`
	Name    string `validate:"required,max=64"`
}

type MembershipCommand struct {
	Username string `validate:"required,max=64"`
	Group    string `validate:"required,max=64"`
}

type SendFileCommand struct {
	From     string `validate:"required,max=64"`
	To       string `validate:"required,max=64"`
	FileName string `validate:"required,max=255"`
	Data     []byte `validate:"required"`
}
