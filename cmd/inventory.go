package cmd

// inventory models hosts.yml: the hosts to visit and the scrolls to apply to
// each of them. Scrolls are listed high level first and applied in reverse.
type inventory struct {
	// PubkeyPath selects agent mode: the key is handed to ssh-add once at
	// startup and every host without privkey_path authenticates via the agent.
	PubkeyPath string   `yaml:"pubkey_path,omitempty"`
	Scrolls    []string `yaml:"scrolls"`
	Hosts      []host   `yaml:"hosts"`
}
