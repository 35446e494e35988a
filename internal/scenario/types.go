package scenario

// Case is one assertion within a scenario.
type Case struct {
	Command string `yaml:"command"`
	Expect  string `yaml:"expect"`
	// Mode overrides the scenario mode for this case.
	Mode string `yaml:"mode,omitempty"`
}

// Scenario is a named collection of gate assertions.
type Scenario struct {
	Name            string   `yaml:"name"`
	Mode            string   `yaml:"mode,omitempty"`
	ProjectCommands []string `yaml:"project_commands,omitempty"`
	Cases           []Case   `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Command  string `json:"command"`
	Mode     string `json:"mode"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
